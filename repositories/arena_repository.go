package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/practice-system/models"
	"github.com/lib/pq"
)

var (
	ErrArenaNotFound     = errors.New("arena not found")
	ErrArenaNameConflict = errors.New("arena name conflict")
)

// ArenaRepository persists arena definitions (anchors, flags, allow-lists).
// Runtime reservation state is not persisted; the registry owns it.
type ArenaRepository interface {
	Create(ctx context.Context, arena *models.Arena) error
	GetByName(ctx context.Context, name string) (*models.Arena, error)
	GetAll(ctx context.Context) ([]*models.Arena, error)
	Update(ctx context.Context, arena *models.Arena) error
	Delete(ctx context.Context, name string) error
}

type postgresArenaRepository struct {
	db *sql.DB
}

func NewPostgresArenaRepository(db *sql.DB) ArenaRepository {
	return &postgresArenaRepository{db: db}
}

// positions are stored as nullable jsonb columns.
func marshalPosition(p *models.Position) (any, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func scanPosition(raw []byte) (*models.Position, error) {
	if raw == nil {
		return nil, nil
	}
	var p models.Position
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresArenaRepository) Create(ctx context.Context, arena *models.Arena) error {
	query := `INSERT INTO arenas (name, center, spawn_a, spawn_b, corner_a, corner_b, regenerate, kits)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	args, err := arenaArgs(arena)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrArenaNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresArenaRepository) GetByName(ctx context.Context, name string) (*models.Arena, error) {
	query := `SELECT name, center, spawn_a, spawn_b, corner_a, corner_b, regenerate, kits
	          FROM arenas WHERE name = $1`

	arena, err := scanArena(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArenaNotFound
		}
		return nil, err
	}
	return arena, nil
}

func (r *postgresArenaRepository) GetAll(ctx context.Context) ([]*models.Arena, error) {
	query := `SELECT name, center, spawn_a, spawn_b, corner_a, corner_b, regenerate, kits
	          FROM arenas ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	arenas := make([]*models.Arena, 0)
	for rows.Next() {
		arena, err := scanArena(rows)
		if err != nil {
			return nil, err
		}
		arenas = append(arenas, arena)
	}
	return arenas, rows.Err()
}

func (r *postgresArenaRepository) Update(ctx context.Context, arena *models.Arena) error {
	query := `UPDATE arenas
	          SET center = $2, spawn_a = $3, spawn_b = $4, corner_a = $5, corner_b = $6, regenerate = $7, kits = $8
	          WHERE name = $1`

	args, err := arenaArgs(arena)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrArenaNotFound
	}
	return nil
}

func (r *postgresArenaRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM arenas WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrArenaNotFound
	}
	return nil
}

func arenaArgs(arena *models.Arena) ([]any, error) {
	anchors := make([]any, 0, 5)
	for _, p := range []*models.Position{arena.Center, arena.SpawnA, arena.SpawnB, arena.CornerA, arena.CornerB} {
		raw, err := marshalPosition(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode arena %s anchor: %w", arena.Name, err)
		}
		anchors = append(anchors, raw)
	}
	args := append([]any{arena.Name}, anchors...)
	return append(args, arena.Regenerate, pq.Array(arena.Kits)), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArena(row rowScanner) (*models.Arena, error) {
	var (
		arena   models.Arena
		anchors [5][]byte
		kits    pq.StringArray
	)
	err := row.Scan(&arena.Name, &anchors[0], &anchors[1], &anchors[2], &anchors[3], &anchors[4], &arena.Regenerate, &kits)
	if err != nil {
		return nil, err
	}

	dests := []**models.Position{&arena.Center, &arena.SpawnA, &arena.SpawnB, &arena.CornerA, &arena.CornerB}
	for i, raw := range anchors {
		p, err := scanPosition(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode arena %s anchor: %w", arena.Name, err)
		}
		*dests[i] = p
	}
	arena.Kits = []string(kits)
	return &arena, nil
}
