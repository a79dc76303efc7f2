package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/practice-system/models"
	"github.com/lib/pq"
)

var (
	ErrKitNotFound     = errors.New("kit not found")
	ErrKitNameConflict = errors.New("kit id conflict")
)

// KitRepository persists loadout definitions. Kit contents (item stacks)
// live on the game-server side; only identity and display data are stored.
type KitRepository interface {
	Create(ctx context.Context, kit *models.Kit) error
	GetByID(ctx context.Context, id string) (*models.Kit, error)
	GetAll(ctx context.Context) ([]*models.Kit, error)
	UpdateIcon(ctx context.Context, id, iconKey, iconURL string) error
	Delete(ctx context.Context, id string) error
}

type postgresKitRepository struct {
	db *sql.DB
}

func NewPostgresKitRepository(db *sql.DB) KitRepository {
	return &postgresKitRepository{db: db}
}

func (r *postgresKitRepository) Create(ctx context.Context, kit *models.Kit) error {
	query := `INSERT INTO kits (id, display_name, icon_key, icon_url, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, kit.ID, kit.DisplayName, kit.IconKey, kit.IconURL, kit.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrKitNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresKitRepository) GetByID(ctx context.Context, id string) (*models.Kit, error) {
	query := `SELECT id, display_name, icon_key, icon_url, created_at FROM kits WHERE id = $1`

	var kit models.Kit
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&kit.ID, &kit.DisplayName, &kit.IconKey, &kit.IconURL, &kit.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKitNotFound
		}
		return nil, err
	}
	return &kit, nil
}

func (r *postgresKitRepository) GetAll(ctx context.Context) ([]*models.Kit, error) {
	query := `SELECT id, display_name, icon_key, icon_url, created_at FROM kits ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kits := make([]*models.Kit, 0)
	for rows.Next() {
		var kit models.Kit
		if err := rows.Scan(&kit.ID, &kit.DisplayName, &kit.IconKey, &kit.IconURL, &kit.CreatedAt); err != nil {
			return nil, err
		}
		kits = append(kits, &kit)
	}
	return kits, rows.Err()
}

func (r *postgresKitRepository) UpdateIcon(ctx context.Context, id, iconKey, iconURL string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE kits SET icon_key = $2, icon_url = $3 WHERE id = $1`, id, iconKey, iconURL)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrKitNotFound
	}
	return nil
}

func (r *postgresKitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM kits WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrKitNotFound
	}
	return nil
}
