package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/repositories"
	"github.com/Dosada05/practice-system/storage"
)

// KitService is the loadout provider: existence checks and display data for
// the match core, plus admin management and icon uploads. Kit contents are
// granted by the game server through game.World; the core never sees them.
type KitService interface {
	Hydrate(ctx context.Context) error

	Create(ctx context.Context, id, displayName string) (*models.Kit, error)
	Get(id string) (*models.Kit, error)
	List() []*models.Kit
	UploadIcon(ctx context.Context, id, contentType string, r io.Reader) (*models.Kit, error)
	Delete(ctx context.Context, id string) error
}

type kitService struct {
	repo     repositories.KitRepository
	uploader storage.FileUploader

	mu   sync.RWMutex
	kits map[string]*models.Kit
}

func NewKitService(repo repositories.KitRepository, uploader storage.FileUploader) KitService {
	return &kitService{
		repo:     repo,
		uploader: uploader,
		kits:     make(map[string]*models.Kit),
	}
}

func (s *kitService) Hydrate(ctx context.Context) error {
	kits, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load kits: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range kits {
		s.kits[k.ID] = k
	}
	return nil
}

func (s *kitService) Create(ctx context.Context, id, displayName string) (*models.Kit, error) {
	if displayName == "" {
		displayName = id
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.kits[id]; exists {
		return nil, ErrKitNameConflict
	}
	kit := &models.Kit{ID: id, DisplayName: displayName, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, kit); err != nil {
		if errors.Is(err, repositories.ErrKitNameConflict) {
			return nil, ErrKitNameConflict
		}
		return nil, err
	}
	s.kits[id] = kit
	return kit, nil
}

func (s *kitService) Get(id string) (*models.Kit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kit, ok := s.kits[id]
	if !ok {
		return nil, ErrKitNotFound
	}
	return kit, nil
}

func (s *kitService) List() []*models.Kit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Kit, 0, len(s.kits))
	for _, k := range s.kits {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *kitService) UploadIcon(ctx context.Context, id, contentType string, r io.Reader) (*models.Kit, error) {
	s.mu.RLock()
	kit, ok := s.kits[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrKitNotFound
	}

	key := fmt.Sprintf("kits/%s/icon", id)
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload kit icon: %w", err)
	}

	if err := s.repo.UpdateIcon(ctx, id, result.Key, result.Location); err != nil {
		return nil, err
	}

	s.mu.Lock()
	kit.IconKey = result.Key
	kit.IconURL = result.Location
	s.mu.Unlock()
	return kit, nil
}

func (s *kitService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kit, ok := s.kits[id]
	if !ok {
		return ErrKitNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrKitNotFound) {
		return err
	}
	if kit.IconKey != "" {
		// Icon cleanup is best effort; a stale object is not worth failing
		// the delete over.
		_ = s.uploader.Delete(ctx, kit.IconKey)
	}
	delete(s.kits, id)
	return nil
}
