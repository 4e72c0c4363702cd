package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// SettingsRepository reads and writes the platform settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.PlatformSettings, error)
	Update(ctx context.Context, suspended *bool, runnerFlatFee *float64, updatedBy uuid.UUID) (*models.PlatformSettings, error)
}

// SettingsService serves platform settings snapshots through a short TTL
// cache so every request reads one consistent record without a database
// round-trip per check.
type SettingsService struct {
	repo SettingsRepository
	ttl  time.Duration

	mu        sync.RWMutex
	snapshot  *models.PlatformSettings
	fetchedAt time.Time
}

func NewSettingsService(repo SettingsRepository, ttl time.Duration) *SettingsService {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &SettingsService{repo: repo, ttl: ttl}
}

// Snapshot returns the current settings, cached for the configured TTL.
func (s *SettingsService) Snapshot(ctx context.Context) (*models.PlatformSettings, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Since(s.fetchedAt) < s.ttl {
		snap := *s.snapshot
		s.mu.RUnlock()
		return &snap, nil
	}
	s.mu.RUnlock()

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	snap := *settings
	return &snap, nil
}

// Update applies the change and drops the cached snapshot so the next reader
// sees it immediately.
func (s *SettingsService) Update(ctx context.Context, suspended *bool, runnerFlatFee *float64, updatedBy uuid.UUID) (*models.PlatformSettings, error) {
	if runnerFlatFee != nil && *runnerFlatFee < 0 {
		return nil, ErrValidation
	}
	settings, err := s.repo.Update(ctx, suspended, runnerFlatFee, updatedBy)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = settings
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	snap := *settings
	return &snap, nil
}
