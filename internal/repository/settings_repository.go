package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// SettingsRepository reads and updates the single platform settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings snapshot. The row is seeded by the migrations.
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.GetContext(ctx, &settings, `
		SELECT id, ordering_suspended, runner_flat_fee, updated_by, updated_at
		FROM platform_settings WHERE id = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("settings repository: get %w", err)
	}
	return &settings, nil
}

// Update applies the non-nil fields and records who changed them.
func (r *SettingsRepository) Update(ctx context.Context, suspended *bool, runnerFlatFee *float64, updatedBy uuid.UUID) (*models.PlatformSettings, error) {
	var settings models.PlatformSettings
	err := r.db.GetContext(ctx, &settings, `
		UPDATE platform_settings SET
			ordering_suspended = COALESCE($1, ordering_suspended),
			runner_flat_fee    = COALESCE($2, runner_flat_fee),
			updated_by = $3,
			updated_at = NOW()
		WHERE id = 1
		RETURNING id, ordering_suspended, runner_flat_fee, updated_by, updated_at
	`, suspended, runnerFlatFee, updatedBy)
	if err != nil {
		return nil, fmt.Errorf("settings repository: update %w", err)
	}
	return &settings, nil
}
