package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// RunnerRepository tracks runner presence for the mission feed.
type RunnerRepository struct {
	db *sqlx.DB
}

func NewRunnerRepository(db *sqlx.DB) *RunnerRepository {
	return &RunnerRepository{db: db}
}

// SetOnline toggles the runner's feed membership.
func (r *RunnerRepository) SetOnline(ctx context.Context, runnerID uuid.UUID, online bool) (*models.RunnerPresence, error) {
	var presence models.RunnerPresence
	err := r.db.GetContext(ctx, &presence, `
		INSERT INTO runner_presence (runner_id, online, last_seen_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (runner_id) DO UPDATE SET online = $2, last_seen_at = NOW()
		RETURNING runner_id, online, last_seen_at
	`, runnerID, online)
	if err != nil {
		return nil, fmt.Errorf("runner repository: set online %w", err)
	}
	return &presence, nil
}

// Heartbeat marks the runner online and refreshes last_seen_at. Polling the
// feed doubles as the heartbeat.
func (r *RunnerRepository) Heartbeat(ctx context.Context, runnerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runner_presence (runner_id, online, last_seen_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (runner_id) DO UPDATE SET online = TRUE, last_seen_at = NOW()
	`, runnerID)
	if err != nil {
		return fmt.Errorf("runner repository: heartbeat %w", err)
	}
	return nil
}

// Get returns the runner's presence record, offline if never seen.
func (r *RunnerRepository) Get(ctx context.Context, runnerID uuid.UUID) (*models.RunnerPresence, error) {
	var presence models.RunnerPresence
	err := r.db.GetContext(ctx, &presence, `
		SELECT runner_id, online, last_seen_at FROM runner_presence WHERE runner_id = $1
	`, runnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.RunnerPresence{RunnerID: runnerID, Online: false}, nil
		}
		return nil, fmt.Errorf("runner repository: get %w", err)
	}
	return &presence, nil
}
