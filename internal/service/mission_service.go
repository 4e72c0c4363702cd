package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
)

// MissionBoard is the slice of order storage the dispatcher needs.
type MissionBoard interface {
	ListOpenMissions(ctx context.Context) ([]models.Mission, error)
	AssignRunner(ctx context.Context, orderID, runnerID uuid.UUID, pickupCode string) (*models.Order, error)
}

// PresenceTracker tracks which runners are online.
type PresenceTracker interface {
	SetOnline(ctx context.Context, runnerID uuid.UUID, online bool) (*models.RunnerPresence, error)
	Heartbeat(ctx context.Context, runnerID uuid.UUID) error
	Get(ctx context.Context, runnerID uuid.UUID) (*models.RunnerPresence, error)
}

// MissionService exposes the runner mission feed and resolves the accept
// race. A mission exists exactly while its DELIVERY order is READY and
// unassigned; the conditional assignment in storage is the only arbiter.
type MissionService struct {
	board    MissionBoard
	presence PresenceTracker
	settings SettingsProvider
	notifier MissionNotifier
}

func NewMissionService(board MissionBoard, presence PresenceTracker, settings SettingsProvider, notifier MissionNotifier) *MissionService {
	return &MissionService{board: board, presence: presence, settings: settings, notifier: notifier}
}

// ListMissions returns the open missions. Polling doubles as the runner's
// presence heartbeat.
func (s *MissionService) ListMissions(ctx context.Context, runnerID uuid.UUID) ([]models.Mission, error) {
	if err := s.presence.Heartbeat(ctx, runnerID); err != nil {
		return nil, err
	}

	missions, err := s.board.ListOpenMissions(ctx)
	if err != nil {
		return nil, err
	}

	fee := 0.0
	if settings, serr := s.settings.Snapshot(ctx); serr == nil {
		fee = settings.RunnerFlatFee
	}
	for i := range missions {
		missions[i].RunnerFee = fee
	}
	return missions, nil
}

// AcceptMission races for the mission. Exactly one caller wins the
// conditional assignment; everyone else gets ErrRaceLost. The pickup code is
// minted here and becomes visible only at the vendor hand-off.
func (s *MissionService) AcceptMission(ctx context.Context, missionID, runnerID uuid.UUID) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < codeRetryAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		order, err := s.board.AssignRunner(ctx, missionID, runnerID, code)
		if err == nil {
			logger.Log.WithField("order_id", missionID).WithField("runner_id", runnerID).Info("mission accepted")
			if s.notifier != nil {
				s.notifier.MissionTaken(missionID)
			}
			return order, nil
		}
		if isCodeCollision(err) {
			lastErr = err
			continue
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Unknown mission id; the feed may simply be stale.
			return nil, repository.ErrOrderNotFound
		}
		return nil, err
	}
	return nil, lastErr
}

// SetPresence toggles the runner's ONLINE flag explicitly (the websocket
// feed and the shift toggle both use it).
func (s *MissionService) SetPresence(ctx context.Context, runnerID uuid.UUID, online bool) (*models.RunnerPresence, error) {
	return s.presence.SetOnline(ctx, runnerID, online)
}

// GetPresence returns the runner's own presence record.
func (s *MissionService) GetPresence(ctx context.Context, runnerID uuid.UUID) (*models.RunnerPresence, error) {
	return s.presence.Get(ctx, runnerID)
}
