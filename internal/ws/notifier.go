package ws

import (
	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/goroutine"
	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// Feed events pushed to runners.
const (
	EventMissionNew   = "mission.new"
	EventMissionTaken = "mission.taken"
)

// MissionNotifier adapts the hub to the services' notifier contract. Fan-out
// happens off the request goroutine with panic recovery.
type MissionNotifier struct {
	hub      *Hub
	recovery *goroutine.RecoveryHandler
}

func NewMissionNotifier(hub *Hub) *MissionNotifier {
	return &MissionNotifier{
		hub:      hub,
		recovery: goroutine.NewRecoveryHandler(logger.Log),
	}
}

// MissionOpened announces a new open mission to every connected runner.
func (n *MissionNotifier) MissionOpened(mission models.Mission) {
	n.recovery.SafeGo(func() {
		if err := n.hub.BroadcastEvent(EventMissionNew, mission); err != nil {
			logger.Log.WithError(err).Warn("ws: mission.new broadcast failed")
		}
	})
}

// MissionTaken tells runners to drop the mission from their feed.
func (n *MissionNotifier) MissionTaken(orderID uuid.UUID) {
	n.recovery.SafeGo(func() {
		payload := map[string]string{"mission_id": orderID.String()}
		if err := n.hub.BroadcastEvent(EventMissionTaken, payload); err != nil {
			logger.Log.WithError(err).Warn("ws: mission.taken broadcast failed")
		}
	})
}
