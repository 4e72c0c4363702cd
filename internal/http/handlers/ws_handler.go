package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
	"github.com/niouspark-cmd/student-hub-sub000/internal/ws"
)

// WSHandler upgrades runner mission-feed connections. Connecting marks the
// runner online; dropping the socket marks them offline.
type WSHandler struct {
	hub          *ws.Hub
	tokenManager *service.TokenManager
	missions     *service.MissionService
	upgrader     websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, missions *service.MissionService) *WSHandler {
	return &WSHandler{
		hub:          hub,
		tokenManager: tokens,
		missions:     missions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle serves GET /ws/missions?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
		return
	}

	runnerID, role, err := h.tokenManager.ParseAccess(rawToken)
	if err != nil || runnerID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
		return
	}
	if role != models.RoleRunner {
		c.JSON(http.StatusForbidden, gin.H{"error": "runner role required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.missions.SetPresence(c.Request.Context(), runnerID, true); err != nil {
		_ = conn.Close()
		return
	}

	client := ws.NewClient(conn, h.hub, runnerID)
	h.hub.Register(client)

	client.Run(c.Request.Context())

	// Socket gone; drop the runner from the feed.
	_, _ = h.missions.SetPresence(c.Request.Context(), runnerID, false)
}
