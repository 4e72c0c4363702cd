package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers/common"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

type MissionHandler struct {
	missions *service.MissionService
}

func NewMissionHandler(missions *service.MissionService) *MissionHandler {
	return &MissionHandler{missions: missions}
}

// List GET /missions is the runner's poll feed; polling doubles as heartbeat.
func (h *MissionHandler) List(c *gin.Context) {
	runnerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	missions, err := h.missions.ListMissions(c.Request.Context(), runnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"missions": missions})
}

// Accept POST /missions/:missionId/accept. Assignment is race-resolved in storage.
func (h *MissionHandler) Accept(c *gin.Context) {
	runnerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	missionID, ok := common.ParseUUIDParam(c, "missionId")
	if !ok {
		return
	}

	order, err := h.missions.AcceptMission(c.Request.Context(), missionID, runnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetPresence GET /missions/presence returns the runner's current shift state.
func (h *MissionHandler) GetPresence(c *gin.Context) {
	runnerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	presence, err := h.missions.GetPresence(c.Request.Context(), runnerID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, presence)
}

type presenceRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// SetPresence PUT /missions/presence. The runner goes on or off shift.
func (h *MissionHandler) SetPresence(c *gin.Context) {
	runnerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "online flag is required")
		return
	}

	presence, err := h.missions.SetPresence(c.Request.Context(), runnerID, *req.Online)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, presence)
}
