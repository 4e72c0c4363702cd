package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers/common"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type escrowActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// EscrowAction POST /admin/escrow/:orderId/action applies FORCE_RELEASE or FORCE_REFUND.
func (h *AdminHandler) EscrowAction(c *gin.Context) {
	operatorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	var req escrowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "action is required")
		return
	}

	order, err := h.admin.EscrowAction(c.Request.Context(), operatorID, orderID, req.Action)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type walletFreezeRequest struct {
	Frozen *bool `json:"frozen" binding:"required"`
}

// WalletFreeze POST /admin/wallets/:userId/freeze
func (h *AdminHandler) WalletFreeze(c *gin.Context) {
	operatorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	userID, ok := common.ParseUUIDParam(c, "userId")
	if !ok {
		return
	}

	var req walletFreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "frozen flag is required")
		return
	}

	wallet, err := h.admin.SetWalletFreeze(c.Request.Context(), operatorID, userID, *req.Frozen)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

// GetSettings GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.admin.GetSettings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	OrderingSuspended *bool    `json:"ordering_suspended"`
	RunnerFlatFee     *float64 `json:"runner_flat_fee"`
}

// UpdateSettings PUT /admin/settings sets the kill switch and runner fee.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	operatorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if req.OrderingSuspended == nil && req.RunnerFlatFee == nil {
		common.RespondBadRequest(c, "nothing to update")
		return
	}

	settings, err := h.admin.UpdateSettings(c.Request.Context(), operatorID, req.OrderingSuspended, req.RunnerFlatFee)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ListAudit GET /admin/audit
func (h *AdminHandler) ListAudit(c *gin.Context) {
	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	records, err := h.admin.ListAudit(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit": records})
}
