package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers/common"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

// PaymentHandler receives the payment-verification glue's callback after the
// gateway confirms a charge. Only the "confirmed" fact and the amount cross
// this boundary; the wire protocol lives outside the core.
type PaymentHandler struct {
	orders *service.OrderService
}

func NewPaymentHandler(orders *service.OrderService) *PaymentHandler {
	return &PaymentHandler{orders: orders}
}

type confirmPaymentRequest struct {
	OrderID string  `json:"order_id" binding:"required"`
	Amount  float64 `json:"amount" binding:"required,gt=0"`
}

// Confirm POST /payments/confirm is idempotent: gateways retry callbacks, a
// replay for an already-held order returns 409 with nothing mutated.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		common.RespondBadRequest(c, "invalid order_id")
		return
	}

	order, err := h.orders.ConfirmPayment(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}
