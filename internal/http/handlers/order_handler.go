package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers/common"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

type createOrderRequest struct {
	VendorID        string            `json:"vendor_id" binding:"required"`
	FulfillmentType string            `json:"fulfillment_type" binding:"required"`
	DeliveryAddress *string           `json:"delivery_address"`
	Items           []createOrderItem `json:"items" binding:"required,min=1,dive"`
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	studentID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		common.RespondBadRequest(c, "invalid vendor_id")
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, in := range req.Items {
		productID, err := uuid.Parse(in.ProductID)
		if err != nil {
			common.RespondBadRequest(c, "invalid product_id")
			return
		}
		items = append(items, service.OrderItemInput{
			ProductID: productID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), studentID, vendorID, items, req.FulfillmentType, req.DeliveryAddress)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// Get GET /orders/:orderId
//
// The secrets ride alongside the order, each visible only to its party: the
// release key to the student, the pickup code to the vendor after assignment.
func (h *OrderHandler) Get(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID, actorID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	resp := gin.H{"order": order}
	if order.StudentID == actorID && order.ReleaseKey != nil && !models.IsTerminalOrderStatus(order.Status) {
		resp["release_key"] = *order.ReleaseKey
	}
	if order.VendorID == actorID && order.PickupCode != nil && order.Status == models.OrderStatusReady {
		resp["pickup_code"] = *order.PickupCode
	}
	c.JSON(http.StatusOK, resp)
}

// GetEscrow GET /orders/:orderId/escrow returns the custody status of the order's funds.
func (h *OrderHandler) GetEscrow(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	escrow, err := h.orders.GetEscrow(c.Request.Context(), orderID, actorID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"escrow": escrow})
}

// List GET /orders returns the caller's own orders, shaped by role.
func (h *OrderHandler) List(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	limit := common.ParseIntQuery(c, "limit", 20)
	offset := common.ParseIntQuery(c, "offset", 0)

	var (
		orders []models.Order
		lerr   error
	)
	switch role {
	case models.RoleVendor:
		orders, lerr = h.orders.ListVendorOrders(c.Request.Context(), actorID, limit, offset)
	case models.RoleRunner:
		orders, lerr = h.orders.ListRunnerOrders(c.Request.Context(), actorID, limit, offset)
	default:
		orders, lerr = h.orders.ListStudentOrders(c.Request.Context(), actorID, limit, offset)
	}
	if lerr != nil {
		_ = c.Error(lerr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Cancel POST /orders/:orderId/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), orderID, actorID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdvancePrep POST /orders/:orderId/prepare. The vendor accepts the order.
func (h *OrderHandler) AdvancePrep(c *gin.Context) {
	vendorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.AdvancePrep(c.Request.Context(), orderID, vendorID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// MarkReady POST /orders/:orderId/ready. The vendor marks the order ready.
func (h *OrderHandler) MarkReady(c *gin.Context) {
	vendorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, ok := common.ParseUUIDParam(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orders.MarkReady(c.Request.Context(), orderID, vendorID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// VerifyCode POST /verify resolves a pickup code or release key.
func (h *OrderHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "code is required")
		return
	}

	order, result, err := h.orders.VerifyCode(c.Request.Context(), req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"order":  order,
	})
}
