package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Keoroanthony/farmmarket/internal/orders"
)

type CreateOrderRequest struct {
	Items           []orders.Item   `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address"`
}

// POST /api/orders
func (h *Handler) CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		address = user.Address
	}

	order, err := h.engine.PlaceOrder(c.Request.Context(), orders.PlaceOrderInput{
		UserID:          user.ID,
		TotalAmount:     req.TotalAmount,
		ShippingAddress: address,
		Items:           req.Items,
	})

	var verr *orders.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	case err != nil:
		h.requestLog(c).Warn("create order failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": orders.ErrOrderFailed.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": order})
}

// GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	h.listOrders(c, orders.OrderFilter{UserID: user.ID})
}

// GET /api/seller/orders
func (h *Handler) ListSellerOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	h.listOrders(c, orders.OrderFilter{SellerID: user.ID})
}

func (h *Handler) listOrders(c *gin.Context, filter orders.OrderFilter) {
	views, err := h.queries.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /api/seller/stats
func (h *Handler) SellerStats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.queries.SellerStats(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/admin/orders
func (h *Handler) ListAllOrders(c *gin.Context) {
	all, err := h.queries.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, all)
}
