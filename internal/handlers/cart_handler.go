package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Keoroanthony/farmmarket/internal/cart"
	"github.com/Keoroanthony/farmmarket/internal/orders"
)

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	lines, err := h.cart.List(c.Request.Context(), user.ID)
	if err != nil {
		h.requestLog(c).Error("list cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	c.JSON(http.StatusOK, lines)
}

// POST /api/cart
func (h *Handler) AddToCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, created, err := h.cart.Add(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, cart.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.requestLog(c).Error("add to cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, item)
}

// PUT /api/cart/:id
func (h *Handler) UpdateCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.cart.UpdateQuantity(c.Request.Context(), user.ID, itemID, req.Quantity)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.requestLog(c).Error("update cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DELETE /api/cart/:id
func (h *Handler) RemoveCartItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	err := h.cart.Remove(c.Request.Context(), user.ID, itemID)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.requestLog(c).Error("remove cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "item removed from cart"})
}

// GET /api/cart/summary prices the current cart the way checkout will.
func (h *Handler) CartSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	lines, err := h.cart.List(c.Request.Context(), user.ID)
	if err != nil {
		h.requestLog(c).Error("list cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}

	items := make([]orders.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, orders.Item{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"summary": h.pricing.Quote(items),
	})
}
