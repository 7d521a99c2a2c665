package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/farmmarket/internal/auth"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

// Routes mounts the authenticated API under /api. checkout, when given,
// runs in front of order placement only.
func (h *Handler) Routes(r gin.IRouter, checkout ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(auth.RequireAuth(h.db))
	{
		api.POST("/categories", h.CreateCategory)
		api.GET("/products/average", h.GetAveragePrice)

		api.POST("/orders", append(checkout, h.CreateOrder)...)
		api.GET("/orders", h.ListOrders)

		api.GET("/cart", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.GET("/cart/summary", h.CartSummary)
		api.PUT("/cart/:id", h.UpdateCartItem)
		api.DELETE("/cart/:id", h.RemoveCartItem)
	}

	seller := api.Group("", auth.RequireRole(models.RoleFarmer))
	{
		seller.POST("/products", h.CreateProduct)
		seller.GET("/seller/orders", h.ListSellerOrders)
		seller.GET("/seller/stats", h.SellerStats)
	}

	admin := api.Group("/admin", auth.RequireRole(models.RoleAdmin))
	{
		admin.GET("/orders", h.ListAllOrders)
	}
}
