package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/auth"
	"github.com/Keoroanthony/farmmarket/internal/cart"
	"github.com/Keoroanthony/farmmarket/internal/logger"
	"github.com/Keoroanthony/farmmarket/internal/models"
	"github.com/Keoroanthony/farmmarket/internal/orders"
)

type Handler struct {
	db      *gorm.DB
	engine  *orders.Engine
	queries *orders.QueryService
	cart    *cart.Service
	pricing orders.Pricing
	log     *zap.Logger
}

func New(db *gorm.DB, engine *orders.Engine, queries *orders.QueryService, cartSvc *cart.Service, pricing orders.Pricing, log *zap.Logger) *Handler {
	return &Handler{
		db:      db,
		engine:  engine,
		queries: queries,
		cart:    cartSvc,
		pricing: pricing,
		log:     log,
	}
}

// currentUser aborts with 401 when RequireAuth did not run.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return user, ok
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) requestLog(c *gin.Context) *zap.Logger {
	return logger.FromContext(c, h.log)
}
