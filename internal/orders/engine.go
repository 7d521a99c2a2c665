// Package orders turns a buyer's cart into a persisted order and reads
// orders back for buyers, sellers and administrators.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/metrics"
	"github.com/Keoroanthony/farmmarket/internal/models"
)

// Item is one cart line as submitted at checkout. Price is the unit price
// the buyer saw and is stored as is.
type Item struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type PlaceOrderInput struct {
	UserID          uint
	TotalAmount     decimal.Decimal
	ShippingAddress string
	Items           []Item
}

// SellerLookup resolves the current seller of a product inside tx.
type SellerLookup interface {
	SellerForProduct(ctx context.Context, tx *gorm.DB, productID uint) (*uint, error)
}

// CartClearer empties a user's cart inside tx.
type CartClearer interface {
	Clear(ctx context.Context, tx *gorm.DB, userID uint) error
}

// Listener is told about every committed order. It must not block.
type Listener interface {
	OrderPlaced(ctx context.Context, user models.User, order models.Order)
}

type Engine struct {
	db       *gorm.DB
	sellers  SellerLookup
	cart     CartClearer
	log      *zap.Logger
	policy   TotalPolicy
	pricing  Pricing
	metrics  *metrics.Metrics
	listener Listener
}

func NewEngine(db *gorm.DB, sellers SellerLookup, cart CartClearer, log *zap.Logger) *Engine {
	return &Engine{
		db:      db,
		sellers: sellers,
		cart:    cart,
		log:     log,
		policy:  TrustCaller,
		pricing: DefaultPricing(),
	}
}

func (e *Engine) WithTotalPolicy(policy TotalPolicy, pricing Pricing) *Engine {
	e.policy = policy
	e.pricing = pricing
	return e
}

func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

func (e *Engine) WithListener(l Listener) *Engine {
	e.listener = l
	return e
}

// PlaceOrder writes the order, one line per item with its seller resolved
// at this moment, and empties the buyer's cart, all in one transaction.
// A line whose product no longer exists is kept without a seller.
func (e *Engine) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := e.validate(in); err != nil {
		e.metrics.OrderFailed("validation")
		return nil, err
	}

	var user models.User
	if err := e.db.WithContext(ctx).Take(&user, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.metrics.OrderFailed("validation")
			return nil, invalid("user_id", "unknown user")
		}
		e.log.Error("load buyer", zap.Uint("user_id", in.UserID), zap.Error(err))
		e.metrics.OrderFailed("transaction")
		return nil, ErrOrderFailed
	}

	order := models.Order{
		UserID:          in.UserID,
		TotalAmount:     in.TotalAmount,
		Status:          models.StatusPending,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
	}
	var unattributed int

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unattributed = 0
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		lines := make([]models.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			sellerID, err := e.sellers.SellerForProduct(ctx, tx, it.ProductID)
			if err != nil {
				return err
			}
			if sellerID == nil {
				unattributed++
			}

			line := models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
				SellerID:  sellerID,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("insert line for product %d: %w", it.ProductID, err)
			}
			lines = append(lines, line)
		}
		order.Items = lines

		return e.cart.Clear(ctx, tx, in.UserID)
	})
	if err != nil {
		e.log.Error("place order rolled back",
			zap.Uint("user_id", in.UserID),
			zap.Int("items", len(in.Items)),
			zap.Error(err))
		e.metrics.OrderFailed("transaction")
		return nil, ErrOrderFailed
	}

	if unattributed > 0 {
		e.log.Warn("order lines without seller",
			zap.Uint("order_id", order.ID),
			zap.Int("lines", unattributed))
	}
	e.log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(order.Items)))
	e.metrics.OrderPlaced(len(order.Items), unattributed)

	if e.listener != nil {
		e.listener.OrderPlaced(ctx, user, order)
	}
	return &order, nil
}

func (e *Engine) validate(in PlaceOrderInput) error {
	if in.UserID == 0 {
		return invalid("user_id", "is required")
	}
	if len(in.Items) == 0 {
		return invalid("items", "at least one item is required")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.ProductID == 0:
			return invalid(field+".product_id", "is required")
		case it.Quantity <= 0:
			return invalid(field+".quantity", "must be greater than zero")
		case !it.Price.IsPositive():
			return invalid(field+".price", "must be greater than zero")
		case !WholeCents(it.Price):
			return invalid(field+".price", "must have at most 2 decimal places")
		}
	}
	if !in.TotalAmount.IsPositive() {
		return invalid("total_amount", "must be greater than zero")
	}
	if !WholeCents(in.TotalAmount) {
		return invalid("total_amount", "must have at most 2 decimal places")
	}

	if e.policy == VerifyTotal {
		want := e.pricing.Quote(in.Items).Total
		if !in.TotalAmount.Equal(want) {
			return invalid("total_amount", fmt.Sprintf("does not match items, expected %s", want.StringFixed(2)))
		}
	}
	return nil
}
