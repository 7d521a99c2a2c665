package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/models"
)

// OrderFilter selects a buyer's orders (UserID) or the orders containing at
// least one line sold by SellerID. Exactly one must be set.
type OrderFilter struct {
	UserID   uint
	SellerID uint
}

type OrderView struct {
	ID              uint               `json:"id"`
	UserID          uint               `json:"user_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          models.OrderStatus `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           []ItemView         `json:"items"`
}

// ItemView is a line with its frozen price and quantity next to the
// product's current name and image. Both are empty once the product is gone.
type ItemView struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	SellerID  *uint           `json:"seller_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
}

// AdminOrder is an order header with its buyer's contact details.
type AdminOrder struct {
	ID              uint               `json:"id"`
	UserID          uint               `json:"user_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          models.OrderStatus `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	CreatedAt       time.Time          `json:"created_at"`
	UserName        string             `json:"user_name"`
	UserEmail       string             `json:"user_email"`
}

type SellerStats struct {
	Products int64           `json:"products"`
	Orders   int64           `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type QueryService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewQueryService(db *gorm.DB, log *zap.Logger) *QueryService {
	return &QueryService{db: db, log: log}
}

// orderRow is one row of the orders/order_items/products left join. Line
// columns are null for an order without lines.
type orderRow struct {
	OrderID         uint
	UserID          uint
	TotalAmount     decimal.Decimal
	Status          models.OrderStatus
	ShippingAddress string
	CreatedAt       time.Time
	ItemID          *uint
	ProductID       *uint
	Quantity        *int
	Price           decimal.NullDecimal
	SellerID        *uint
	ProductName     *string
	ImageURL        *string
}

// ListOrders returns matching orders newest first, each with its lines in
// insertion order. No match yields an empty slice.
func (q *QueryService) ListOrders(ctx context.Context, f OrderFilter) ([]OrderView, error) {
	if (f.UserID == 0) == (f.SellerID == 0) {
		return nil, invalid("filter", "exactly one of user or seller is required")
	}

	stmt := q.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.id AS order_id, o.user_id, o.total_amount, o.status, o.shipping_address, o.created_at,
			oi.id AS item_id, oi.product_id, oi.quantity, oi.price, oi.seller_id,
			p.name AS product_name, p.image_url`).
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id")

	if f.UserID != 0 {
		stmt = stmt.Where("o.user_id = ?", f.UserID)
	} else {
		sold := q.db.Model(&models.OrderItem{}).Select("order_id").Where("seller_id = ?", f.SellerID)
		stmt = stmt.Where("o.id IN (?)", sold)
	}

	var rows []orderRow
	if err := stmt.Order("o.created_at DESC, o.id DESC, oi.id ASC").Scan(&rows).Error; err != nil {
		q.log.Error("list orders",
			zap.Uint("user_id", f.UserID),
			zap.Uint("seller_id", f.SellerID),
			zap.Error(err))
		return nil, ErrQueryFailed
	}
	return groupOrders(rows), nil
}

// groupOrders folds joined rows into one view per order, keeping the order
// in which each id first appears.
func groupOrders(rows []orderRow) []OrderView {
	views := make([]OrderView, 0)
	index := make(map[uint]int)

	for _, r := range rows {
		i, seen := index[r.OrderID]
		if !seen {
			i = len(views)
			index[r.OrderID] = i
			views = append(views, OrderView{
				ID:              r.OrderID,
				UserID:          r.UserID,
				TotalAmount:     r.TotalAmount,
				Status:          r.Status,
				ShippingAddress: r.ShippingAddress,
				CreatedAt:       r.CreatedAt,
				Items:           []ItemView{},
			})
		}
		if r.ItemID == nil {
			continue
		}

		item := ItemView{ID: *r.ItemID, SellerID: r.SellerID, Price: r.Price.Decimal}
		if r.ProductID != nil {
			item.ProductID = *r.ProductID
		}
		if r.Quantity != nil {
			item.Quantity = *r.Quantity
		}
		if r.ProductName != nil {
			item.Name = *r.ProductName
		}
		if r.ImageURL != nil {
			item.ImageURL = *r.ImageURL
		}
		views[i].Items = append(views[i].Items, item)
	}
	return views
}

// ListAll returns every order header with its buyer, newest first.
func (q *QueryService) ListAll(ctx context.Context) ([]AdminOrder, error) {
	orders := []AdminOrder{}
	err := q.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.user_id, o.total_amount, o.status, o.shipping_address, o.created_at, u.name AS user_name, u.email AS user_email").
		Joins("JOIN users u ON u.id = o.user_id").
		Order("o.created_at DESC, o.id DESC").
		Scan(&orders).Error
	if err != nil {
		q.log.Error("list all orders", zap.Error(err))
		return nil, ErrQueryFailed
	}
	return orders, nil
}

// SellerStats counts a seller's products and the orders holding their
// lines, and sums quantity times price over those lines.
func (q *QueryService) SellerStats(ctx context.Context, sellerID uint) (SellerStats, error) {
	var stats SellerStats
	db := q.db.WithContext(ctx)

	if err := db.Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&stats.Products).Error; err != nil {
		q.log.Error("count seller products", zap.Uint("seller_id", sellerID), zap.Error(err))
		return stats, ErrQueryFailed
	}

	var agg struct {
		Orders  int64
		Revenue decimal.NullDecimal
	}
	err := db.Model(&models.OrderItem{}).
		Select("COUNT(DISTINCT order_id) AS orders, SUM(quantity * price) AS revenue").
		Where("seller_id = ?", sellerID).
		Scan(&agg).Error
	if err != nil {
		q.log.Error("aggregate seller lines", zap.Uint("seller_id", sellerID), zap.Error(err))
		return stats, ErrQueryFailed
	}

	stats.Orders = agg.Orders
	stats.Revenue = agg.Revenue.Decimal.Round(2)
	return stats, nil
}
