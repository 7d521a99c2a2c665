// Package cart manages the pending product selections of a buyer.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/models"
)

var (
	ErrNotFound        = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// Line is a cart row joined with the live product fields a storefront shows.
type Line struct {
	ID            uint            `json:"id"`
	UserID        uint            `json:"user_id"`
	ProductID     uint            `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	StockQuantity int             `json:"stock_quantity"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, userID uint) ([]Line, error) {
	lines := []Line{}
	err := s.db.WithContext(ctx).
		Table("cart_items AS c").
		Select("c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.image_url, p.stock_quantity").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.id").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("list cart for user %d: %w", userID, err)
	}
	return lines, nil
}

// Add puts quantity of productID into the cart, merging with an existing
// row for the same product. created reports whether a new row was inserted.
func (s *Service) Add(ctx context.Context, userID, productID uint, quantity int) (item models.CartItem, created bool, err error) {
	if quantity <= 0 {
		return item, false, ErrInvalidQuantity
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").Take(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Take(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			created = true
			return tx.Create(&item).Error
		case err != nil:
			return err
		}

		item.Quantity += quantity
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})
	if err != nil && !errors.Is(err, ErrProductNotFound) {
		err = fmt.Errorf("add product %d to cart of user %d: %w", productID, userID, err)
	}
	return item, created, err
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (models.CartItem, error) {
	var item models.CartItem
	if quantity <= 0 {
		return item, ErrInvalidQuantity
	}

	res := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return item, fmt.Errorf("update cart item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return item, ErrNotFound
	}

	if err := s.db.WithContext(ctx).Take(&item, itemID).Error; err != nil {
		return item, fmt.Errorf("reload cart item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("remove cart item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear deletes every cart row of userID through tx, so it commits or rolls
// back with the caller's transaction.
func (s *Service) Clear(ctx context.Context, tx *gorm.DB, userID uint) error {
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}
