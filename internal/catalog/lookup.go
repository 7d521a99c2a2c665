// Package catalog answers point-in-time questions about products.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Keoroanthony/farmmarket/internal/models"
)

type Lookup struct{}

// SellerForProduct returns the seller of productID as seen by tx. A missing
// product and a product without a seller both yield (nil, nil).
func (Lookup) SellerForProduct(ctx context.Context, tx *gorm.DB, productID uint) (*uint, error) {
	var product models.Product
	err := tx.WithContext(ctx).
		Select("id", "seller_id").
		Take(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup seller for product %d: %w", productID, err)
	}
	return product.SellerID, nil
}
