package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL      string          `json:"image_url,omitempty"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	CategoryID    uint            `gorm:"index;not null" json:"category_id"`
	Category      Category        `json:"category"`
	SellerID      *uint           `gorm:"index" json:"seller_id"`
	Seller        *User           `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}
