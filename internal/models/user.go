package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleFarmer   Role = "farmer"
	RoleAdmin    Role = "admin"
)

// User is a buyer, a seller (farmer) or the administrator.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	FarmName     string    `json:"farm_name,omitempty"`
	FarmLocation string    `json:"farm_location,omitempty"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	OIDCID       *string   `gorm:"column:oidc_id;uniqueIndex" json:"-"` // OpenID Connect subject
	CreatedAt    time.Time `json:"created_at"`
}
