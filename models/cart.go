package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is either a guest cart (UserID nil, found by Token) or a user cart.
// The unique index on user_id allows any number of NULLs, so it enforces
// one cart per owner only.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"token"`
	UserID    *uint      `gorm:"uniqueIndex" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem holds one line per product; a second insert for the same
// product fails on idx_cart_product.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;index;not null" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Ordered   bool      `gorm:"not null;default:false" json:"ordered"`
	AddedAt   time.Time `json:"added_at"`
}

func (c *Cart) IsOwned() bool {
	return c.UserID != nil
}
