package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"` // stock on hand
	Description string          `json:"description"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Tags        []Tag           `gorm:"many2many:product_tags;" json:"tags"`
	Images      []Image         `gorm:"many2many:product_images;" json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Tag struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	Products []Product `gorm:"many2many:product_tags;" json:"-"`
}
