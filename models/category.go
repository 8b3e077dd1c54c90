package models

type Category struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	ImageID  *uint     `json:"-"`
	Image    *Image    `gorm:"constraint:OnDelete:SET NULL" json:"image,omitempty"`
	Products []Product `json:"products,omitempty"`
}
