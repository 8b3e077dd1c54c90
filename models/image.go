package models

import (
	"time"

	"github.com/junaidrashid-git/storefront/storage"
	"gorm.io/gorm"
)

// Image is an uploaded file. FileName is the stored name handed out by the
// blob store; Src is derived from it and never persisted.
type Image struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	Src       string    `gorm:"-" json:"src"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Image) AfterFind(tx *gorm.DB) error {
	i.Src = storage.PublicURL(i.FileName)
	return nil
}

func (i *Image) AfterCreate(tx *gorm.DB) error {
	i.Src = storage.PublicURL(i.FileName)
	return nil
}

func NewImages(fileNames []string) []Image {
	images := make([]Image, 0, len(fileNames))
	for _, name := range fileNames {
		images = append(images, Image{FileName: name})
	}
	return images
}
