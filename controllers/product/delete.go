package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"gorm.io/gorm"
)

// DeleteProduct removes the product, its tag and image links, its image
// rows and any cart lines pointing at it. Files go after the commit.
func DeleteProduct(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var product models.Product
		if err := db.Preload("Images").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		// Association Clear empties product.Images, so keep what we need first.
		imageIDs := make([]uint, 0, len(product.Images))
		fileNames := make([]string, 0, len(product.Images))
		for _, img := range product.Images {
			imageIDs = append(imageIDs, img.ID)
			fileNames = append(fileNames, img.FileName)
		}

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&product).Association("Tags").Clear(); err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Images").Clear(); err != nil {
				return err
			}
			if len(imageIDs) > 0 {
				if err := tx.Delete(&models.Image{}, imageIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Product{}, id).Error
		})
		if err != nil {
			logger.Error("failed to delete product", map[string]any{"product_id": id, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
			return
		}

		deleteFiles(c.Request.Context(), uploader, fileNames)

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// DeleteProductImage detaches one image from a product and removes it.
func DeleteProductImage(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := idParam(c, "id")
		if !ok {
			return
		}
		imageID, ok := idParam(c, "imageId")
		if !ok {
			return
		}

		var product models.Product
		err := db.Preload("Images", "images.id = ?", imageID).First(&product, productID).Error
		if err == nil && len(product.Images) == 0 {
			err = gorm.ErrRecordNotFound
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
			return
		}
		image := product.Images[0]
		fileName := image.FileName

		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&product).Association("Images").Delete(&image); err != nil {
				return err
			}
			return tx.Delete(&models.Image{}, imageID).Error
		})
		if err != nil {
			logger.Error("failed to delete image", map[string]any{"image_id": imageID, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
			return
		}
		deleteFiles(c.Request.Context(), uploader, []string{fileName})

		c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
	}
}
