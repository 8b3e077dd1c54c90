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

// UpdateProduct replaces the product fields and tags. Uploaded "images"
// are added to the existing ones; removing an image has its own endpoint.
func UpdateProduct(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		form, err := parseProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var product models.Product
		if err := db.WithContext(c.Request.Context()).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		fileNames, ok := saveFormImages(c, uploader, "images")
		if !ok {
			return
		}

		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := categoryExists(tx, form.CategoryID); err != nil {
				return err
			}
			tags, err := loadTags(tx, form.TagIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Updates(map[string]interface{}{
				"name":        form.Name,
				"price":       form.Price,
				"quantity":    form.Quantity,
				"description": form.Description,
				"category_id": form.CategoryID,
			}).Error; err != nil {
				return err
			}
			if err := tx.Model(&product).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
				return err
			}
			if len(fileNames) > 0 {
				images := models.NewImages(fileNames)
				if err := tx.Create(&images).Error; err != nil {
					return err
				}
				if err := tx.Model(&product).Omit("Images.*").Association("Images").Append(images); err != nil {
					return err
				}
			}
			return nil
		})
		if errors.Is(err, errUnknownCategory) || errors.Is(err, errUnknownTag) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			logger.Error("failed to update product", map[string]any{"product_id": id, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}

		var updated models.Product
		if err := db.Preload("Category").Preload("Images").Preload("Tags").First(&updated, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload product"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
