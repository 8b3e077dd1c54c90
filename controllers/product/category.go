package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"gorm.io/gorm"
)

var errCategoryInUse = errors.New("category still has products")

// categoryImage stores the optional "image" upload. ok is false when a
// response has already been written.
func categoryImage(c *gin.Context, uploader *storage.ImageUploader) (*models.Image, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, true
	}
	name, err := uploader.SaveUpload(c.Request.Context(), file)
	if errors.Is(err, storage.ErrInvalidImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category image must be an image"})
		return nil, false
	}
	if err != nil {
		logger.Error("category image upload failed", map[string]any{"error": err})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return nil, false
	}
	return &models.Image{FileName: name}, true
}

func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).Preload("Image").Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func CreateCategory(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		image, ok := categoryImage(c, uploader)
		if !ok {
			return
		}

		category := models.Category{Name: name, Image: image}
		if err := db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
				return
			}
			logger.Error("failed to create category", map[string]any{"name": name, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// UpdateCategory renames the category; a new "image" replaces the old one,
// whose file is deleted.
func UpdateCategory(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		var category models.Category
		if err := db.Preload("Image").First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			return
		}
		image, ok := categoryImage(c, uploader)
		if !ok {
			return
		}

		previous := category.Image
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			updates := map[string]interface{}{"name": name}
			if image != nil {
				if err := tx.Create(image).Error; err != nil {
					return err
				}
				updates["image_id"] = image.ID
			}
			if err := tx.Model(&models.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
			if image != nil && previous != nil {
				return tx.Delete(&models.Image{}, previous.ID).Error
			}
			return nil
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		if err != nil {
			logger.Error("failed to update category", map[string]any{"category_id": id, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		if image != nil && previous != nil {
			deleteFiles(c.Request.Context(), uploader, []string{previous.FileName})
		}

		var updated models.Category
		if err := db.Preload("Image").First(&updated, id).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload category"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteCategory refuses to drop a category that still has products.
func DeleteCategory(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}

		var category models.Category
		if err := db.Preload("Image").First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
			return
		}

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errCategoryInUse
			}
			if err := tx.Delete(&models.Category{}, id).Error; err != nil {
				return err
			}
			if category.ImageID != nil {
				return tx.Delete(&models.Image{}, *category.ImageID).Error
			}
			return nil
		})
		if errors.Is(err, errCategoryInUse) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category still has products"})
			return
		}
		if err != nil {
			logger.Error("failed to delete category", map[string]any{"category_id": id, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}
		if category.Image != nil {
			deleteFiles(c.Request.Context(), uploader, []string{category.Image.FileName})
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}
