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

var errUnknownCategory = errors.New("category does not exist")
var errUnknownTag = errors.New("one or more tags do not exist")

// loadTags returns the tags for ids, failing if any id is unknown.
func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	unique := map[uint]bool{}
	for _, id := range ids {
		unique[id] = true
	}
	if len(tags) != len(unique) {
		return nil, errUnknownTag
	}
	return tags, nil
}

func categoryExists(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return errUnknownCategory
	}
	return nil
}

// CreateProduct creates a product from a multipart form with any number of
// "images" files and "tag_ids".
func CreateProduct(db *gorm.DB, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1️⃣ Validate form
		form, err := parseProductForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// 2️⃣ Store images before touching the database
		fileNames, ok := saveFormImages(c, uploader, "images")
		if !ok {
			return
		}

		// 3️⃣ Insert product, images and tag links together
		product := models.Product{
			Name:        form.Name,
			Price:       form.Price,
			Quantity:    form.Quantity,
			Description: form.Description,
			CategoryID:  form.CategoryID,
			Images:      models.NewImages(fileNames),
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := categoryExists(tx, form.CategoryID); err != nil {
				return err
			}
			tags, err := loadTags(tx, form.TagIDs)
			if err != nil {
				return err
			}
			product.Tags = tags
			return tx.Omit("Tags.*").Create(&product).Error
		})
		if errors.Is(err, errUnknownCategory) || errors.Is(err, errUnknownTag) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			logger.Error("failed to create product", map[string]any{"name": form.Name, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		logger.Info("product created", map[string]any{"product_id": product.ID, "images": len(fileNames)})
		c.JSON(http.StatusCreated, product)
	}
}
