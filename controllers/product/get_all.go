package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
)

// GetProducts lists products filtered by ?category_id= and a name
// substring ?q=, newest first.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, ok := findProducts(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// Home is the storefront landing data: every category plus the filtered
// product list.
func Home(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).Preload("Image").Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		products, ok := findProducts(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"categories":  categories,
			"products":    products,
			"category_id": c.Query("category_id"),
			"q":           c.Query("q"),
		})
	}
}

func findProducts(c *gin.Context, db *gorm.DB) ([]models.Product, bool) {
	query := db.WithContext(c.Request.Context()).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Images").
		Preload("Tags")

	if raw := c.Query("category_id"); raw != "" {
		cid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return nil, false
		}
		query = query.Where("category_id = ?", uint(cid))
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var products []models.Product
	if err := query.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return nil, false
	}
	return products, true
}
