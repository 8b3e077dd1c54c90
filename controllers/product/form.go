package productcontroller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/storage"
	"github.com/shopspring/decimal"
)

var (
	minPrice = decimal.RequireFromString("0.01")
	maxPrice = decimal.NewFromInt(1000000)
)

// productForm is the multipart form shared by create and update.
type productForm struct {
	Name        string
	Price       decimal.Decimal
	Quantity    int
	Description string
	CategoryID  uint
	TagIDs      []uint
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// parseIDList accepts repeated values and comma separated lists.
func parseIDList(values []string) ([]uint, error) {
	var ids []uint
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			id, err := strconv.ParseUint(tok, 10, 64)
			if err != nil {
				return nil, errors.New("invalid id list")
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.New("price must be a number")
	}
	if price.LessThan(minPrice) || price.GreaterThan(maxPrice) {
		return decimal.Zero, errors.New("price must be between 0.01 and 1000000")
	}
	return price.Round(2), nil
}

func parseProductForm(c *gin.Context) (productForm, error) {
	var f productForm
	f.Name = strings.TrimSpace(c.PostForm("name"))
	if f.Name == "" {
		return f, errors.New("name is required")
	}

	price, err := parsePrice(c.PostForm("price"))
	if err != nil {
		return f, err
	}
	f.Price = price

	f.Quantity, err = strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("quantity", "0")))
	if err != nil || f.Quantity < 0 {
		return f, errors.New("quantity must be a non-negative integer")
	}

	categoryID, err := strconv.ParseUint(c.PostForm("category_id"), 10, 64)
	if err != nil || categoryID == 0 {
		return f, errors.New("category_id is required")
	}
	f.CategoryID = uint(categoryID)

	f.Description = c.PostForm("description")
	if f.TagIDs, err = parseIDList(c.PostFormArray("tag_ids")); err != nil {
		return f, errors.New("invalid tag_ids")
	}
	return f, nil
}

// saveFormImages stores every file posted under field.
func saveFormImages(c *gin.Context, uploader *storage.ImageUploader, field string) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File[field]) == 0 {
		return nil, true
	}
	names, err := uploader.SaveUploads(c.Request.Context(), form.File[field])
	if errors.Is(err, storage.ErrInvalidImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files can be uploaded"})
		return nil, false
	}
	if err != nil {
		logger.Error("image upload failed", map[string]any{"path": c.Request.URL.Path, "error": err})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save images"})
		return nil, false
	}
	return names, true
}

// deleteFiles removes stored files once the rows pointing at them are gone.
func deleteFiles(ctx context.Context, uploader *storage.ImageUploader, names []string) {
	for _, name := range names {
		if err := uploader.Delete(ctx, name); err != nil {
			logger.Error("failed to delete image file", map[string]any{"file": name, "error": err})
		}
	}
}
