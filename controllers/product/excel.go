package productcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// Sheet columns shared by import and export.
var excelHeaders = []string{"ID", "Name", "Price", "Quantity", "Description", "CategoryID", "TagIDs"}

type importRow struct {
	ID   uint
	Form productForm
}

func parseImportRow(row *xlsx.Row) (importRow, error) {
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	var r importRow
	if raw := get(0); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return r, fmt.Errorf("invalid ID %q", raw)
		}
		r.ID = uint(id)
	}

	r.Form.Name = get(1)
	if r.Form.Name == "" {
		return r, fmt.Errorf("name is required")
	}
	price, err := parsePrice(get(2))
	if err != nil {
		return r, err
	}
	r.Form.Price = price

	if raw := get(3); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return r, fmt.Errorf("quantity must be a non-negative integer")
		}
		r.Form.Quantity = qty
	}
	r.Form.Description = get(4)

	cid, err := strconv.ParseUint(get(5), 10, 64)
	if err != nil || cid == 0 {
		return r, fmt.Errorf("category_id is required")
	}
	r.Form.CategoryID = uint(cid)

	if r.Form.TagIDs, err = parseIDList([]string{get(6)}); err != nil {
		return r, fmt.Errorf("invalid tag ids")
	}
	return r, nil
}

// applyImportRow updates the product named by ID, or creates one when the
// ID is blank or unknown.
func applyImportRow(tx *gorm.DB, r importRow) (created bool, err error) {
	if err := categoryExists(tx, r.Form.CategoryID); err != nil {
		return false, err
	}
	tags, err := loadTags(tx, r.Form.TagIDs)
	if err != nil {
		return false, err
	}

	var product models.Product
	if r.ID != 0 {
		err := tx.First(&product, r.ID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}

	product.Name = r.Form.Name
	product.Price = r.Form.Price
	product.Quantity = r.Form.Quantity
	product.Description = r.Form.Description
	product.CategoryID = r.Form.CategoryID

	if product.ID == 0 {
		if err := tx.Omit("Tags.*").Create(&models.Product{
			Name:        product.Name,
			Price:       product.Price,
			Quantity:    product.Quantity,
			Description: product.Description,
			CategoryID:  product.CategoryID,
			Tags:        tags,
		}).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	if err := tx.Model(&product).Select("name", "price", "quantity", "description", "category_id").Updates(&product).Error; err != nil {
		return false, err
	}
	return false, tx.Model(&product).Omit("Tags.*").Association("Tags").Replace(tags)
}

func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, header.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		created, updated := 0, 0
		skipped := []gin.H{}

		// Row 0 is the header; spreadsheet rows are reported 1-based.
		for i := 1; i < sheet.MaxRow; i++ {
			r, err := parseImportRow(sheet.Rows[i])
			if err == nil {
				var isNew bool
				err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
					var txErr error
					isNew, txErr = applyImportRow(tx, r)
					return txErr
				})
				if err == nil {
					if isNew {
						created++
					} else {
						updated++
					}
					continue
				}
			}
			skipped = append(skipped, gin.H{"row": i + 1, "error": err.Error()})
		}

		logger.Info("📥 product import finished", map[string]any{
			"created": created,
			"updated": updated,
			"skipped": len(skipped),
		})
		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": created,
			"updated_count": updated,
			"skipped_count": len(skipped),
			"skipped":       skipped,
		})
	}
}
