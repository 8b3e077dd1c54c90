package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// withItems loads items, their product and the product's images.
func (r *GormRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id")
		}).
		Preload("Items.Product").
		Preload("Items.Product.Images")
}

func (r *GormRepository) FindCartByOwner(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withItems(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, translateError(err)
	}
	return &cart, nil
}

func (r *GormRepository) FindUnownedCartByToken(ctx context.Context, token uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.withItems(ctx).
		Where("token = ? AND user_id IS NULL", token).
		First(&cart).Error; err != nil {
		return nil, translateError(err)
	}
	return &cart, nil
}

func (r *GormRepository) CreateCart(ctx context.Context, owner *uint) (*models.Cart, error) {
	cart := &models.Cart{
		Token:     uuid.New(),
		UpdatedAt: time.Now().UTC(),
		Items:     []models.CartItem{},
	}
	if owner != nil {
		id := *owner
		cart.UserID = &id
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error; err != nil {
		return nil, translateError(err)
	}
	return cart, nil
}

// Save writes the cart row and its items in one transaction. Products
// referenced by items are never written.
func (r *GormRepository) Save(ctx context.Context, cart *models.Cart) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]interface{}{
				"user_id":    cart.UserID,
				"updated_at": cart.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// deleted underneath us (e.g. owner removed)
			return ErrConcurrencyConflict
		}

		for i := range cart.Items {
			item := &cart.Items[i]
			item.CartID = cart.ID
			if item.ID == 0 {
				if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&models.CartItem{}).
				Where("id = ? AND cart_id = ?", item.ID, cart.ID).
				Updates(map[string]interface{}{
					"quantity": item.Quantity,
					"ordered":  item.Ordered,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translateError(err)
}

func (r *GormRepository) ProductExists(ctx context.Context, productID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
