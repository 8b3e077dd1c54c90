package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/models"
)

// Repository is the persistence the cart service needs. Lookups return
// ErrNotFound when nothing matches.
type Repository interface {
	FindCartByOwner(ctx context.Context, userID uint) (*models.Cart, error)
	// FindUnownedCartByToken only matches carts without an owner, so a
	// token that was promoted to a user cart can't be picked up again.
	FindUnownedCartByToken(ctx context.Context, token uuid.UUID) (*models.Cart, error)
	// CreateCart persists a new cart with a fresh token right away.
	CreateCart(ctx context.Context, owner *uint) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

type ProductFinder interface {
	ProductExists(ctx context.Context, productID uint) (bool, error)
}
