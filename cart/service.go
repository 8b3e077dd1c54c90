// Package cart resolves the single cart that belongs to a request and
// applies the add/count/mark-ordered operations on it.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/models"
)

// MergeOutcome reports what PromoteGuestCart did with the guest cart.
type MergeOutcome string

const (
	MergeNoGuestCart MergeOutcome = "no-guest-cart"
	MergePromoted    MergeOutcome = "promoted"
	// MergeAbandoned: the user already had a cart, the guest cart stays
	// unowned and its items are not copied over.
	MergeAbandoned MergeOutcome = "guest-cart-abandoned"
)

type Service struct {
	carts    Repository
	products ProductFinder
	now      func() time.Time
}

func NewService(carts Repository, products ProductFinder) *Service {
	return &Service{
		carts:    carts,
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ParseToken returns the cart token carried by a cookie value. Anything
// that isn't a non-nil UUID counts as no token.
func ParseToken(raw string) (uuid.UUID, bool) {
	if raw == "" {
		return uuid.Nil, false
	}
	token, err := uuid.Parse(raw)
	if err != nil || token == uuid.Nil {
		return uuid.Nil, false
	}
	return token, true
}

// ResolveForUser returns the user's cart, creating it on first use. Guest
// tokens are never looked at here.
func (s *Service) ResolveForUser(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.carts.FindCartByOwner(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	cart, err = s.carts.CreateCart(ctx, &userID)
	if errors.Is(err, ErrConcurrencyConflict) {
		// another request created it first
		return s.carts.FindCartByOwner(ctx, userID)
	}
	return cart, err
}

// ResolveAnonymous returns the unowned cart matching rawToken, or a fresh
// unowned cart if the token is missing, malformed, unknown or already
// belongs to a user.
func (s *Service) ResolveAnonymous(ctx context.Context, rawToken string) (*models.Cart, error) {
	if token, ok := ParseToken(rawToken); ok {
		cart, err := s.carts.FindUnownedCartByToken(ctx, token)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return s.carts.CreateCart(ctx, nil)
}

// PromoteGuestCart runs after a successful sign-in. A guest cart is only
// promoted when the user has no cart yet; the returned cart is the user's
// cart when one exists afterwards.
func (s *Service) PromoteGuestCart(ctx context.Context, userID uint, rawToken string) (MergeOutcome, *models.Cart, error) {
	token, hasToken := ParseToken(rawToken)

	owned, err := s.carts.FindCartByOwner(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", nil, err
	}
	if !hasToken {
		return MergeNoGuestCart, owned, nil
	}

	guest, err := s.carts.FindUnownedCartByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return MergeNoGuestCart, owned, nil
	}
	if err != nil {
		return "", nil, err
	}
	if owned != nil {
		return MergeAbandoned, owned, nil
	}

	owner := userID
	guest.UserID = &owner
	guest.UpdatedAt = s.now()
	if err := s.carts.Save(ctx, guest); err != nil {
		guest.UserID = nil
		return "", nil, fmt.Errorf("promote guest cart %d: %w", guest.ID, err)
	}
	return MergePromoted, guest, nil
}

// AddItem adds quantity of productID to the cart. Stock is not checked.
func (s *Service) AddItem(ctx context.Context, cart *models.Cart, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if productID == 0 {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}
	exists, err := s.products.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}

	found := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			found = i
			break
		}
	}
	now := s.now()
	if found >= 0 {
		cart.Items[found].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   now,
		})
	}
	prev := cart.UpdatedAt
	cart.UpdatedAt = now

	if err := s.carts.Save(ctx, cart); err != nil {
		// keep the in-memory cart in line with what's stored
		if found >= 0 {
			cart.Items[found].Quantity -= quantity
		} else {
			cart.Items = cart.Items[:len(cart.Items)-1]
		}
		cart.UpdatedAt = prev
		return err
	}
	return nil
}

// ItemCount is the sum of all line quantities.
func (s *Service) ItemCount(cart *models.Cart) int {
	total := 0
	for _, item := range cart.Items {
		total += item.Quantity
	}
	return total
}

// MarkOrdered flags one item of the cart as ordered. Marking an item that
// is already ordered does nothing.
func (s *Service) MarkOrdered(ctx context.Context, cart *models.Cart, itemID uint) (*models.CartItem, error) {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ID != itemID {
			continue
		}
		if item.Ordered {
			return item, nil
		}
		item.Ordered = true
		prev := cart.UpdatedAt
		cart.UpdatedAt = s.now()
		if err := s.carts.Save(ctx, cart); err != nil {
			item.Ordered = false
			cart.UpdatedAt = prev
			return nil, err
		}
		return item, nil
	}
	return nil, fmt.Errorf("%w: item %d is not in cart %d", ErrNotFound, itemID, cart.ID)
}

// CartForOwner looks up a user's cart without creating one.
func (s *Service) CartForOwner(ctx context.Context, userID uint) (*models.Cart, error) {
	return s.carts.FindCartByOwner(ctx, userID)
}
