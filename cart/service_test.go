package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/models"
)

// memRepo keeps copies of carts so callers only see what was saved.
type memRepo struct {
	nextCart  uint
	nextItem  uint
	carts     map[uint]*models.Cart
	products  map[uint]bool
	saveErr   error
	saveCalls int
}

func newMemRepo(productIDs ...uint) *memRepo {
	r := &memRepo{carts: map[uint]*models.Cart{}, products: map[uint]bool{}}
	for _, id := range productIDs {
		r.products[id] = true
	}
	return r
}

func cloneCart(c *models.Cart) *models.Cart {
	cp := *c
	if c.UserID != nil {
		owner := *c.UserID
		cp.UserID = &owner
	}
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp
}

func (r *memRepo) FindCartByOwner(_ context.Context, userID uint) (*models.Cart, error) {
	for _, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID {
			return cloneCart(c), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindUnownedCartByToken(_ context.Context, token uuid.UUID) (*models.Cart, error) {
	for _, c := range r.carts {
		if c.Token == token && c.UserID == nil {
			return cloneCart(c), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) CreateCart(ctx context.Context, owner *uint) (*models.Cart, error) {
	if owner != nil {
		if _, err := r.FindCartByOwner(ctx, *owner); err == nil {
			return nil, ErrConcurrencyConflict
		}
	}
	r.nextCart++
	c := &models.Cart{ID: r.nextCart, Token: uuid.New(), UserID: owner}
	r.carts[c.ID] = cloneCart(c)
	return c, nil
}

func (r *memRepo) Save(_ context.Context, c *models.Cart) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.carts[c.ID]
	if !ok {
		return ErrConcurrencyConflict
	}
	if stored.UserID != nil && c.UserID == nil {
		return errors.New("owner cannot be cleared")
	}
	for i := range c.Items {
		if c.Items[i].ID == 0 {
			r.nextItem++
			c.Items[i].ID = r.nextItem
			c.Items[i].CartID = c.ID
		}
	}
	r.carts[c.ID] = cloneCart(c)
	return nil
}

func (r *memRepo) ProductExists(_ context.Context, id uint) (bool, error) {
	return r.products[id], nil
}

func (r *memRepo) itemRows() int {
	n := 0
	for _, c := range r.carts {
		n += len(c.Items)
	}
	return n
}

func newTestService(repo *memRepo) *Service {
	s := NewService(repo, repo)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestAddItemSameProductAccumulates(t *testing.T) {
	repo := newMemRepo(7)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, err := svc.ResolveAnonymous(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem(ctx, cart, 7, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.AddItem(ctx, cart, 7, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	reloaded, _ := svc.ResolveAnonymous(ctx, cart.Token.String())
	if len(reloaded.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(reloaded.Items))
	}
	if reloaded.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", reloaded.Items[0].Quantity)
	}
	if !reloaded.UpdatedAt.Equal(svc.now()) {
		t.Fatalf("updated_at not bumped: %v", reloaded.UpdatedAt)
	}
}

func TestItemCountSumsQuantities(t *testing.T) {
	repo := newMemRepo(1, 2)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, _ := svc.ResolveAnonymous(ctx, "")
	if err := svc.AddItem(ctx, cart, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddItem(ctx, cart, 2, 3); err != nil {
		t.Fatal(err)
	}
	if got := svc.ItemCount(cart); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := svc.ItemCount(&models.Cart{}); got != 0 {
		t.Fatalf("empty cart should count 0, got %d", got)
	}
}

func TestResolveAnonymousSameCookieSameCart(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	first, err := svc.ResolveAnonymous(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ResolveAnonymous(ctx, first.Token.String())
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected cart %d again, got %d", first.ID, second.ID)
	}
}

func TestResolveAnonymousBadTokenCreatesCart(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, raw := range []string{"not-a-uuid", uuid.Nil.String(), uuid.NewString()} {
		cart, err := svc.ResolveAnonymous(ctx, raw)
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if cart.UserID != nil || cart.ID == 0 {
			t.Fatalf("%q: expected a fresh unowned cart, got %+v", raw, cart)
		}
	}
	if len(repo.carts) != 3 {
		t.Fatalf("expected 3 carts, got %d", len(repo.carts))
	}
}

func TestOwnedTokenIsNotReusedAnonymously(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	guest, _ := svc.ResolveAnonymous(ctx, "")
	outcome, _, err := svc.PromoteGuestCart(ctx, 42, guest.Token.String())
	if err != nil || outcome != MergePromoted {
		t.Fatalf("promote: %v %v", outcome, err)
	}

	later, err := svc.ResolveAnonymous(ctx, guest.Token.String())
	if err != nil {
		t.Fatal(err)
	}
	if later.ID == guest.ID {
		t.Fatal("owned cart was handed out to an anonymous session")
	}
	if later.UserID != nil {
		t.Fatal("new anonymous cart must be unowned")
	}
}

func TestPromoteGuestCartWithoutUserCart(t *testing.T) {
	repo := newMemRepo(3)
	svc := newTestService(repo)
	ctx := context.Background()

	guest, _ := svc.ResolveAnonymous(ctx, "")
	if err := svc.AddItem(ctx, guest, 3, 4); err != nil {
		t.Fatal(err)
	}
	itemID := guest.Items[0].ID

	outcome, promoted, err := svc.PromoteGuestCart(ctx, 9, guest.Token.String())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != MergePromoted {
		t.Fatalf("expected promoted, got %s", outcome)
	}
	if promoted.ID != guest.ID {
		t.Fatalf("promotion must happen in place, got cart %d", promoted.ID)
	}

	userCart, err := svc.ResolveForUser(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if userCart.ID != guest.ID || userCart.UserID == nil || *userCart.UserID != 9 {
		t.Fatalf("user cart is not the promoted guest cart: %+v", userCart)
	}
	if len(userCart.Items) != 1 || userCart.Items[0].ID != itemID || userCart.Items[0].Quantity != 4 {
		t.Fatalf("items changed by promotion: %+v", userCart.Items)
	}
	if len(repo.carts) != 1 {
		t.Fatalf("promotion must not create carts, have %d", len(repo.carts))
	}
}

func TestPromoteGuestCartAbandonedWhenUserHasCart(t *testing.T) {
	repo := newMemRepo(1, 2)
	svc := newTestService(repo)
	ctx := context.Background()

	userCart, _ := svc.ResolveForUser(ctx, 5)
	if err := svc.AddItem(ctx, userCart, 1, 1); err != nil {
		t.Fatal(err)
	}
	guest, _ := svc.ResolveAnonymous(ctx, "")
	if err := svc.AddItem(ctx, guest, 2, 6); err != nil {
		t.Fatal(err)
	}

	outcome, cart, err := svc.PromoteGuestCart(ctx, 5, guest.Token.String())
	if err != nil {
		t.Fatal(err)
	}
	if outcome != MergeAbandoned {
		t.Fatalf("expected abandoned, got %s", outcome)
	}
	if cart.ID != userCart.ID {
		t.Fatalf("expected the existing user cart back, got %d", cart.ID)
	}

	resolved, _ := svc.ResolveForUser(ctx, 5)
	for _, item := range resolved.Items {
		if item.ProductID == 2 {
			t.Fatal("guest items leaked into the user cart")
		}
	}
	if svc.ItemCount(resolved) != 1 {
		t.Fatalf("user cart count changed: %d", svc.ItemCount(resolved))
	}

	left, err := repo.FindUnownedCartByToken(ctx, guest.Token)
	if err != nil {
		t.Fatalf("guest cart should still be unowned: %v", err)
	}
	if len(left.Items) != 1 || left.Items[0].Quantity != 6 {
		t.Fatalf("guest cart items touched: %+v", left.Items)
	}
}

func TestPromoteGuestCartNoToken(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	outcome, cart, err := svc.PromoteGuestCart(ctx, 1, "")
	if err != nil || outcome != MergeNoGuestCart || cart != nil {
		t.Fatalf("got %v %v %v", outcome, cart, err)
	}
	outcome, _, err = svc.PromoteGuestCart(ctx, 1, uuid.NewString())
	if err != nil || outcome != MergeNoGuestCart {
		t.Fatalf("unknown token: got %v %v", outcome, err)
	}
}

func TestResolveForUserIgnoresGuestCarts(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	guest, _ := svc.ResolveAnonymous(ctx, "")
	userCart, err := svc.ResolveForUser(ctx, 11)
	if err != nil {
		t.Fatal(err)
	}
	if userCart.ID == guest.ID {
		t.Fatal("user resolution must not pick up a guest cart")
	}
	again, _ := svc.ResolveForUser(ctx, 11)
	if again.ID != userCart.ID {
		t.Fatalf("expected same user cart, got %d and %d", userCart.ID, again.ID)
	}
}

func TestMarkOrderedIsIdempotent(t *testing.T) {
	repo := newMemRepo(1)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, _ := svc.ResolveForUser(ctx, 1)
	if err := svc.AddItem(ctx, cart, 1, 2); err != nil {
		t.Fatal(err)
	}
	itemID := cart.Items[0].ID

	item, err := svc.MarkOrdered(ctx, cart, itemID)
	if err != nil || !item.Ordered {
		t.Fatalf("first mark: %+v %v", item, err)
	}
	saves := repo.saveCalls

	item, err = svc.MarkOrdered(ctx, cart, itemID)
	if err != nil {
		t.Fatalf("second mark must not fail: %v", err)
	}
	if !item.Ordered || item.Quantity != 2 {
		t.Fatalf("state changed: %+v", item)
	}
	if repo.saveCalls != saves {
		t.Fatal("second mark should not write")
	}
}

func TestMarkOrderedUnknownItem(t *testing.T) {
	repo := newMemRepo(1)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, _ := svc.ResolveForUser(ctx, 1)
	other, _ := svc.ResolveForUser(ctx, 2)
	if err := svc.AddItem(ctx, other, 1, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.MarkOrdered(ctx, cart, other.Items[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another cart's item, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	repo := newMemRepo(1)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, _ := svc.ResolveAnonymous(ctx, "")
	err := svc.AddItem(ctx, cart, 99, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.itemRows() != 0 || len(cart.Items) != 0 {
		t.Fatal("no cart item may be created for an unknown product")
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(newMemRepo(1))
	ctx := context.Background()

	cart, _ := svc.ResolveAnonymous(ctx, "")
	for _, q := range []int{0, -3} {
		if err := svc.AddItem(ctx, cart, 1, q); !errors.Is(err, ErrValidation) {
			t.Fatalf("quantity %d: expected ErrValidation, got %v", q, err)
		}
	}
}

func TestAddItemSaveFailureLeavesCartUnchanged(t *testing.T) {
	repo := newMemRepo(1)
	svc := newTestService(repo)
	ctx := context.Background()

	cart, _ := svc.ResolveAnonymous(ctx, "")
	repo.saveErr = ErrConcurrencyConflict
	if err := svc.AddItem(ctx, cart, 1, 1); !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatal("failed add must not leave an item behind")
	}
}

func TestParseToken(t *testing.T) {
	id := uuid.New()
	if got, ok := ParseToken(id.String()); !ok || got != id {
		t.Fatalf("valid token rejected")
	}
	for _, raw := range []string{"", "abc", uuid.Nil.String()} {
		if _, ok := ParseToken(raw); ok {
			t.Fatalf("%q should not parse", raw)
		}
	}
}
