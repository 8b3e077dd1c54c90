package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/shopspring/decimal"
)

// OrderNotifier is told about every item that gets placed.
type OrderNotifier interface {
	ItemOrdered(cart *models.Cart, item *models.CartItem)
}

type AddItemInput struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// resolveCart returns the cart of the signed-in user, or the guest cart
// named by the cart cookie. Guests always get the cookie re-issued.
func resolveCart(c *gin.Context, carts *cart.Service, opts cart.CookieOptions) (*models.Cart, error) {
	ctx := c.Request.Context()
	if userID, ok := middleware.UserID(c); ok {
		return carts.ResolveForUser(ctx, userID)
	}
	resolved, err := carts.ResolveAnonymous(ctx, cart.TokenFromRequest(c.Request))
	if err != nil {
		return nil, err
	}
	cart.SetCookie(c.Writer, resolved, time.Now(), opts)
	return resolved, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Cart was changed by another request, please retry"})
	default:
		logger.Error("cart request failed", map[string]any{"path": c.FullPath(), "error": err})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process cart"})
	}
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// GET /cart
func GetCart(carts *cart.Service, opts cart.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := resolveCart(c, carts, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart":  resolved,
			"count": carts.ItemCount(resolved),
			"total": cartTotal(resolved.Items),
		})
	}
}

// POST /cart/add
func AddItem(carts *cart.Service, opts cart.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		resolved, err := resolveCart(c, carts, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := carts.AddItem(c.Request.Context(), resolved, input.ProductID, input.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Added to cart",
			"count":   carts.ItemCount(resolved),
		})
	}
}

// GET /cart/count
func GetCount(carts *cart.Service, opts cart.CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := resolveCart(c, carts, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": carts.ItemCount(resolved)})
	}
}

// POST /cart/items/:id/place-order
func PlaceItemOrder(carts *cart.Service, opts cart.CookieOptions, notifier OrderNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}

		resolved, err := resolveCart(c, carts, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		alreadyOrdered := false
		for _, it := range resolved.Items {
			if it.ID == uint(itemID) {
				alreadyOrdered = it.Ordered
			}
		}
		item, err := carts.MarkOrdered(c.Request.Context(), resolved, uint(itemID))
		if err != nil {
			respondError(c, err)
			return
		}
		if notifier != nil && !alreadyOrdered {
			notifier.ItemOrdered(resolved, item)
		}
		c.Redirect(http.StatusSeeOther, "/cart")
	}
}

// GET /admin/users/:id/cart
func GetAdminUserCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}

		owned, err := carts.CartForOwner(c.Request.Context(), uint(userID))
		if errors.Is(err, cart.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User has no cart"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cart":  owned,
			"count": carts.ItemCount(owned),
			"total": cartTotal(owned.Items),
		})
	}
}
