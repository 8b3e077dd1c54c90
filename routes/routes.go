package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/storage"
	"gorm.io/gorm"
)

// Dependencies is everything the handlers need, built once in main.
type Dependencies struct {
	DB       *gorm.DB
	Users    *auth.Service
	Sessions *auth.SessionManager
	Carts    *cart.Service
	Store    storage.Store
	Uploader *storage.ImageUploader
	Google   auth.IdentityVerifier // nil when Google sign-in is off
	Orders   *orderControllers.Hub
	Limiter  *middleware.RateLimiter

	CookieSecure bool
}

func (d Dependencies) cartCookie() cart.CookieOptions {
	return cart.CookieOptions{Secure: d.CookieSecure, Path: "/"}
}

// SetupRoutes is the single entry-point that wires every route group.
func SetupRoutes(r *gin.Engine, d Dependencies) {
	// Every request may carry a session; groups below decide if it must.
	r.Use(middleware.LoadSession(d.Sessions))

	// 1️⃣ Storefront, cart and uploaded images (public)
	SetupStoreRoutes(r, d)

	// 2️⃣ Account: register / login / logout
	SetupAuthRoutes(r, d)

	// 3️⃣ Signed-in users: profile and checkout
	SetupUserRoutes(r, d)

	// 4️⃣ Managers: catalog and live order feed
	SetupManageRoutes(r, d)
	SetupOrderRoutes(r, d)

	// 5️⃣ Admins: user management
	SetupAdminRoutes(r, d)
}
