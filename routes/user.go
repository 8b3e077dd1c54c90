package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	checkoutControllers "github.com/junaidrashid-git/storefront/controllers/checkout"
	imageControllers "github.com/junaidrashid-git/storefront/controllers/image"
	productControllers "github.com/junaidrashid-git/storefront/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront/controllers/user"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/storage"
)

// SetupStoreRoutes registers the public storefront: catalog, cart, images.
func SetupStoreRoutes(r *gin.Engine, d Dependencies) {
	// ──────────────── Browse ────────────────
	r.GET("/", productControllers.Home(d.DB))
	r.GET("/products", productControllers.GetProducts(d.DB))
	r.GET("/products/:id", productControllers.GetProductByID(d.DB))
	r.GET("/categories", productControllers.GetAllCategories(d.DB))

	// ──────────────── Shopping Cart (guest or user) ────────────────
	opts := d.cartCookie()
	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", cartControllers.GetCart(d.Carts, opts))
		cartGroup.GET("/count", cartControllers.GetCount(d.Carts, opts))
		cartGroup.POST("/add", cartControllers.AddItem(d.Carts, opts))
		cartGroup.POST("/items/:id/place-order", cartControllers.PlaceItemOrder(d.Carts, opts, d.Orders))
	}

	// ──────────────── Uploaded images ────────────────
	r.GET(storage.PublicPrefix+"/:a/:b/:name", imageControllers.ServeImage(d.Store))
}

// SetupUserRoutes registers endpoints that need a signed-in user.
func SetupUserRoutes(r *gin.Engine, d Dependencies) {
	profile := r.Group("/profile", middleware.RequireAuth())
	{
		profile.GET("", userControllers.GetProfile(d.Users))
		profile.PUT("", userControllers.UpdateProfile(d.Users, d.Uploader))
		profile.POST("/password", userControllers.ChangePassword(d.Users))
	}

	checkout := r.Group("/checkout", middleware.RequireAuth())
	{
		checkout.GET("", checkoutControllers.GetCheckout(d.Users))
		checkout.POST("", checkoutControllers.SubmitCheckout())
		checkout.GET("/thank-you", checkoutControllers.ThankYou())
	}
}
