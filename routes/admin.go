package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront/controllers/admin"
	cartControllers "github.com/junaidrashid-git/storefront/controllers/cart"
	productcontroller "github.com/junaidrashid-git/storefront/controllers/product"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
)

// SetupManageRoutes registers all "/manage/*" catalog endpoints.
func SetupManageRoutes(r *gin.Engine, d Dependencies) {
	manage := r.Group("/manage", middleware.RequireRole(models.RoleManager))

	// ─────────── Product Management ───────────
	products := manage.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB))
		products.POST("", productcontroller.CreateProduct(d.DB, d.Uploader))
		products.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Uploader))
		products.DELETE("/:id", productcontroller.DeleteProduct(d.DB, d.Uploader))
		products.DELETE("/:id/images/:imageId", productcontroller.DeleteProductImage(d.DB, d.Uploader))
		products.POST("/import-excel", productcontroller.ImportProductsFromExcel(d.DB))
		products.GET("/export-excel", productcontroller.ExportProductsToExcel(d.DB))
	}

	// ─────────── Category Management ───────────
	categories := manage.Group("/categories")
	{
		categories.GET("", productcontroller.GetAllCategories(d.DB))
		categories.POST("", productcontroller.CreateCategory(d.DB, d.Uploader))
		categories.PUT("/:id", productcontroller.UpdateCategory(d.DB, d.Uploader))
		categories.DELETE("/:id", productcontroller.DeleteCategory(d.DB, d.Uploader))
	}

	// ─────────── Tag Management ───────────
	tags := manage.Group("/tags")
	{
		tags.GET("", productcontroller.GetTags(d.DB))
		tags.POST("", productcontroller.CreateTag(d.DB))
		tags.PUT("/:id", productcontroller.UpdateTag(d.DB))
		tags.DELETE("/:id", productcontroller.DeleteTag(d.DB))
	}
}

// SetupAdminRoutes registers all "/admin/*" endpoints.
func SetupAdminRoutes(r *gin.Engine, d Dependencies) {
	users := r.Group("/admin/users", middleware.RequireRole(models.RoleAdmin))
	{
		users.GET("", adminController.ListUsers(d.Users))
		users.PUT("/:id/roles", adminController.SetUserRoles(d.Users))
		users.POST("/:id/reset-password", adminController.ResetPassword(d.Users))
		users.DELETE("/:id", adminController.DeleteUser(d.Users, d.Uploader))
		users.GET("/:id/cart", cartControllers.GetAdminUserCart(d.Carts))
	}
}
