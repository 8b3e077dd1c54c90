package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
)

// SetupOrderRoutes registers the live ordered-item feed for managers.
func SetupOrderRoutes(r *gin.Engine, d Dependencies) {
	orders := r.Group("/manage/orders", middleware.RequireRole(models.RoleManager))
	{
		orders.GET("/ws", d.Orders.Handler())
	}
}
