package routes

import (
	"github.com/gin-gonic/gin"
	accountControllers "github.com/junaidrashid-git/storefront/controllers/account"
)

// SetupAuthRoutes registers all "/account/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d Dependencies) {
	deps := accountControllers.Deps{
		Users:        d.Users,
		Sessions:     d.Sessions,
		Carts:        d.Carts,
		Google:       d.Google,
		CookieSecure: d.CookieSecure,
	}

	account := r.Group("/account")
	{
		account.POST("/register", accountControllers.Register(deps))
		if d.Limiter != nil {
			account.POST("/login", d.Limiter.Limit(), accountControllers.Login(deps))
			account.POST("/google", d.Limiter.Limit(), accountControllers.GoogleLogin(deps))
		} else {
			account.POST("/login", accountControllers.Login(deps))
			account.POST("/google", accountControllers.GoogleLogin(deps))
		}
		account.POST("/logout", accountControllers.Logout(deps))
	}
}
