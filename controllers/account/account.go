package accountControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
)

const mergeFailed = "merge-failed"

type Deps struct {
	Users        *auth.Service
	Sessions     *auth.SessionManager
	Carts        *cart.Service
	Google       auth.IdentityVerifier // nil when Google sign-in is off
	CookieSecure bool
}

type RegisterInput struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	FullName        string `json:"full_name" binding:"required,min=2,max=100"`
	Password        string `json:"password" binding:"required,min=3,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// signIn promotes the guest cart, issues the session cookie and writes the
// login response. A failed promotion doesn't block the sign-in.
func signIn(c *gin.Context, d Deps, user *models.User, status int) {
	ctx := c.Request.Context()

	mergeStatus := mergeFailed
	outcome, _, err := d.Carts.PromoteGuestCart(ctx, user.ID, cart.TokenFromRequest(c.Request))
	if err != nil {
		logger.Error("guest cart promotion failed", map[string]any{"user_id": user.ID, "error": err})
	} else {
		mergeStatus = string(outcome)
	}

	token, expires, err := d.Sessions.Issue(ctx, user)
	if err != nil {
		logger.Error("failed to issue session", map[string]any{"user_id": user.ID, "error": err})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	auth.SetSessionCookie(c.Writer, token, expires, d.CookieSecure)

	redirect := "/"
	if user.HasRole(models.RoleAdmin) {
		redirect = "/admin/users"
	}
	c.JSON(status, gin.H{
		"message":      "Login successful",
		"merge_status": mergeStatus,
		"redirect":     redirect,
		"user":         user,
		"token":        token,
	})
}

// POST /account/register
func Register(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Password != input.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
			return
		}

		user, err := d.Users.Register(c.Request.Context(), input.Email, input.FullName, input.Password)
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case errors.Is(err, auth.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			logger.Error("registration failed", map[string]any{"error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
			return
		}

		logger.Info("user registered", map[string]any{"user_id": user.ID})
		signIn(c, d, user, http.StatusCreated)
	}
}

// POST /account/login
func Login(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, err := d.Users.Authenticate(c.Request.Context(), input.Email, input.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		if err != nil {
			logger.Error("login failed", map[string]any{"error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
			return
		}
		signIn(c, d, user, http.StatusOK)
	}
}

// POST /account/google
func GoogleLogin(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Google == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
			return
		}
		var req struct {
			IDToken string `json:"idToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		identity, err := d.Google.Verify(c.Request.Context(), req.IDToken)
		if err != nil {
			logger.Info("google token rejected", map[string]any{"error": err})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or revoked ID token"})
			return
		}
		user, err := d.Users.FindOrCreateExternal(c.Request.Context(), identity.Email, identity.FullName)
		if err != nil {
			logger.Error("google account lookup failed", map[string]any{"email": identity.Email, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
			return
		}
		signIn(c, d, user, http.StatusOK)
	}
}

// POST /account/logout
func Logout(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := middleware.CurrentClaims(c); claims != nil {
			if err := d.Sessions.Revoke(c.Request.Context(), claims); err != nil {
				logger.Error("failed to revoke session", map[string]any{"user_id": claims.UserID, "error": err})
			}
		}
		auth.ClearSessionCookie(c.Writer, d.CookieSecure)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/"})
	}
}
