package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
)

const (
	claimsKey = "auth_claims"
	userIDKey = "user_id"
)

// LoadSession attaches the session claims to the context when the request
// carries a valid token. Anonymous requests pass through untouched.
func LoadSession(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.TokenFromRequest(c.Request)
		if token == "" {
			c.Next()
			return
		}
		claims, err := sessions.Parse(c.Request.Context(), token)
		if err == nil {
			c.Set(claimsKey, claims)
			c.Set(userIDKey, claims.UserID)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a session. LoadSession must run first.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentClaims(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole lets the request through when the session has any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
		c.Abort()
	}
}

func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func UserID(c *gin.Context) (uint, bool) {
	claims := CurrentClaims(c)
	if claims == nil {
		return 0, false
	}
	return claims.UserID, true
}
