package adminController

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/storage"
)

type UserView struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`
}

type RolesInput struct {
	Roles []string `json:"roles"`
}

type ResetPasswordInput struct {
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return uint(id), true
}

func respondUserError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, auth.ErrUnknownRole), errors.Is(err, auth.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("admin: failed to "+action, map[string]any{"path": c.Request.URL.Path, "error": err})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

// GET /admin/users
func ListUsers(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.ListUsers(c.Request.Context())
		if err != nil {
			respondUserError(c, "fetch users", err)
			return
		}
		views := make([]UserView, 0, len(list))
		for _, u := range list {
			views = append(views, UserView{
				ID:       u.ID,
				Email:    u.Email,
				FullName: u.FullName,
				Provider: u.Provider,
				Roles:    u.RoleNames(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"users": views, "roles": auth.KnownRoles})
	}
}

// PUT /admin/users/:id/roles
func SetUserRoles(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userIDParam(c)
		if !ok {
			return
		}
		var input RolesInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		user, err := users.SetRoles(c.Request.Context(), id, input.Roles)
		if err != nil {
			respondUserError(c, "update roles", err)
			return
		}
		logger.Info("user roles updated", map[string]any{"user_id": id, "roles": user.RoleNames()})
		c.JSON(http.StatusOK, gin.H{"message": "Roles updated", "roles": user.RoleNames()})
	}
}

// POST /admin/users/:id/reset-password
func ResetPassword(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userIDParam(c)
		if !ok {
			return
		}
		var input ResetPasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.NewPassword != input.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
			return
		}

		if err := users.ResetPassword(c.Request.Context(), id, input.NewPassword); err != nil {
			respondUserError(c, "reset password", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
	}
}

// DELETE /admin/users/:id
func DeleteUser(users *auth.Service, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userIDParam(c)
		if !ok {
			return
		}
		if self, _ := middleware.UserID(c); self == id {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
			return
		}

		deleted, err := users.DeleteUser(c.Request.Context(), id)
		if err != nil {
			respondUserError(c, "delete user", err)
			return
		}
		if deleted.Avatar != nil {
			if err := uploader.Delete(c.Request.Context(), deleted.Avatar.FileName); err != nil {
				logger.Error("failed to delete avatar file", map[string]any{"file": deleted.Avatar.FileName, "error": err})
			}
		}
		logger.Info("user deleted", map[string]any{"user_id": id, "email": deleted.Email})
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
