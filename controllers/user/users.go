package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
)

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// GET /profile
func GetProfile(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// ProfileInput is checked before the avatar is stored.
type ProfileInput struct {
	FullName string `form:"full_name" binding:"required,min=2,max=100"`
}

// PUT /profile (multipart: full_name, optional avatar)
func UpdateProfile(users *auth.Service, uploader *storage.ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		ctx := c.Request.Context()

		var input ProfileInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "full_name must be 2 to 100 characters"})
			return
		}

		var avatar *models.Image
		if file, err := c.FormFile("avatar"); err == nil {
			name, err := uploader.SaveUpload(ctx, file)
			if errors.Is(err, storage.ErrInvalidImage) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar must be an image"})
				return
			}
			if err != nil {
				logger.Error("avatar upload failed", map[string]any{"user_id": userID, "error": err})
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
				return
			}
			avatar = &models.Image{FileName: name}
		}

		user, previous, err := users.UpdateProfile(ctx, userID, input.FullName, avatar)
		if err != nil {
			// the uploaded file is left orphaned, same as any failed write after upload
			switch {
			case errors.Is(err, auth.ErrInvalidInput):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, auth.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			default:
				logger.Error("profile update failed", map[string]any{"user_id": userID, "error": err})
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			}
			return
		}

		if previous != nil {
			if err := uploader.Delete(ctx, previous.FileName); err != nil {
				logger.Error("failed to delete old avatar", map[string]any{"file": previous.FileName, "error": err})
			}
		}
		c.JSON(http.StatusOK, user)
	}
}

// POST /profile/password
func ChangePassword(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)

		var input ChangePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.NewPassword != input.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
			return
		}

		err := users.ChangePassword(c.Request.Context(), userID, input.CurrentPassword, input.NewPassword)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		case errors.Is(err, auth.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			logger.Error("password change failed", map[string]any{"user_id": userID, "error": err})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		}
	}
}
