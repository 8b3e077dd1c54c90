package checkoutControllers

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/junaidrashid-git/storefront/auth"
	"github.com/junaidrashid-git/storefront/logger"
	"github.com/junaidrashid-git/storefront/middleware"
)

// CheckoutInput is the shipping address form. Nothing is persisted yet.
// The validate tags run after trimming, so a blank field counts as missing.
type CheckoutInput struct {
	FullName     string `form:"full_name" json:"full_name" validate:"required,max=100"`
	AddressLine1 string `form:"address_line1" json:"address_line1" validate:"required,max=200"`
	AddressLine2 string `form:"address_line2" json:"address_line2" validate:"max=200"`
	City         string `form:"city" json:"city" validate:"required,max=100"`
	State        string `form:"state" json:"state" validate:"required,max=100"`
	PostalCode   string `form:"postal_code" json:"postal_code" validate:"required,max=20"`
}

var checkoutValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	return v
}()

func (in *CheckoutInput) trim() {
	for _, f := range []*string{&in.FullName, &in.AddressLine1, &in.AddressLine2, &in.City, &in.State, &in.PostalCode} {
		*f = strings.TrimSpace(*f)
	}
}

// fieldErrors maps form field name -> message for each failed rule.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields[fe.Field()] = fe.Field() + " is required"
		} else {
			fields[fe.Field()] = fe.Field() + " is too long"
		}
	}
	return fields
}

// GET /checkout
func GetCheckout(users *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.UserID(c)
		form := CheckoutInput{}
		if user, err := users.FindByID(c.Request.Context(), userID); err == nil {
			form.FullName = user.FullName
		}
		c.JSON(http.StatusOK, gin.H{"form": form})
	}
}

// POST /checkout
func SubmitCheckout() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CheckoutInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		input.trim()
		if err := checkoutValidator.Struct(input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in the required fields", "fields": fieldErrors(err)})
			return
		}

		userID, _ := middleware.UserID(c)
		logger.Info("🧾 checkout submitted", map[string]any{"user_id": userID, "city": input.City})
		c.Redirect(http.StatusSeeOther, "/checkout/thank-you")
	}
}

// GET /checkout/thank-you
func ThankYou() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Thank you for your order"})
	}
}
