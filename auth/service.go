// Package auth holds user accounts, roles, password hashing and the
// signed session cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/junaidrashid-git/storefront/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidInput       = errors.New("invalid input")
)

// KnownRoles are created at startup.
var KnownRoles = []string{models.RoleAdmin, models.RoleManager}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Same rules as the request binding tags, for callers that don't go
// through a handler (seeding, external sign-in).
var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	return nil
}

func ValidateFullName(name string) error {
	if err := validate.Var(strings.TrimSpace(name), "min=2,max=100"); err != nil {
		return fmt.Errorf("%w: full name must be 2 to 100 characters", ErrInvalidInput)
	}
	return nil
}

func (s *Service) withProfile(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Roles").Preload("Avatar")
}

// Register creates a password account.
func (s *Service) Register(ctx context.Context, email, fullName, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateFullName(fullName); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	user := models.User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		Provider:     models.ProviderPassword,
		Roles:        []models.Role{},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate never tells apart an unknown email from a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.withProfile(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.withProfile(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindOrCreateExternal returns the account for an email verified by an
// external provider, creating a password-less one on first sign-in.
func (s *Service) FindOrCreateExternal(ctx context.Context, email, fullName string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	var user models.User
	err := s.withProfile(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if ValidateFullName(fullName) != nil {
		fullName = strings.SplitN(email, "@", 2)[0]
	}
	user = models.User{
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		Provider: models.ProviderGoogle,
		Roles:    []models.Role{},
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// signed in twice at once, take the winner
			return s.FindOrCreateExternal(ctx, email, fullName)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sets the full name and, when avatar is non-nil, replaces
// the avatar. It returns the previous avatar so the caller can drop its file.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, fullName string, avatar *models.Image) (*models.User, *models.Image, error) {
	if err := ValidateFullName(fullName); err != nil {
		return nil, nil, err
	}
	var previous *models.Image
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Preload("Avatar").First(&user, userID).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{"full_name": strings.TrimSpace(fullName)}
		if avatar != nil {
			if err := tx.Create(avatar).Error; err != nil {
				return err
			}
			updates["avatar_id"] = avatar.ID
			previous = user.Avatar
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		if previous != nil {
			return tx.Delete(&models.Image{}, previous.ID).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	user, err := s.FindByID(ctx, userID)
	return user, previous, err
}

func (s *Service) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := VerifyPassword(user.PasswordHash, current); err != nil {
		return err
	}
	return s.setPassword(ctx, userID, next)
}

// ResetPassword is the admin path: no current password needed.
func (s *Service) ResetPassword(ctx context.Context, userID uint, next string) error {
	if _, err := s.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.setPassword(ctx, userID, next)
}

func (s *Service) setPassword(ctx context.Context, userID uint, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error
}

// EnsureRoles creates the known roles if missing.
func (s *Service) EnsureRoles(ctx context.Context) error {
	for _, name := range KnownRoles {
		role := models.Role{Name: name}
		if err := s.db.WithContext(ctx).Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
	}
	return nil
}

// SetRoles replaces the user's roles.
func (s *Service) SetRoles(ctx context.Context, userID uint, names []string) (*models.User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles := []models.Role{}
	if len(names) > 0 {
		if err := s.db.WithContext(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
			return nil, err
		}
		for _, name := range names {
			found := false
			for _, r := range roles {
				if r.Name == name {
					found = true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
			}
		}
	}

	if err := s.db.WithContext(ctx).Model(user).Association("Roles").Replace(roles); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, userID)
}

// SeedAdmin creates an Admin account when no user exists yet.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	user, err := s.Register(ctx, email, "Administrator", password)
	if err != nil {
		return false, err
	}
	if _, err := s.SetRoles(ctx, user.ID, []string{models.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteUser removes the account, its role links and its cart. The
// deleted user is returned so the caller can remove the avatar file.
func (s *Service) DeleteUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Association("Roles").Clear(); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, userID).Error; err != nil {
			return err
		}
		if user.AvatarID != nil {
			return tx.Delete(&models.Image{}, *user.AvatarID).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Roles").Order("email").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
