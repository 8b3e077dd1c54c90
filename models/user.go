package models

import "time"

const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"

	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"` // stored lowercased
	FullName     string    `gorm:"not null" json:"full_name"`
	PasswordHash string    `json:"-"`
	Provider     string    `gorm:"not null;default:'password'" json:"provider"`
	AvatarID     *uint     `json:"-"`
	Avatar       *Image    `gorm:"constraint:OnDelete:SET NULL" json:"avatar,omitempty"`
	Roles        []Role    `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE" json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
