package model

import "time"

// Role is the single discriminator for authorization decisions.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered account. PasswordHash is produced by the auth provider and never serialized.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"not null" json:"name"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	Role             Role       `gorm:"type:varchar(16);not null;default:user" json:"role"`
	TelegramChatID   *int64     `gorm:"index" json:"telegramChatId,omitempty"`
	TelegramLinkCode *string    `gorm:"uniqueIndex" json:"-"`
	LinkCodeExpires  *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Categories       []Category `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tasks            []Task     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
