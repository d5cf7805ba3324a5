package model

import "time"

// Category groups tasks (work, health, study, etc.). Predefined ones are seeded on registration.
type Category struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user"`
	Name         string    `gorm:"not null" json:"name"`
	IsPredefined bool      `gorm:"default:false" json:"isPredefined"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Tasks        []Task    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
}
