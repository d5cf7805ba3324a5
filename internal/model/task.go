package model

import (
	"time"

	"gorm.io/datatypes"
)

// Step is one checklist item of a task.
type Step struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

// Note is a free-text entry attached to a task.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task represents a single item in the planner.
type Task struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	UserID           uint                        `gorm:"index;not null" json:"user"`
	CategoryID       *uint                       `gorm:"index" json:"category"`
	Title            string                      `gorm:"not null" json:"title"`
	Description      string                      `json:"description,omitempty"`
	IsCompleted      bool                        `gorm:"default:false" json:"completed"`
	DueDate          *time.Time                  `json:"dueDate,omitempty"`
	Reminder         *time.Time                  `gorm:"index" json:"reminder,omitempty"`
	RemindedAt       *time.Time                  `json:"-"`
	ReminderAttempts int                         `gorm:"not null;default:0" json:"-"`
	Hashtags         datatypes.JSONSlice[string] `json:"hashtags"`
	Steps            datatypes.JSONSlice[Step]   `json:"steps"`
	Notes            datatypes.JSONSlice[Note]   `json:"notes"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}
