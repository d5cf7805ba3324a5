package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"todo-planner/internal/query"
	"todo-planner/internal/service"
)

var jsonNull = []byte("null")

// nullableID is a relation id that may be absent, null, a number or a numeric string.
type nullableID struct {
	Set   bool
	Value *uint
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Value = nil
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = strings.TrimSpace(v)
		if s == "" {
			return nil
		}
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("expected an id, got %s", b)
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("expected a positive id, got %s", b)
	}
	value := uint(id)
	n.Value = &value
	return nil
}

// optionalTime is a timestamp that may be absent, null, RFC 3339 or a YYYY-MM-DD date.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(b, jsonNull) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected a date string, got %s", b)
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	t, err := query.ParseTime(s)
	if err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type stepRequest struct {
	ID        string `json:"id"`
	Content   string `json:"content" binding:"required"`
	Completed bool   `json:"completed"`
}

type noteRequest struct {
	ID        string    `json:"id"`
	Content   string    `json:"content" binding:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

type createTaskRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Completed   bool          `json:"completed"`
	Category    nullableID    `json:"category"`
	DueDate     optionalTime  `json:"dueDate"`
	Reminder    optionalTime  `json:"reminder"`
	Hashtags    []string      `json:"hashtags"`
	Steps       []stepRequest `json:"steps" binding:"dive"`
	Notes       []noteRequest `json:"notes" binding:"dive"`
	User        nullableID    `json:"user"`
}

func (r createTaskRequest) input() service.TaskInput {
	return service.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Category:    r.Category.Value,
		DueDate:     r.DueDate.Value,
		Reminder:    r.Reminder.Value,
		Hashtags:    r.Hashtags,
		Steps:       steps(r.Steps),
		Notes:       notes(r.Notes),
		Owner:       r.User.Value,
	}
}

type updateTaskRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Completed   *bool         `json:"completed"`
	Category    nullableID    `json:"category"`
	DueDate     optionalTime  `json:"dueDate"`
	Reminder    optionalTime  `json:"reminder"`
	Hashtags    []string      `json:"hashtags"`
	Steps       []stepRequest `json:"steps" binding:"dive"`
	Notes       []noteRequest `json:"notes" binding:"dive"`
}

func (r updateTaskRequest) patch() service.TaskPatch {
	return service.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Category:    service.OptionalID{Set: r.Category.Set, Value: r.Category.Value},
		DueDate:     service.OptionalTime{Set: r.DueDate.Set, Value: r.DueDate.Value},
		Reminder:    service.OptionalTime{Set: r.Reminder.Set, Value: r.Reminder.Value},
		Hashtags:    r.Hashtags,
		Steps:       steps(r.Steps),
		Notes:       notes(r.Notes),
	}
}

func steps(in []stepRequest) []service.StepInput {
	if in == nil {
		return nil
	}
	out := make([]service.StepInput, len(in))
	for i, s := range in {
		out[i] = service.StepInput{ID: s.ID, Content: s.Content, Completed: s.Completed}
	}
	return out
}

func notes(in []noteRequest) []service.NoteInput {
	if in == nil {
		return nil
	}
	out := make([]service.NoteInput, len(in))
	for i, n := range in {
		out[i] = service.NoteInput{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt}
	}
	return out
}

type createCategoryRequest struct {
	Name         string     `json:"name" binding:"required"`
	IsPredefined bool       `json:"isPredefined"`
	User         nullableID `json:"user"`
}

type updateCategoryRequest struct {
	Name         *string `json:"name"`
	IsPredefined *bool   `json:"isPredefined"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateMeRequest struct {
	Name string `json:"name" binding:"required"`
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}
