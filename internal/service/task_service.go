package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
	"todo-planner/internal/repository"
)

const (
	maxTitleLen = 200
	maxHashtags = 50
)

// OptionalID distinguishes "absent" from "set to null" in a patch.
type OptionalID struct {
	Set   bool
	Value *uint
}

// OptionalTime distinguishes "absent" from "set to null" in a patch.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// StepInput is a checklist item as submitted; an empty ID gets a fresh one.
type StepInput struct {
	ID        string
	Content   string
	Completed bool
}

// NoteInput is a note as submitted; zero CreatedAt defaults to now.
type NoteInput struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Completed   bool
	Category    *uint
	DueDate     *time.Time
	Reminder    *time.Time
	Hashtags    []string
	Steps       []StepInput
	Notes       []NoteInput
	Owner       *uint
}

// TaskPatch is a partial update. Slices replace the stored sequence when non-nil.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Category    OptionalID
	DueDate     OptionalTime
	Reminder    OptionalTime
	Hashtags    []string
	Steps       []StepInput
	Notes       []NoteInput
}

// CategoryCount is one row of the sidebar aggregation.
type CategoryCount struct {
	Category uint  `json:"category"`
	Count    int64 `json:"count"`
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	userRepo     *repository.UserRepository
	now          func() time.Time
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, userRepo: userRepo, now: time.Now}
}

// List returns the page of tasks visible to actor that match f. The ownership predicate is part of
// the executed query, so totals never count other users' tasks.
func (s *TaskService) List(ctx context.Context, actor access.Actor, f query.Filter, p query.Page) (query.Result[model.Task], error) {
	scoped, err := access.Scope(actor, access.KindTask, f)
	if err != nil {
		return query.Result[model.Task]{}, err
	}
	docs, err := s.taskRepo.Find(ctx, scoped, p)
	if err != nil {
		return query.Result[model.Task]{}, err
	}
	total, err := s.taskRepo.Count(ctx, scoped)
	if err != nil {
		return query.Result[model.Task]{}, err
	}
	return query.NewResult(docs, total, p), nil
}

func (s *TaskService) GetTask(ctx context.Context, actor access.Actor, taskID uint) (*model.Task, error) {
	scoped, err := access.ScopeRecord(actor, access.KindTask, access.OpRead, taskID)
	if err != nil {
		return nil, err
	}
	return s.taskRepo.First(ctx, scoped)
}

func (s *TaskService) CreateTask(ctx context.Context, actor access.Actor, input TaskInput) (*model.Task, error) {
	owner, err := assignOwner(ctx, s.userRepo, actor, input.Owner)
	if err != nil {
		return nil, err
	}
	if _, err := access.Authorize(actor, access.KindTask, access.OpWrite); err != nil {
		return nil, err
	}

	v := &apperr.ValidationError{}
	title := checkTitle(v, input.Title)
	hashtags := normalizeHashtags(v, input.Hashtags)
	steps := s.buildSteps(v, input.Steps)
	notes := s.buildNotes(v, input.Notes)
	if err := v.Err(); err != nil {
		return nil, err
	}
	if input.Category != nil {
		if err := s.checkCategory(ctx, owner, *input.Category); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		UserID:      owner,
		CategoryID:  input.Category,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		IsCompleted: input.Completed,
		DueDate:     utc(input.DueDate),
		Reminder:    utc(input.Reminder),
		Hashtags:    datatypes.JSONSlice[string](hashtags),
		Steps:       datatypes.JSONSlice[model.Step](steps),
		Notes:       datatypes.JSONSlice[model.Note](notes),
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies patch to a task visible to actor. A different category must belong to the
// task's owner; a new reminder time re-arms the reminder.
func (s *TaskService) UpdateTask(ctx context.Context, actor access.Actor, taskID uint, patch TaskPatch) (*model.Task, error) {
	scoped, err := access.ScopeRecord(actor, access.KindTask, access.OpWrite, taskID)
	if err != nil {
		return nil, err
	}
	existing, err := s.taskRepo.First(ctx, scoped)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	v := &apperr.ValidationError{}
	if patch.Title != nil {
		changes["title"] = checkTitle(v, *patch.Title)
	}
	if patch.Description != nil {
		changes["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Completed != nil {
		changes["is_completed"] = *patch.Completed
	}
	if patch.DueDate.Set {
		changes["due_date"] = utc(patch.DueDate.Value)
	}
	if patch.Reminder.Set {
		changes["reminder"] = utc(patch.Reminder.Value)
		changes["reminded_at"] = nil
		changes["reminder_attempts"] = 0
	}
	if patch.Hashtags != nil {
		changes["hashtags"] = datatypes.JSONSlice[string](normalizeHashtags(v, patch.Hashtags))
	}
	if patch.Steps != nil {
		changes["steps"] = datatypes.JSONSlice[model.Step](s.buildSteps(v, patch.Steps))
	}
	if patch.Notes != nil {
		changes["notes"] = datatypes.JSONSlice[model.Note](s.buildNotes(v, patch.Notes))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.Category.Set {
		if patch.Category.Value != nil {
			if err := s.checkCategory(ctx, existing.UserID, *patch.Category.Value); err != nil {
				return nil, err
			}
			changes["category_id"] = *patch.Category.Value
		} else {
			changes["category_id"] = nil
		}
	}
	return s.taskRepo.Update(ctx, scoped, changes)
}

// DeleteTask removes a task completely. The deleted record is returned.
func (s *TaskService) DeleteTask(ctx context.Context, actor access.Actor, taskID uint) (*model.Task, error) {
	scoped, err := access.ScopeRecord(actor, access.KindTask, access.OpDelete, taskID)
	if err != nil {
		return nil, err
	}
	existing, err := s.taskRepo.First(ctx, scoped)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Delete(ctx, scoped); err != nil {
		return nil, err
	}
	return existing, nil
}

// CategoryCounts returns, for every category holding at least one of actor's own tasks, how many
// of them it holds. Admins get their own counts too; the aggregation is per requesting account.
func (s *TaskService) CategoryCounts(ctx context.Context, actor access.Actor) (map[uint]int64, error) {
	if _, err := access.Authorize(actor, access.KindTask, access.OpList); err != nil {
		return nil, err
	}
	id, ok := access.ActorID(actor)
	if !ok {
		return nil, apperr.Unauthorized("must be logged in")
	}
	f := access.OwnedBy(id).And(query.Condition{Field: "category", Op: query.Exists, Value: true})
	return s.taskRepo.CountByCategory(ctx, f)
}

// assignOwner picks the owner of a new record. An owner named by an admin must be an existing account.
func assignOwner(ctx context.Context, users *repository.UserRepository, actor access.Actor, requested *uint) (uint, error) {
	owner, err := access.AssignOwner(actor, requested)
	if err != nil {
		return 0, err
	}
	if self, _ := access.ActorID(actor); owner == self {
		return owner, nil
	}
	if _, err := users.FindByID(ctx, owner); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 0, apperr.Invalid("user", "user not found")
		}
		return 0, err
	}
	return owner, nil
}

// checkCategory rejects a category that is missing or owned by someone other than owner.
// Both cases read the same so category ids of other users cannot be probed.
func (s *TaskService) checkCategory(ctx context.Context, owner, categoryID uint) error {
	f := query.Where("id", query.Equals, categoryID).Merge(access.OwnedBy(owner))
	_, err := s.categoryRepo.First(ctx, f)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid("category", "category not found")
	}
	return err
}

func (s *TaskService) buildSteps(v *apperr.ValidationError, in []StepInput) []model.Step {
	steps := make([]model.Step, 0, len(in))
	for i, step := range in {
		content := strings.TrimSpace(step.Content)
		if content == "" {
			v.Add(fmt.Sprintf("steps[%d].content", i), "is required")
			continue
		}
		id := strings.TrimSpace(step.ID)
		if id == "" {
			id = uuid.NewString()
		}
		steps = append(steps, model.Step{ID: id, Content: content, Completed: step.Completed})
	}
	return steps
}

func (s *TaskService) buildNotes(v *apperr.ValidationError, in []NoteInput) []model.Note {
	notes := make([]model.Note, 0, len(in))
	for i, note := range in {
		content := strings.TrimSpace(note.Content)
		if content == "" {
			v.Add(fmt.Sprintf("notes[%d].content", i), "is required")
			continue
		}
		id := strings.TrimSpace(note.ID)
		if id == "" {
			id = uuid.NewString()
		}
		createdAt := note.CreatedAt
		if createdAt.IsZero() {
			createdAt = s.now()
		}
		notes = append(notes, model.Note{ID: id, Content: content, CreatedAt: createdAt.UTC()})
	}
	return notes
}

func checkTitle(v *apperr.ValidationError, raw string) string {
	title := strings.TrimSpace(raw)
	switch {
	case title == "":
		v.Add("title", "is required")
	case len([]rune(title)) > maxTitleLen:
		v.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}
	return title
}

// normalizeHashtags trims, strips '#', lowercases and de-duplicates, keeping first occurrences.
func normalizeHashtags(v *apperr.ValidationError, in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		tag := query.NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > maxHashtags {
		v.Add("hashtags", fmt.Sprintf("at most %d hashtags", maxHashtags))
	}
	return out
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
