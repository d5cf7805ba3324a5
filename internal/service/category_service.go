package service

import (
	"context"
	"fmt"
	"strings"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
	"todo-planner/internal/repository"
)

const maxNameLen = 100

// CategoryInput is the payload of a category create.
type CategoryInput struct {
	Name         string
	IsPredefined bool
	Owner        *uint
}

// CategoryPatch holds the fields of a category update; nil means unchanged.
type CategoryPatch struct {
	Name         *string
	IsPredefined *bool
}

// CategoryService applies the access pipeline to category operations.
type CategoryService struct {
	repo  *repository.CategoryRepository
	users *repository.UserRepository
}

func NewCategoryService(repo *repository.CategoryRepository, users *repository.UserRepository) *CategoryService {
	return &CategoryService{repo: repo, users: users}
}

// List returns the page of categories visible to actor that match f.
func (s *CategoryService) List(ctx context.Context, actor access.Actor, f query.Filter, p query.Page) (query.Result[model.Category], error) {
	scoped, err := access.Scope(actor, access.KindCategory, f)
	if err != nil {
		return query.Result[model.Category]{}, err
	}
	docs, err := s.repo.Find(ctx, scoped, p)
	if err != nil {
		return query.Result[model.Category]{}, err
	}
	total, err := s.repo.Count(ctx, scoped)
	if err != nil {
		return query.Result[model.Category]{}, err
	}
	return query.NewResult(docs, total, p), nil
}

// Get returns one category visible to actor.
func (s *CategoryService) Get(ctx context.Context, actor access.Actor, id uint) (*model.Category, error) {
	scoped, err := access.ScopeRecord(actor, access.KindCategory, access.OpRead, id)
	if err != nil {
		return nil, err
	}
	return s.repo.First(ctx, scoped)
}

func (s *CategoryService) Create(ctx context.Context, actor access.Actor, in CategoryInput) (*model.Category, error) {
	owner, err := assignOwner(ctx, s.users, actor, in.Owner)
	if err != nil {
		return nil, err
	}
	if _, err := access.Authorize(actor, access.KindCategory, access.OpWrite); err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}

	category := model.Category{
		UserID:       owner,
		Name:         name,
		IsPredefined: in.IsPredefined && access.IsAdmin(actor),
	}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update renames a category. Predefined categories may only be changed by admins.
func (s *CategoryService) Update(ctx context.Context, actor access.Actor, id uint, patch CategoryPatch) (*model.Category, error) {
	scoped, err := access.ScopeRecord(actor, access.KindCategory, access.OpWrite, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.First(ctx, scoped)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return nil, err
		}
		changes["name"] = name
	}
	if patch.IsPredefined != nil {
		if !access.IsAdmin(actor) {
			return nil, fmt.Errorf("change predefined flag: %w", apperr.ErrForbidden)
		}
		changes["is_predefined"] = *patch.IsPredefined
	}
	if existing.IsPredefined && !access.IsAdmin(actor) {
		return nil, fmt.Errorf("update predefined category: %w", apperr.ErrForbidden)
	}
	return s.repo.Update(ctx, scoped, changes)
}

// Delete removes a category and detaches its tasks. The deleted record is returned.
func (s *CategoryService) Delete(ctx context.Context, actor access.Actor, id uint) (*model.Category, error) {
	scoped, err := access.ScopeRecord(actor, access.KindCategory, access.OpDelete, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.First(ctx, scoped)
	if err != nil {
		return nil, err
	}
	if existing.IsPredefined && !access.IsAdmin(actor) {
		return nil, fmt.Errorf("delete predefined category: %w", apperr.ErrForbidden)
	}
	if err := s.repo.DeleteMatching(ctx, scoped); err != nil {
		return nil, err
	}
	return existing, nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		return "", apperr.Invalid("name", "is required")
	case len([]rune(name)) > maxNameLen:
		return "", apperr.Invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	return name, nil
}
