// Package repository implements the storage contract on top of gorm: find, count, insert,
// update and delete by filter, plus grouped counts.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todo-planner/internal/apperr"
	"todo-planner/internal/query"
)

// collection is the filter-driven storage shared by every owned kind.
type collection[T any] struct {
	db     *gorm.DB
	schema query.Schema
	name   string
}

func (c collection[T]) scoped(ctx context.Context, f query.Filter) (*gorm.DB, error) {
	db := c.db.WithContext(ctx).Model(new(T))
	return applyFilter(db, c.schema, f)
}

// Find returns one page of records matching f.
func (c collection[T]) Find(ctx context.Context, f query.Filter, p query.Page) ([]T, error) {
	db, err := c.scoped(ctx, f)
	if err != nil {
		return nil, err
	}
	db, err = applyPage(db, c.schema, p)
	if err != nil {
		return nil, err
	}
	records := []T{}
	if err := db.Find(&records).Error; err != nil {
		return nil, apperr.Storage("find "+c.name, err)
	}
	return records, nil
}

// Count returns how many records match f.
func (c collection[T]) Count(ctx context.Context, f query.Filter) (int64, error) {
	db, err := c.scoped(ctx, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, apperr.Storage("count "+c.name, err)
	}
	return n, nil
}

// First returns the lowest-id record matching f, or apperr.ErrNotFound.
func (c collection[T]) First(ctx context.Context, f query.Filter) (*T, error) {
	db, err := c.scoped(ctx, f)
	if err != nil {
		return nil, err
	}
	var record T
	err = db.Order("id ASC").First(&record).Error
	switch {
	case err == nil:
		return &record, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find %s: %w", c.name, apperr.ErrNotFound)
	default:
		return nil, apperr.Storage("find "+c.name, err)
	}
}

// Create inserts record; ids are assigned by the store.
func (c collection[T]) Create(ctx context.Context, record *T) error {
	if err := c.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create %s: %w", c.name, apperr.ErrConflict)
		}
		return apperr.Storage("create "+c.name, err)
	}
	return nil
}

// Update applies patch to every record matching f and returns the first of them afterwards.
// Matching nothing yields apperr.ErrNotFound and writes nothing.
func (c collection[T]) Update(ctx context.Context, f query.Filter, patch map[string]any) (*T, error) {
	if len(patch) > 0 {
		db, err := c.scoped(ctx, f)
		if err != nil {
			return nil, err
		}
		res := db.Updates(patch)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("update %s: %w", c.name, apperr.ErrConflict)
			}
			return nil, apperr.Storage("update "+c.name, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("update %s: %w", c.name, apperr.ErrNotFound)
		}
	}
	return c.First(ctx, f)
}

// Delete removes every record matching f. Matching nothing yields apperr.ErrNotFound.
func (c collection[T]) Delete(ctx context.Context, f query.Filter) error {
	if f.IsMatchAll() {
		return fmt.Errorf("delete %s: refusing unfiltered delete: %w", c.name, apperr.ErrForbidden)
	}
	db, err := c.scoped(ctx, f)
	if err != nil {
		return err
	}
	res := db.Delete(new(T))
	if res.Error != nil {
		return apperr.Storage("delete "+c.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s: %w", c.name, apperr.ErrNotFound)
	}
	return nil
}
