package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	collection[model.Category]
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{collection[model.Category]{db: db, schema: query.CategorySchema, name: "category"}}
}

// DeleteMatching removes the categories matching f and detaches their tasks in one transaction.
func (r *CategoryRepository) DeleteMatching(ctx context.Context, f query.Filter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := collection[model.Category]{db: tx, schema: r.schema, name: r.name}
		db, err := inner.scoped(ctx, f)
		if err != nil {
			return err
		}
		var ids []uint
		if err := db.Pluck("id", &ids).Error; err != nil {
			return apperr.Storage("find category", err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("delete category: %w", apperr.ErrNotFound)
		}
		if err := tx.Model(&model.Task{}).Where("category_id IN ?", ids).
			Update("category_id", nil).Error; err != nil {
			return apperr.Storage("detach tasks", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Category{}).Error; err != nil {
			return apperr.Storage("delete category", err)
		}
		return nil
	})
}

// ListByUser returns every category of userID ordered by name.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.Storage("list categories", err)
	}
	return categories, nil
}
