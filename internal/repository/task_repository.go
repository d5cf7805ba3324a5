package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	collection[model.Task]
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{collection[model.Task]{db: db, schema: query.TaskSchema, name: "task"}}
}

type categoryCount struct {
	CategoryID uint
	Total      int64
}

// CountByCategory groups the tasks matching f by category and counts each group.
// Tasks without a category are skipped. Any store failure yields ErrAggregationUnavailable and no
// partial result.
func (r *TaskRepository) CountByCategory(ctx context.Context, f query.Filter) (map[uint]int64, error) {
	db, err := r.scoped(ctx, f)
	if err != nil {
		return nil, err
	}
	var rows []categoryCount
	err = db.Select("category_id, COUNT(*) AS total").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Aggregation("count tasks by category", err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}

// ListDueReminders returns incomplete tasks whose reminder time has passed and that were not yet
// reminded. Tasks with fewer failed deliveries come first, then the oldest reminder.
func (r *TaskRepository) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("is_completed = ? AND reminder IS NOT NULL AND reminder <= ? AND reminded_at IS NULL", false, now).
		Order("reminder_attempts ASC, reminder ASC, id ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list due reminders", err)
	}
	return tasks, nil
}

// MarkReminded stamps remindedAt so the task is not reminded again until its reminder changes.
func (r *TaskRepository) MarkReminded(ctx context.Context, taskID uint, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("reminded_at", at).Error; err != nil {
		return apperr.Storage("mark reminded", err)
	}
	return nil
}

// RecordReminderFailure counts a failed delivery and returns the new number of attempts.
func (r *TaskRepository) RecordReminderFailure(ctx context.Context, taskID uint) (int, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("id = ?", taskID).
			Update("reminder_attempts", gorm.Expr("reminder_attempts + 1")).Error; err != nil {
			return err
		}
		return tx.Select("reminder_attempts").First(&task, taskID).Error
	})
	if err != nil {
		return 0, apperr.Storage("record reminder failure", err)
	}
	return task.ReminderAttempts, nil
}

// ListOpen returns the incomplete tasks of userID, soonest due date first.
func (r *TaskRepository) ListOpen(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_completed = ?", userID, false).
		Order("due_date IS NULL, due_date ASC, created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list open tasks", err)
	}
	return tasks, nil
}
