package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
)

func TestDeleteMatchingDetachesTasks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	tasks := NewTaskRepository(db)

	u := createUser(t, db, "u@example.com")
	work := createCategory(t, db, u.ID, "Work")
	home := createCategory(t, db, u.ID, "Home")
	inWork := createTask(t, db, model.Task{UserID: u.ID, CategoryID: &work.ID, Title: "report"})
	inHome := createTask(t, db, model.Task{UserID: u.ID, CategoryID: &home.ID, Title: "dishes"})

	require.NoError(t, categories.DeleteMatching(ctx, query.Where("id", query.Equals, work.ID)))

	_, err := categories.First(ctx, query.Where("id", query.Equals, work.ID))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := tasks.First(ctx, query.Where("id", query.Equals, inWork.ID))
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	got, err = tasks.First(ctx, query.Where("id", query.Equals, inHome.ID))
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, home.ID, *got.CategoryID)
}

func TestDeleteMatchingNothing(t *testing.T) {
	db := openTestDB(t)
	u := createUser(t, db, "u@example.com")
	other := createUser(t, db, "o@example.com")
	c := createCategory(t, db, u.ID, "Work")

	f := query.Where("id", query.Equals, c.ID).And(query.Condition{Field: "user", Op: query.Equals, Value: other.ID})
	err := NewCategoryRepository(db).DeleteMatching(context.Background(), f)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := NewCategoryRepository(db).Count(context.Background(), query.MatchAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCategoryListByUser(t *testing.T) {
	db := openTestDB(t)
	u := createUser(t, db, "u@example.com")
	other := createUser(t, db, "o@example.com")
	createCategory(t, db, u.ID, "Work")
	createCategory(t, db, u.ID, "Health")
	createCategory(t, db, other.ID, "Hidden")

	categories, err := NewCategoryRepository(db).ListByUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Health", categories[0].Name)
	assert.Equal(t, "Work", categories[1].Name)
}
