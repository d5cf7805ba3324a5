package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
)

func TestCreateTaskFillsOwnerAndChildren(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	due := time.Date(2026, 7, 1, 9, 0, 0, 0, time.FixedZone("X", 3*3600))

	task := f.task(t, alice, TaskInput{
		Title:    "  Write report ",
		Owner:    ptr(actorID(bob)),
		DueDate:  &due,
		Hashtags: []string{"#Work", "work", " urgent "},
		Steps:    []StepInput{{Content: "outline"}, {ID: "keep", Content: "draft", Completed: true}},
		Notes:    []NoteInput{{Content: "ask Bob"}},
	})

	assert.Equal(t, actorID(alice), task.UserID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, time.UTC, task.DueDate.Location())
	assert.True(t, task.DueDate.Equal(due))
	assert.Equal(t, []string{"work", "urgent"}, []string(task.Hashtags))
	require.Len(t, task.Steps, 2)
	assert.NotEmpty(t, task.Steps[0].ID)
	assert.Equal(t, "keep", task.Steps[1].ID)
	require.Len(t, task.Notes, 1)
	assert.NotEmpty(t, task.Notes[0].ID)
	assert.False(t, task.Notes[0].CreatedAt.IsZero())
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", model.RoleUser)

	_, err := f.taskSvc.CreateTask(context.Background(), alice, TaskInput{
		Steps: []StepInput{{Content: "ok"}, {Content: " "}},
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "steps[1].content")
}

func TestCreateTaskAnonymousPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.taskSvc.CreateTask(ctx, access.Anonymous{}, TaskInput{Title: "x"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	n, err := f.tasks.Count(ctx, query.MatchAll())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateTaskRejectsForeignCategory(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	gym := f.category(t, bob, "Gym")

	_, err := f.taskSvc.CreateTask(context.Background(), alice, TaskInput{Title: "Lift", Category: &gym.ID})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category not found", verr.Fields["category"])

	_, err = f.taskSvc.CreateTask(context.Background(), alice, TaskInput{Title: "Lift", Category: ptr(uint(9999))})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category not found", verr.Fields["category"])
}

func TestListTasksNeverLeaksOtherOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	gym := f.category(t, bob, "Gym")
	f.task(t, alice, TaskInput{Title: "mine"})
	f.task(t, bob, TaskInput{Title: "bob's", Category: &gym.ID})

	filters := []query.Filter{
		query.MatchAll(),
		query.Where("user", query.Equals, actorID(bob)),
		query.Where("category", query.Equals, gym.ID),
		query.Where("title", query.Contains, "bob"),
	}
	for _, filter := range filters {
		t.Run(filter.String(), func(t *testing.T) {
			res, err := f.taskSvc.List(ctx, alice, filter, query.DefaultPage())
			require.NoError(t, err)
			for _, task := range res.Docs {
				assert.Equal(t, actorID(alice), task.UserID)
			}
		})
	}

	res, err := f.taskSvc.List(ctx, admin, query.MatchAll(), query.DefaultPage())
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalDocs)

	res, err = f.taskSvc.List(ctx, admin, query.Where("category", query.Equals, gym.ID), query.DefaultPage())
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "bob's", res.Docs[0].Title)

	_, err = f.taskSvc.List(ctx, access.Anonymous{}, query.MatchAll(), query.DefaultPage())
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestForeignTaskWritesAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	task := f.task(t, bob, TaskInput{Title: "bob's"})

	_, err := f.taskSvc.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.taskSvc.UpdateTask(ctx, alice, task.ID, TaskPatch{Title: ptr("hijacked"), Completed: ptr(true)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.taskSvc.DeleteTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := f.taskSvc.GetTask(ctx, bob, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob's", got.Title)
	assert.False(t, got.IsCompleted)
}

func TestForeignTaskUpdateHidesValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	task := f.task(t, bob, TaskInput{Title: "bob's"})

	_, err := f.taskSvc.UpdateTask(ctx, alice, task.ID, TaskPatch{Title: ptr("   ")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var verr *apperr.ValidationError
	_, err = f.taskSvc.UpdateTask(ctx, bob, task.ID, TaskPatch{Title: ptr("   ")})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
}

func TestAdminCreateForMissingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.user(t, "admin@example.com", model.RoleAdmin)

	var verr *apperr.ValidationError
	_, err := f.taskSvc.CreateTask(ctx, admin, TaskInput{Title: "orphan", Owner: ptr(uint(9999))})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user not found", verr.Fields["user"])

	_, err = f.catSvc.Create(ctx, admin, CategoryInput{Name: "orphan", Owner: ptr(uint(9999))})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user not found", verr.Fields["user"])

	total, err := f.tasks.Count(ctx, query.MatchAll())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateTaskPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	work := f.category(t, alice, "Work")
	due := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	task := f.task(t, alice, TaskInput{Title: "draft", Category: &work.ID, DueDate: &due, Hashtags: []string{"a"}})

	updated, err := f.taskSvc.UpdateTask(ctx, alice, task.ID, TaskPatch{
		Completed: ptr(true),
		Category:  OptionalID{Set: true},
		DueDate:   OptionalTime{Set: true},
		Steps:     []StepInput{{Content: "one"}},
	})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Nil(t, updated.CategoryID)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "draft", updated.Title)
	assert.Equal(t, []string{"a"}, []string(updated.Hashtags))
	require.Len(t, updated.Steps, 1)
	assert.Equal(t, "one", updated.Steps[0].Content)

	unchanged, err := f.taskSvc.UpdateTask(ctx, alice, task.ID, TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated.ID, unchanged.ID)
	assert.True(t, unchanged.IsCompleted)
}

func TestUpdateTaskReminderRearms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	at := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	task := f.task(t, alice, TaskInput{Title: "call", Reminder: &at})
	require.NoError(t, f.tasks.MarkReminded(ctx, task.ID, at))

	later := at.Add(24 * time.Hour)
	_, err := f.taskSvc.UpdateTask(ctx, alice, task.ID, TaskPatch{Reminder: OptionalTime{Set: true, Value: &later}})
	require.NoError(t, err)

	due, err := f.tasks.ListDueReminders(ctx, later.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, task.ID, due[0].ID)
}

func TestUpdateTaskRejectsForeignCategory(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	gym := f.category(t, bob, "Gym")
	task := f.task(t, alice, TaskInput{Title: "mine"})

	_, err := f.taskSvc.UpdateTask(context.Background(), alice, task.ID, TaskPatch{Category: OptionalID{Set: true, Value: &gym.ID}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteTaskReturnsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	task := f.task(t, alice, TaskInput{Title: "gone"})

	deleted, err := f.taskSvc.DeleteTask(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "gone", deleted.Title)

	_, err = f.taskSvc.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCategoryCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com", model.RoleUser)
	bob := f.user(t, "bob@example.com", model.RoleUser)
	admin := f.user(t, "admin@example.com", model.RoleAdmin)
	a := f.category(t, alice, "A")
	b := f.category(t, alice, "B")
	gym := f.category(t, bob, "Gym")

	f.task(t, alice, TaskInput{Title: "T1", Category: &a.ID})
	f.task(t, alice, TaskInput{Title: "T2", Category: &a.ID})
	f.task(t, alice, TaskInput{Title: "T3", Category: &b.ID})
	f.task(t, alice, TaskInput{Title: "loose"})
	f.task(t, bob, TaskInput{Title: "T4", Category: &gym.ID})

	counts, err := f.taskSvc.CategoryCounts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{a.ID: 2, b.ID: 1}, counts)

	counts, err = f.taskSvc.CategoryCounts(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = f.taskSvc.CategoryCounts(ctx, access.Anonymous{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
