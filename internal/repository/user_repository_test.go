package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/query"
)

func TestCreateWithCategoriesSeeds(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	user := model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h", Role: model.RoleUser}
	require.NoError(t, users.CreateWithCategories(ctx, &user, []string{"Important", "Planned"}))
	require.NotZero(t, user.ID)

	categories, err := NewCategoryRepository(db).Find(ctx, query.Where("user", query.Equals, user.ID), query.DefaultPage())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	for _, c := range categories {
		assert.True(t, c.IsPredefined)
		assert.Equal(t, user.ID, c.UserID)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	createUser(t, db, "dup@example.com")

	again := model.User{Name: "x", Email: "dup@example.com", PasswordHash: "h", Role: model.RoleUser}
	err := users.CreateWithCategories(ctx, &again, []string{"Important"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	n, err := NewCategoryRepository(db).Count(ctx, query.MatchAll())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFindUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	created := createUser(t, db, "find@example.com")

	got, err := users.FindByEmail(ctx, "  FIND@example.com ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = users.FindByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := users.Update(ctx, created.ID, map[string]any{"name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = users.Update(ctx, created.ID+100, map[string]any{"name": "ghost"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLinkTelegram(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	u := createUser(t, db, "tg@example.com")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	code := "abc123"
	expires := now.Add(10 * time.Minute)
	_, err := users.Update(ctx, u.ID, map[string]any{"telegram_link_code": code, "link_code_expires": expires})
	require.NoError(t, err)

	_, err = users.LinkTelegram(ctx, "wrong", 777, now)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = users.LinkTelegram(ctx, code, 777, now.Add(time.Hour))
	assert.ErrorIs(t, err, apperr.ErrNotFound, "expired code")

	linked, err := users.LinkTelegram(ctx, code, 777, now)
	require.NoError(t, err)
	require.NotNil(t, linked.TelegramChatID)
	assert.Equal(t, int64(777), *linked.TelegramChatID)

	_, err = users.LinkTelegram(ctx, code, 777, now)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "code is single use")

	all, err := users.ListTelegramLinked(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, u.ID, all[0].ID)

	byChat, err := users.FindByTelegramChat(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byChat.ID)
	_, err = users.FindByTelegramChat(ctx, 778)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
