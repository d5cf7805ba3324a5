package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-planner/internal/model"
)

// openTestDB creates a migrated SQLite database in a temp dir.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	user := model.User{Name: email, Email: email, PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, NewUserRepository(db).CreateWithCategories(context.Background(), &user, nil))
	return user
}

func createCategory(t *testing.T, db *gorm.DB, userID uint, name string) model.Category {
	t.Helper()
	category := model.Category{UserID: userID, Name: name}
	require.NoError(t, NewCategoryRepository(db).Create(context.Background(), &category))
	return category
}

func createTask(t *testing.T, db *gorm.DB, task model.Task) model.Task {
	t.Helper()
	require.NoError(t, NewTaskRepository(db).Create(context.Background(), &task))
	return task
}
