package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"todo-planner/internal/access"
	"todo-planner/internal/auth"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

type fixture struct {
	db         *gorm.DB
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository
	users      *repository.UserRepository
	taskSvc    *TaskService
	catSvc     *CategoryService
	userSvc    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "svc.db"), repository.Options{})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:         db,
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
		users:      repository.NewUserRepository(db),
	}
	f.taskSvc = NewTaskService(f.tasks, f.categories, f.users)
	f.catSvc = NewCategoryService(f.categories, f.users)
	f.userSvc = NewUserService(f.users, auth.NewIssuer("test-secret", time.Hour), []string{"Important", "Planned"})
	return f
}

func (f *fixture) user(t *testing.T, email string, role model.Role) access.Actor {
	t.Helper()
	u := model.User{Name: email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, f.users.CreateWithCategories(context.Background(), &u, nil))
	return access.FromRole(u.ID, role)
}

func (f *fixture) category(t *testing.T, actor access.Actor, name string) *model.Category {
	t.Helper()
	c, err := f.catSvc.Create(context.Background(), actor, CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) task(t *testing.T, actor access.Actor, in TaskInput) *model.Task {
	t.Helper()
	task, err := f.taskSvc.CreateTask(context.Background(), actor, in)
	require.NoError(t, err)
	return task
}

func actorID(a access.Actor) uint {
	id, _ := access.ActorID(a)
	return id
}

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
