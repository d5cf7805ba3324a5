package cli

import (
	"io"
	"log/slog"

	"gorm.io/gorm"

	"todo-planner/internal/auth"
	"todo-planner/internal/config"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	db     *gorm.DB

	users      *repository.UserRepository
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository

	issuer      *auth.Issuer
	userSvc     *service.UserService
	taskSvc     *service.TaskService
	categorySvc *service.CategoryService
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadApp reads the configuration, opens and migrates the database and builds the services.
func loadApp(opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.Debug = true
	}
	logger := newLogger(logOut, cfg.Debug)

	db, err := repository.NewDB(cfg.DatabaseURL, repository.Options{Debug: cfg.Debug})
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		users:      repository.NewUserRepository(db),
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
		issuer:     auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL),
	}
	a.userSvc = service.NewUserService(a.users, a.issuer, cfg.PredefinedCategories)
	a.taskSvc = service.NewTaskService(a.tasks, a.categories, a.users)
	a.categorySvc = service.NewCategoryService(a.categories, a.users)
	return a, nil
}

func (a *app) Close() {
	closeDB(a.db)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
