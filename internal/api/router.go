// Package api exposes the planner over HTTP with gin.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"todo-planner/internal/access"
	"todo-planner/internal/service"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Users      *service.UserService
	Resolver   access.Resolver
	Ping       func(ctx context.Context) error
	Cookie     CookieConfig
	Logger     *slog.Logger

	TelegramEnabled bool
}

type server struct {
	Deps
}

// NewRouter builds the gin engine with every route under /api.
func NewRouter(deps Deps) *gin.Engine {
	s := &server{Deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))

	api := r.Group("/api")
	api.GET("/health", s.health)

	authed := api.Group("")
	authed.Use(identity(deps.Resolver, deps.Cookie.Name, deps.Logger))
	{
		users := authed.Group("/users")
		users.POST("/register", s.register)
		users.POST("/login", s.login)
		users.POST("/logout", s.logout)
		users.GET("/me", s.me)
		users.PATCH("/me", s.updateMe)
		users.POST("/me/telegram-link", s.telegramLink)
		users.PATCH("/:id/role", s.setRole)

		categories := authed.Group("/categories", requireActor(deps.Logger))
		categories.GET("", s.listCategories)
		categories.POST("", s.createCategory)
		categories.GET("/:id", s.getCategory)
		categories.PATCH("/:id", s.updateCategory)
		categories.DELETE("/:id", s.deleteCategory)

		tasks := authed.Group("/tasks", requireActor(deps.Logger))
		tasks.GET("", s.listTasks)
		tasks.POST("", s.createTask)
		tasks.GET("/categories-count", s.categoriesCount)
		tasks.GET("/:id", s.getTask)
		tasks.PATCH("/:id", s.updateTask)
		tasks.DELETE("/:id", s.deleteTask)
	}

	return r
}
