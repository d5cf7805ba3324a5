package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"todo-planner/internal/apperr"
	"todo-planner/internal/query"
	"todo-planner/internal/service"
)

func (s *server) health(c *gin.Context) {
	if err := s.Ping(c.Request.Context()); err != nil {
		s.Logger.Error("health check", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listOptions parses where, limit, page and sort against schema.
func listOptions(c *gin.Context, schema query.Schema) (query.Filter, query.Page, error) {
	values := c.Request.URL.Query()
	v := &apperr.ValidationError{}
	f, err := query.ParseWhere(values, schema)
	mergeValidation(v, err)
	p, err := query.ParsePage(values, schema)
	mergeValidation(v, err)
	if err := v.Err(); err != nil {
		return query.Filter{}, query.Page{}, err
	}
	return f, p, nil
}

func mergeValidation(dst *apperr.ValidationError, err error) {
	var e *apperr.ValidationError
	if errors.As(err, &e) {
		for field, msg := range e.Fields {
			dst.Add(field, msg)
		}
	}
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Invalid("id", "expected a positive integer")
	}
	return uint(id), nil
}

// Categories

func (s *server) listCategories(c *gin.Context) {
	f, p, err := listOptions(c, query.CategorySchema)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	res, err := s.Categories.List(c.Request.Context(), actorOf(c), f, p)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) getCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	category, err := s.Categories.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *server) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	category, err := s.Categories.Create(c.Request.Context(), actorOf(c), service.CategoryInput{
		Name:         req.Name,
		IsPredefined: req.IsPredefined,
		Owner:        req.User.Value,
	})
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"doc": category, "message": "Category successfully created."})
}

func (s *server) updateCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	category, err := s.Categories.Update(c.Request.Context(), actorOf(c), id, service.CategoryPatch{
		Name:         req.Name,
		IsPredefined: req.IsPredefined,
	})
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": category, "message": "Updated successfully."})
}

func (s *server) deleteCategory(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	category, err := s.Categories.Delete(c.Request.Context(), actorOf(c), id)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": category, "message": "Deleted successfully."})
}

// Tasks

func (s *server) listTasks(c *gin.Context) {
	f, p, err := listOptions(c, query.TaskSchema)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	res, err := s.Tasks.List(c.Request.Context(), actorOf(c), f, p)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) getTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	task, err := s.Tasks.GetTask(c.Request.Context(), actorOf(c), id)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	task, err := s.Tasks.CreateTask(c.Request.Context(), actorOf(c), req.input())
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"doc": task, "message": "Task successfully created."})
}

func (s *server) updateTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, s.Logger, bindError(err))
		return
	}
	task, err := s.Tasks.UpdateTask(c.Request.Context(), actorOf(c), id, req.patch())
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": task, "message": "Updated successfully."})
}

func (s *server) deleteTask(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	task, err := s.Tasks.DeleteTask(c.Request.Context(), actorOf(c), id)
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": task, "message": "Deleted successfully."})
}

func (s *server) categoriesCount(c *gin.Context) {
	counts, err := s.Tasks.CategoryCounts(c.Request.Context(), actorOf(c))
	if err != nil {
		writeError(c, s.Logger, err)
		return
	}
	stats := make([]service.CategoryCount, 0, len(counts))
	for category, n := range counts {
		stats = append(stats, service.CategoryCount{Category: category, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
