package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
)

const actorKey = "actor"

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// identity resolves the session credential once per request. Anonymous requests pass through;
// the policy decides what they may do.
func identity(resolver access.Resolver, cookie string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := access.CurrentActor(c.Request.Context(), resolver, credential(c, cookie))
		if err != nil {
			logger.Error("resolve identity", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireActor rejects anonymous requests before any input is decoded.
func requireActor(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, anonymous := actorOf(c).(access.Anonymous); anonymous {
			writeError(c, logger, apperr.Unauthorized("must be logged in"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// credential prefers the session cookie, then an `Authorization: Bearer` or `JWT` header.
func credential(c *gin.Context, cookie string) string {
	if v, err := c.Cookie(cookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	for _, scheme := range []string{"Bearer ", "JWT "} {
		if strings.HasPrefix(h, scheme) {
			return strings.TrimSpace(strings.TrimPrefix(h, scheme))
		}
	}
	return ""
}

func actorOf(c *gin.Context) access.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(access.Actor); ok {
			return a
		}
	}
	return access.Anonymous{}
}
