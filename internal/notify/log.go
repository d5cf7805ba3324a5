package notify

import (
	"context"
	"log/slog"

	"todo-planner/internal/model"
)

// Log writes notifications to the log. It stands in for Telegram when no bot token is configured.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, user model.User, text string) error {
	l.logger.Info("notification", "user", user.ID, "text", text)
	return nil
}
