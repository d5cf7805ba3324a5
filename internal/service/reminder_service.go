package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

// ErrNoChannel reports that a user has nowhere to receive notifications.
var ErrNoChannel = errors.New("no delivery channel")

const (
	reminderBatch       = 100
	maxReminderAttempts = 5
)

// Notifier delivers an HTML-formatted message to a user.
type Notifier interface {
	Notify(ctx context.Context, user model.User, text string) error
}

// ReminderService delivers task reminders and builds daily summaries.
type ReminderService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	userRepo     *repository.UserRepository
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
}

func NewReminderService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// SetNotifier replaces the delivery channel. Call it before any job runs.
func (s *ReminderService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendDueReminders notifies the owners of tasks whose reminder has passed and stamps them as
// reminded. A task whose delivery fails is retried on later sweeps, up to maxReminderAttempts.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	tasks, err := s.taskRepo.ListDueReminders(ctx, now, reminderBatch)
	if err != nil {
		return 0, err
	}

	owners := make(map[uint]*model.User)
	sent := 0
	for _, task := range tasks {
		owner, ok := owners[task.UserID]
		if !ok {
			owner, err = s.userRepo.FindByID(ctx, task.UserID)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				owner = nil
			case err != nil:
				return sent, err
			}
			owners[task.UserID] = owner
		}

		if owner == nil {
			s.logger.Warn("reminder owner missing", "task", task.ID, "user", task.UserID)
		} else {
			err := s.notifier.Notify(ctx, *owner, formatReminder(task))
			switch {
			case err == nil:
				sent++
			case errors.Is(err, ErrNoChannel):
			default:
				attempts, ferr := s.taskRepo.RecordReminderFailure(ctx, task.ID)
				if ferr != nil {
					return sent, ferr
				}
				if attempts < maxReminderAttempts {
					s.logger.Warn("reminder delivery failed", "task", task.ID, "user", task.UserID, "attempt", attempts, "err", err)
					continue
				}
				s.logger.Error("reminder dropped", "task", task.ID, "user", task.UserID, "attempts", attempts, "err", err)
			}
		}
		if err := s.taskRepo.MarkReminded(ctx, task.ID, now); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// SendDailyDigests sends DailySummary to every user with a linked chat.
func (s *ReminderService) SendDailyDigests(ctx context.Context) (int, error) {
	users, err := s.userRepo.ListTelegramLinked(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now()
	sent := 0
	for _, user := range users {
		text, err := s.DailySummary(ctx, user, now)
		if err != nil {
			return sent, err
		}
		if err := s.notifier.Notify(ctx, user, text); err != nil {
			if !errors.Is(err, ErrNoChannel) {
				s.logger.Warn("digest delivery failed", "user", user.ID, "err", err)
			}
			continue
		}
		sent++
	}
	return sent, nil
}

// DailySummary lists the user's open tasks, soonest due date first.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListOpen(ctx, user.ID)
	if err != nil {
		return "", err
	}

	categories, err := s.categoryRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("- nothing open\n")
	} else {
		for _, task := range tasks {
			builder.WriteString(formatTask(task, catNames, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// SummaryForChat is DailySummary for the user linked to a Telegram chat.
func (s *ReminderService) SummaryForChat(ctx context.Context, chatID int64) (string, error) {
	user, err := s.userRepo.FindByTelegramChat(ctx, chatID)
	if err != nil {
		return "", err
	}
	return s.DailySummary(ctx, *user, s.now())
}

func formatReminder(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 <b>Reminder</b>: %s", html.EscapeString(strings.TrimSpace(task.Title))))
	if task.DueDate != nil {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", task.DueDate.UTC().Format("2006-01-02")))
	}
	if open := openSteps(task); open > 0 {
		sb.WriteString(fmt.Sprintf("\n   ☑️ %d of %d steps left", open, len(task.Steps)))
	}
	return sb.String()
}

func formatTask(task model.Task, catNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s %s", icon, title))

	if task.CategoryID != nil {
		if name := strings.TrimSpace(catNames[*task.CategoryID]); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d days left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if len(task.Hashtags) > 0 {
		tags := make([]string, len(task.Hashtags))
		for i, tag := range task.Hashtags {
			tags[i] = "#" + html.EscapeString(tag)
		}
		sb.WriteString("\n   🏷 " + strings.Join(tags, " "))
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func openSteps(task model.Task) int {
	n := 0
	for _, step := range task.Steps {
		if !step.Completed {
			n++
		}
	}
	return n
}
