package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"todo-planner/internal/api"
	"todo-planner/internal/auth"
	"todo-planner/internal/notify"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")

	return cmd
}

func runServe(ctx context.Context, a *app) error {
	reminders := service.NewReminderService(a.tasks, a.categories, a.users, notify.NewLog(a.logger), a.logger)

	var bot *notify.Telegram
	if a.cfg.TelegramEnabled() {
		var err error
		bot, err = notify.NewTelegram(a.cfg.TelegramToken, a.userSvc, reminders, a.logger)
		if err != nil {
			return err
		}
		reminders.SetNotifier(bot)
	} else {
		a.logger.Warn("TELEGRAM_TOKEN is empty, notifications go to the log")
	}

	scheduler := service.NewSchedulerService(a.cfg.Location(), a.logger)
	if _, err := scheduler.ScheduleInterval(ctx, "reminders", a.cfg.ReminderInterval, func(ctx context.Context) error {
		_, err := reminders.SendDueReminders(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	if a.cfg.DigestTime != "" {
		if _, err := scheduler.ScheduleDaily(ctx, "digest", a.cfg.DigestTime, func(ctx context.Context) error {
			_, err := reminders.SendDailyDigests(ctx)
			return err
		}); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Categories:      a.categorySvc,
		Tasks:           a.taskSvc,
		Users:           a.userSvc,
		Resolver:        auth.NewSessionResolver(a.issuer, a.users),
		Ping:            func(ctx context.Context) error { return repository.Ping(ctx, a.db) },
		Cookie:          api.CookieConfig{Name: a.cfg.SessionCookie, Secure: a.cfg.CookieSecure},
		Logger:          a.logger,
		TelegramEnabled: bot != nil,
	})
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Start(ctx)
		})
	}
	return g.Wait()
}
