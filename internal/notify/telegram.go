// Package notify delivers reminders and digests to users.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
	"todo-planner/internal/service"
)

// botAPI is the part of *tgbotapi.BotAPI the notifier uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Linker attaches a chat to the account holding a link code.
type Linker interface {
	LinkTelegram(ctx context.Context, code string, chatID int64) (*model.User, error)
}

// Reporter builds the digest for the account linked to a chat.
type Reporter interface {
	SummaryForChat(ctx context.Context, chatID int64) (string, error)
}

// Telegram sends notifications through a bot and answers the account-linking commands.
type Telegram struct {
	api      botAPI
	linker   Linker
	reporter Reporter
	logger   *slog.Logger
}

// NewTelegram authorizes token against the Bot API.
func NewTelegram(token string, linker Linker, reporter Reporter, logger *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("bot authorized", "account", api.Self.UserName)
	return newTelegram(api, linker, reporter, logger), nil
}

func newTelegram(api botAPI, linker Linker, reporter Reporter, logger *slog.Logger) *Telegram {
	return &Telegram{api: api, linker: linker, reporter: reporter, logger: logger}
}

// Notify sends text to the user's linked chat.
func (t *Telegram) Notify(_ context.Context, user model.User, text string) error {
	if user.TelegramChatID == nil {
		return service.ErrNoChannel
	}
	if err := t.sendText(*user.TelegramChatID, text); err != nil {
		return fmt.Errorf("send to chat %d: %w", *user.TelegramChatID, err)
	}
	return nil
}

// Start begins polling updates until ctx is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.api.GetUpdatesChan(updateConfig)

	t.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		t.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := t.handleMessage(ctx, update.Message); err != nil {
			t.logger.Warn("handle message", "chat", update.Message.Chat.ID, "err", err)
		}
	}
	return nil
}

func (t *Telegram) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return t.sendText(msg.Chat.ID, "Send /help for the list of commands.")
	}
	t.logger.Debug("command", "chat", msg.Chat.ID, "command", msg.Command())

	switch msg.Command() {
	case "start":
		return t.handleStart(ctx, msg)
	case "report":
		return t.handleReport(ctx, msg)
	case "help":
		return t.sendText(msg.Chat.ID, helpText)
	default:
		return t.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /start &lt;code&gt; — link this chat to your account\n" +
	"• /report — today's summary\n" +
	"• /help — this message"

func (t *Telegram) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	code := strings.TrimSpace(msg.CommandArguments())
	if code == "" {
		return t.sendText(msg.Chat.ID, "👋 Open your profile in the planner, request a Telegram link code and send it here as /start &lt;code&gt;.")
	}
	user, err := t.linker.LinkTelegram(ctx, code, msg.Chat.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrValidation):
		return t.sendText(msg.Chat.ID, "❌ This code is unknown or expired. Request a new one.")
	case err != nil:
		return err
	}
	t.logger.Info("telegram linked", "user", user.ID, "chat", msg.Chat.ID)
	return t.sendText(msg.Chat.ID, fmt.Sprintf("✅ Linked to <b>%s</b>. Reminders will arrive here.", html.EscapeString(user.Name)))
}

func (t *Telegram) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	text, err := t.reporter.SummaryForChat(ctx, msg.Chat.ID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return t.sendText(msg.Chat.ID, "This chat is not linked yet. Send /start &lt;code&gt; first.")
	case err != nil:
		return err
	}
	return t.sendText(msg.Chat.ID, text)
}

func (t *Telegram) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.api.Send(msg)
	return err
}
