package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/access"
	"todo-planner/internal/apperr"
	"todo-planner/internal/auth"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
)

const (
	minPasswordLen = 8
	linkCodeTTL    = 10 * time.Minute
)

// RegisterInput is the self-service sign-up payload. The role is always user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is a successful login.
type Session struct {
	User    *model.User
	Token   string
	Expires time.Time
}

// UserService covers registration, login and account administration.
type UserService struct {
	users      *repository.UserRepository
	issuer     *auth.Issuer
	predefined []string
	now        func() time.Time
}

func NewUserService(users *repository.UserRepository, issuer *auth.Issuer, predefined []string) *UserService {
	return &UserService{users: users, issuer: issuer, predefined: predefined, now: time.Now}
}

// Register creates a user account together with its predefined categories.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.create(ctx, in, model.RoleUser)
}

// CreateAdmin provisions an administrator. It is reachable from the command line only.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.create(ctx, in, model.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	v := &apperr.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		v.Add("name", "is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		v.Add("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		v.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := model.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.CreateWithCategories(ctx, &user, s.predefined); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks credentials and issues a session. Unknown email and wrong password fail alike.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	token, exp, err := s.issuer.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, Expires: exp}, nil
}

// Me returns the account of actor, or nil for anonymous actors.
func (s *UserService) Me(ctx context.Context, actor access.Actor) (*model.User, error) {
	id, ok := access.ActorID(actor)
	if !ok {
		return nil, nil
	}
	return s.users.FindByID(ctx, id)
}

// UpdateProfile renames the actor's own account.
func (s *UserService) UpdateProfile(ctx context.Context, actor access.Actor, name string) (*model.User, error) {
	id, ok := access.ActorID(actor)
	if !ok {
		return nil, apperr.Unauthorized("must be logged in")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	return s.users.Update(ctx, id, map[string]any{"name": name})
}

// SetRole changes the role of userID. Only admins may do this.
func (s *UserService) SetRole(ctx context.Context, actor access.Actor, userID uint, role model.Role) (*model.User, error) {
	switch actor.(type) {
	case access.Admin:
	case access.User:
		return nil, fmt.Errorf("set role: %w", apperr.ErrForbidden)
	default:
		return nil, apperr.Unauthorized("must be logged in")
	}
	if !role.Valid() {
		return nil, apperr.Invalid("role", "must be user or admin")
	}
	return s.users.Update(ctx, userID, map[string]any{"role": role})
}

// IssueTelegramLinkCode returns a one-time code the actor sends to the bot as `/start <code>`.
func (s *UserService) IssueTelegramLinkCode(ctx context.Context, actor access.Actor) (string, time.Time, error) {
	id, ok := access.ActorID(actor)
	if !ok {
		return "", time.Time{}, apperr.Unauthorized("must be logged in")
	}
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	expires := s.now().UTC().Add(linkCodeTTL)
	if _, err := s.users.Update(ctx, id, map[string]any{
		"telegram_link_code": code,
		"link_code_expires":  expires,
	}); err != nil {
		return "", time.Time{}, err
	}
	return code, expires, nil
}

// LinkTelegram consumes a link code received by the bot.
func (s *UserService) LinkTelegram(ctx context.Context, code string, chatID int64) (*model.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Invalid("code", "is required")
	}
	return s.users.LinkTelegram(ctx, code, chatID, s.now().UTC())
}
