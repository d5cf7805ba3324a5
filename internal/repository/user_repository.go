package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"todo-planner/internal/apperr"
	"todo-planner/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithCategories inserts user and its seed categories atomically.
func (r *UserRepository) CreateWithCategories(ctx context.Context, user *model.User, names []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("create user: %w", apperr.ErrConflict)
			}
			return apperr.Storage("create user", err)
		}
		for _, name := range names {
			category := model.Category{UserID: user.ID, Name: name, IsPredefined: true}
			if err := tx.Create(&category).Error; err != nil {
				return apperr.Storage("seed category", err)
			}
		}
		return nil
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

func firstUser(db *gorm.DB) (*model.User, error) {
	var user model.User
	err := db.First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("find user: %w", apperr.ErrNotFound)
	default:
		return nil, apperr.Storage("find user", err)
	}
}

// FindByTelegramChat returns the user linked to chatID.
func (r *UserRepository) FindByTelegramChat(ctx context.Context, chatID int64) (*model.User, error) {
	return firstUser(r.db.WithContext(ctx).Where("telegram_chat_id = ?", chatID))
}

// Update applies a column patch to the user with id.
func (r *UserRepository) Update(ctx context.Context, id uint, patch map[string]any) (*model.User, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, apperr.Storage("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update user: %w", apperr.ErrNotFound)
	}
	return r.FindByID(ctx, id)
}

// LinkTelegram attaches chatID to the user holding an unexpired code and consumes the code.
func (r *UserRepository) LinkTelegram(ctx context.Context, code string, chatID int64, now time.Time) (*model.User, error) {
	var linked *model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Where("telegram_link_code = ? AND link_code_expires > ?", code, now).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("link telegram: %w", apperr.ErrNotFound)
		}
		if err != nil {
			return apperr.Storage("link telegram", err)
		}
		if err := tx.Model(&model.User{}).Where("telegram_chat_id = ? AND id <> ?", chatID, user.ID).
			Update("telegram_chat_id", nil).Error; err != nil {
			return apperr.Storage("unlink previous chat", err)
		}
		if err := tx.Model(&user).Updates(map[string]any{
			"telegram_chat_id":   chatID,
			"telegram_link_code": nil,
			"link_code_expires":  nil,
		}).Error; err != nil {
			return apperr.Storage("link telegram", err)
		}
		user.TelegramChatID = &chatID
		user.TelegramLinkCode = nil
		user.LinkCodeExpires = nil
		linked = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return linked, nil
}

// ListTelegramLinked returns every user with a linked chat.
func (r *UserRepository) ListTelegramLinked(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id IS NOT NULL").Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Storage("list users", err)
	}
	return users, nil
}
