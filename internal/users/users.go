// users — реализация пользовательских операций, которые сценарии auth
// используют как внешнего коллаборатора: проверки занятости, роли,
// настройки по умолчанию, метаданные входа и снимки UserInfo.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/session"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
)

// Настройки, создаваемые при регистрации.
const (
	DefaultTheme    = "light"
	DefaultLanguage = "zh-CN"
)

// Service — пользовательские операции поверх UserStorage и сессионного кэша.
type Service struct {
	storage  storage.UserStorage
	sessions *session.Cache
	now      func() time.Time
}

// New создаёт Service.
func New(st storage.UserStorage, sessions *session.Cache) *Service {
	return &Service{
		storage:  st,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckEmailExists сообщает, занят ли e-mail.
func (s *Service) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	const op = "users.CheckEmailExists"

	_, err := s.storage.UserByEmail(ctx, email)
	return exists(op, err)
}

// CheckUsernameExists сообщает, занято ли имя пользователя.
func (s *Service) CheckUsernameExists(ctx context.Context, username string) (bool, error) {
	const op = "users.CheckUsernameExists"

	_, err := s.storage.UserByUsername(ctx, username)
	return exists(op, err)
}

func exists(op string, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

// AssignUserRole назначает роль пользователю.
func (s *Service) AssignUserRole(ctx context.Context, userID int64, role string) error {
	const op = "users.AssignUserRole"

	if err := s.storage.AssignRole(ctx, userID, role); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateDefaultPreferences создаёт настройки по умолчанию. Уже созданные не ошибка.
func (s *Service) CreateDefaultPreferences(ctx context.Context, userID int64) error {
	const op = "users.CreateDefaultPreferences"

	prefs := &models.Preferences{UserID: userID, Theme: DefaultTheme, Language: DefaultLanguage}
	if err := s.storage.SavePreferences(ctx, prefs); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateLastLoginInfo записывает время и IP последнего входа.
func (s *Service) UpdateLastLoginInfo(ctx context.Context, userID int64, ip string) error {
	const op = "users.UpdateLastLoginInfo"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	user.LastLoginAt = &now
	user.LastLoginIP = ip
	user.UpdatedAt = now

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetUserInfo возвращает снимок пользователя: сначала из сессионного кэша,
// при промахе собирает из хранилища и кладёт в кэш.
func (s *Service) GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error) {
	const op = "users.GetUserInfo"

	lg := log.From(ctx)

	info, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		lg.Warn("session_read_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	if ok {
		return info, nil
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.Deleted {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	roles, err := s.storage.RolesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	info = BuildUserInfo(user, roles)

	if err := s.sessions.Put(ctx, info); err != nil {
		lg.Warn("session_write_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	return info, nil
}

// ClearUserSession удаляет снимок пользователя из сессионного кэша.
func (s *Service) ClearUserSession(ctx context.Context, userID int64) error {
	const op = "users.ClearUserSession"

	if err := s.sessions.Invalidate(ctx, models.Registered(userID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// BuildUserInfo собирает снимок из модели пользователя и его ролей.
func BuildUserInfo(u *models.User, roles []string) *models.UserInfo {
	if roles == nil {
		roles = []string{}
	}

	nickname := u.Nickname
	if nickname == "" {
		nickname = u.Username
	}

	return &models.UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Nickname:  nickname,
		AvatarURL: u.AvatarURL,
		Roles:     roles,
	}
}
