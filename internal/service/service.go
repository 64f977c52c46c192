// service содержит сценарии аутентификации: регистрацию по коду, вход,
// гостевой вход, обновление и отзыв токенов, сброс и смену пароля, профиль.
//
// Service не хранит состояния запроса: всё общее состояние живёт в Redis
// (зеркала кодов, cooldown, blacklist, снимки сессий) и в PostgreSQL.
// Ошибки компонентов (*autherr.Error) пробрасываются без изменений,
// инфраструктурные ошибки оборачиваются в autherr.Internal.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/config"
	"github.com/pribylovaa/gamehub-auth/internal/email"
	"github.com/pribylovaa/gamehub-auth/internal/metrics"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/session"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
	"github.com/pribylovaa/gamehub-auth/internal/token"
	"github.com/pribylovaa/gamehub-auth/internal/verification"
)

// UserService — пользовательские операции, которые сценарии auth делегируют.
type UserService interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CheckUsernameExists(ctx context.Context, username string) (bool, error)
	AssignUserRole(ctx context.Context, userID int64, role string) error
	CreateDefaultPreferences(ctx context.Context, userID int64) error
	UpdateLastLoginInfo(ctx context.Context, userID int64, ip string) error
	GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error)
	ClearUserSession(ctx context.Context, userID int64) error
}

// Deps — зависимости Service.
type Deps struct {
	Users    storage.UserStorage
	UserSvc  UserService
	Codes    *verification.Manager
	Tokens   *token.Service
	Sessions *session.Cache
	Mail     email.Gateway
	// Metrics может быть nil.
	Metrics *metrics.Metrics
}

// Service описывает бизнес-логику auth-сервиса.
type Service struct {
	users    storage.UserStorage
	userSvc  UserService
	codes    *verification.Manager
	tokens   *token.Service
	sessions *session.Cache
	mail     email.Gateway
	metrics  *metrics.Metrics
	cfg      config.AuthConfig
	now      func() time.Time
}

// New создаёт новый экземпляр Service.
func New(deps Deps, cfg config.AuthConfig) *Service {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}

	if cfg.DefaultRole == "" {
		cfg.DefaultRole = "USER"
	}

	return &Service{
		users:    deps.Users,
		userSvc:  deps.UserSvc,
		codes:    deps.Codes,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
		mail:     deps.Mail,
		metrics:  deps.Metrics,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// observe пишет исход операции в метрики и лог.
func (s *Service) observe(ctx context.Context, operation string, err error) {
	if err == nil {
		s.metrics.AuthEvent(operation, metrics.ResultSuccess, "")
		return
	}

	kind := autherr.KindOf(err)
	s.metrics.AuthEvent(operation, metrics.ResultFailure, kind.String())

	lg := log.From(ctx)
	if kind == autherr.Internal {
		lg.Error(operation+"_failed", slog.String("err", err.Error()))
		return
	}

	lg.Info(operation+"_rejected", slog.String("kind", kind.String()))
}
