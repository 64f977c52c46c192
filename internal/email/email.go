// email — почтовый шлюз для кодов подтверждения и приветственных писем.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/redact"
)

// ErrSMTPNotConfigured — SMTP не настроен вне env=local.
var ErrSMTPNotConfigured = errors.New("smtp is not configured")

// Gateway доставляет письма пользователю.
type Gateway interface {
	SendRegistrationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
	SendWelcomeEmail(ctx context.Context, email, username string) error
}

// NewGateway выбирает шлюз по окружению. LogGateway допустим только в env=local
// и только при пустом SMTP Host; в остальных окружениях пустой Host — ошибка.
func NewGateway(env string, cfg SMTPConfig, lg *slog.Logger) (Gateway, error) {
	const op = "email.NewGateway"

	if cfg.Host != "" {
		return NewSMTPGateway(cfg), nil
	}

	if env != log.EnvLocal {
		return nil, fmt.Errorf("%s: env %q: %w", op, env, ErrSMTPNotConfigured)
	}

	lg.Warn("smtp_disabled_using_log_gateway")
	return NewLogGateway(lg), nil
}

// LogGateway ничего не отправляет, а пишет письма в лог. Используется в env=local.
type LogGateway struct {
	log *slog.Logger
}

// Проверка на соответствие интерфейсу Gateway.
var _ Gateway = (*LogGateway)(nil)

// NewLogGateway создаёт LogGateway.
func NewLogGateway(lg *slog.Logger) *LogGateway {
	return &LogGateway{log: lg}
}

// SendRegistrationCode пишет код в лог открытым текстом.
func (g *LogGateway) SendRegistrationCode(ctx context.Context, email, code string) error {
	g.log.InfoContext(ctx, "email_registration_code",
		slog.String("email", redact.Email(email)),
		slog.String("code", code),
	)
	return nil
}

func (g *LogGateway) SendPasswordResetCode(ctx context.Context, email, code string) error {
	g.log.InfoContext(ctx, "email_password_reset_code",
		slog.String("email", redact.Email(email)),
		slog.String("code", code),
	)
	return nil
}

func (g *LogGateway) SendWelcomeEmail(ctx context.Context, email, username string) error {
	g.log.InfoContext(ctx, "email_welcome",
		slog.String("email", redact.Email(email)),
		slog.String("username", username),
	)
	return nil
}
