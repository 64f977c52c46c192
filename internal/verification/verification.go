// verification выдаёт, проверяет и гасит одноразовые коды подтверждения e-mail.
//
// Хранилище кодов авторитетно; кэш только зеркалирует последний код
// для (purpose, email) и ускоряет Verify. Если кэш недоступен или
// содержит другой код, Verify всегда идёт в хранилище.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/redact"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
)

const (
	DefaultTTL    = 10 * time.Minute
	DefaultLength = 6
)

// UserChecker — проверка существования аккаунта по e-mail.
type UserChecker interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
}

// Sender доставляет код пользователю.
type Sender interface {
	SendRegistrationCode(ctx context.Context, email, code string) error
	SendPasswordResetCode(ctx context.Context, email, code string) error
}

// RateLimiter — cooldown на отправку кода.
type RateLimiter interface {
	TryAcquire(ctx context.Context, identity, action string) (bool, error)
	Release(ctx context.Context, identity, action string) error
}

// Config — параметры кодов.
type Config struct {
	TTL    time.Duration
	Length int
}

// Manager управляет жизненным циклом кодов подтверждения.
type Manager struct {
	codes   storage.CodeStorage
	cache   cache.Cache
	limiter RateLimiter
	users   UserChecker
	sender  Sender

	ttl      time.Duration
	length   int
	now      func() time.Time
	generate func(length int) string
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGenerator подменяет генератор кодов.
func WithGenerator(gen func(length int) string) Option {
	return func(m *Manager) { m.generate = gen }
}

// New создаёт Manager.
func New(codes storage.CodeStorage, c cache.Cache, limiter RateLimiter, users UserChecker, sender Sender, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		codes:    codes,
		cache:    c,
		limiter:  limiter,
		users:    users,
		sender:   sender,
		ttl:      cfg.TTL,
		length:   cfg.Length,
		now:      func() time.Time { return time.Now().UTC() },
		generate: RandomCode,
	}

	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}

	if m.length <= 0 {
		m.length = DefaultLength
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// CodeKey — ключ зеркала кода в кэше (без префикса кэша).
func CodeKey(purpose models.CodePurpose, email string) string {
	return "code:" + string(purpose) + ":" + email
}

// RandomCode генерирует числовой код с ведущими нулями.
func RandomCode(length int) string {
	var b strings.Builder
	b.Grow(length)

	for range length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}

	return b.String()
}

// Issue выдаёт новый код для (email, purpose) и отправляет его на почту.
// Ошибка доставки возвращается как DeliveryFailed, хотя строка уже сохранена.
func (m *Manager) Issue(ctx context.Context, email string, purpose models.CodePurpose) (string, error) {
	const op = "verification.Issue"

	lg := log.From(ctx).With(slog.String("op", op))

	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return "", autherr.Field(autherr.MalformedInput, op, "email", "邮箱格式不正确")
	}

	if _, err := models.ParsePurpose(string(purpose)); err != nil {
		return "", autherr.Field(autherr.MalformedInput, op, "type", "不支持的验证码类型")
	}

	if purpose == models.PurposeRegister {
		exists, err := m.users.CheckEmailExists(ctx, email)
		if err != nil {
			return "", autherr.Wrap(autherr.Internal, op, "检查邮箱失败", err)
		}

		if exists {
			return "", autherr.Field(autherr.Conflict, op, "email", "该邮箱已被注册")
		}
	}

	ok, err := m.limiter.TryAcquire(ctx, email, string(purpose))
	if err != nil {
		return "", autherr.Wrap(autherr.Internal, op, "频率检查失败", err)
	}

	if !ok {
		lg.Info("code_rate_limited", slog.String("email", redact.Email(email)), slog.String("purpose", string(purpose)))
		return "", autherr.New(autherr.RateLimited, op, "验证码发送过于频繁，请稍后再试")
	}

	now := m.now()
	code := &models.VerificationCode{
		Email:     email,
		Code:      m.generate(m.length),
		Purpose:   purpose,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}

	if err := m.codes.SaveCode(ctx, code); err != nil {
		// Код не выдан: снимаем cooldown, чтобы пользователь мог повторить.
		if rerr := m.limiter.Release(ctx, email, string(purpose)); rerr != nil {
			lg.Warn("rate_limit_release_failed", slog.String("err", rerr.Error()))
		}

		return "", autherr.Wrap(autherr.Internal, op, "保存验证码失败", err)
	}

	// В зеркале не должен остаться предыдущий код: без записи ключ удаляется.
	if err := m.cache.Set(ctx, CodeKey(purpose, email), code.Code, m.ttl); err != nil {
		lg.Warn("code_mirror_write_failed", slog.String("err", err.Error()))

		if derr := m.cache.Delete(ctx, CodeKey(purpose, email)); derr != nil {
			if rerr := m.limiter.Release(ctx, email, string(purpose)); rerr != nil {
				lg.Warn("rate_limit_release_failed", slog.String("err", rerr.Error()))
			}

			return "", autherr.Wrap(autherr.Internal, op, "保存验证码失败", errors.Join(err, derr))
		}
	}

	if err := m.send(ctx, email, code.Code, purpose); err != nil {
		lg.Error("code_delivery_failed",
			slog.String("email", redact.Email(email)),
			slog.String("purpose", string(purpose)),
			slog.String("err", err.Error()),
		)

		return "", autherr.Wrap(autherr.DeliveryFailed, op, "验证码发送失败", err)
	}

	lg.Info("code_issued",
		slog.String("email", redact.Email(email)),
		slog.String("purpose", string(purpose)),
		slog.Int64("code_id", code.ID),
	)

	return code.Code, nil
}

func (m *Manager) send(ctx context.Context, email, code string, purpose models.CodePurpose) error {
	switch purpose {
	case models.PurposeReset:
		return m.sender.SendPasswordResetCode(ctx, email, code)
	default:
		return m.sender.SendRegistrationCode(ctx, email, code)
	}
}

// Verify проверяет код. Сначала смотрит зеркало в кэше; при промахе,
// несовпадении или ошибке кэша сверяет с самым новым действующим кодом в хранилище.
// Ошибка хранилища возвращается: без него проверка невозможна.
func (m *Manager) Verify(ctx context.Context, email, code string, purpose models.CodePurpose) (bool, error) {
	const op = "verification.Verify"

	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return false, nil
	}

	cached, ok, err := m.cache.Get(ctx, CodeKey(purpose, email))
	switch {
	case err != nil:
		log.From(ctx).Warn("code_mirror_read_failed", slog.String("op", op), slog.String("err", err.Error()))
	case ok && cached == code:
		return true, nil
	}

	latest, err := m.codes.LatestActiveCode(ctx, email, purpose, m.now())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return latest.Code == code, nil
}

// Consume гасит код: удаляет зеркало и помечает строку использованной.
// Повторный вызов ничего не меняет и не возвращает ошибку.
// Если зеркало удалить не удалось, строка всё равно помечается, но
// возвращается Internal: до истечения TTL кэш ещё принимает этот код.
func (m *Manager) Consume(ctx context.Context, email, code string, purpose models.CodePurpose) error {
	const op = "verification.Consume"

	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	mirrorErr := m.cache.Delete(ctx, CodeKey(purpose, email))

	marked, err := m.codes.MarkUsed(ctx, email, code, purpose)
	if err != nil {
		return fmt.Errorf("%s: %w", op, errors.Join(err, mirrorErr))
	}

	if mirrorErr != nil {
		return autherr.Wrap(autherr.Internal, op, "验证码作废失败", mirrorErr)
	}

	if !marked {
		log.From(ctx).Debug("code_already_consumed", slog.String("op", op), slog.String("email", redact.Email(email)))
	}

	return nil
}
