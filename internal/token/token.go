// token выпускает и проверяет подписанные JWT (HS256) и ведёт
// TTL-ограниченный blacklist отозванных токенов в общем кэше.
//
// Гостевые и обычные токены проходят один и тот же путь: разница только
// в subject, который кладёт в claims вызывающий код.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/config"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
)

const (
	bearerPrefix = "Bearer "
	// leeway — допуск по времени при проверке exp/nbf.
	leeway = 5 * time.Second
)

// SessionInvalidator сбрасывает закэшированный снимок пользователя.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, subject models.Subject) error
}

type tokenClaims struct {
	UserID   int64            `json:"uid"`
	Username string           `json:"username,omitempty"`
	Email    string           `json:"email,omitempty"`
	Kind     models.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Service — выпуск, разбор и отзыв токенов.
type Service struct {
	cfg      config.AuthConfig
	cache    cache.Cache
	sessions SessionInvalidator
	now      func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New создаёт Service.
func New(cfg config.AuthConfig, c cache.Cache, sessions SessionInvalidator, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		cache:    c,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AccessTTL — время жизни access-токена.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTokenTTL }

// IssueAccessToken выпускает access-токен.
func (s *Service) IssueAccessToken(subject models.Subject, username, email string) (string, error) {
	const op = "token.IssueAccessToken"

	signed, err := s.sign(tokenClaims{
		UserID:   subject.ClaimValue(),
		Username: username,
		Email:    email,
		Kind:     models.TokenAccess,
	}, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// IssueRefreshToken выпускает refresh-токен.
func (s *Service) IssueRefreshToken(subject models.Subject) (string, error) {
	const op = "token.IssueRefreshToken"

	signed, err := s.sign(tokenClaims{
		UserID: subject.ClaimValue(),
		Kind:   models.TokenRefresh,
	}, s.cfg.RefreshTokenTTL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func (s *Service) sign(claims tokenClaims, ttl time.Duration) (string, error) {
	now := s.now()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(claims.UserID, 10),
		Issuer:    s.cfg.Issuer,
		Audience:  jwt.ClaimStrings(s.cfg.Audience),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

// Parse проверяет подпись, алгоритм, exp, iss и aud. Blacklist не смотрит.
func (s *Service) Parse(raw string) (*models.Claims, error) {
	const op = "token.Parse"

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherr.Wrap(autherr.TokenExpired, op, "令牌已过期", err)
		}

		return nil, autherr.Wrap(autherr.TokenInvalid, op, "令牌无效", err)
	}

	if !token.Valid || (claims.Kind != models.TokenAccess && claims.Kind != models.TokenRefresh) {
		return nil, autherr.New(autherr.TokenInvalid, op, "令牌无效")
	}

	out := &models.Claims{
		ID:       claims.ID,
		Subject:  models.SubjectFromClaim(claims.UserID),
		Username: claims.Username,
		Email:    claims.Email,
		Kind:     claims.Kind,
	}

	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}

	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}

	return out, nil
}

// ParseKind — Parse с проверкой вида токена.
func (s *Service) ParseKind(raw string, kind models.TokenKind) (*models.Claims, error) {
	const op = "token.ParseKind"

	claims, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}

	if claims.Kind != kind {
		return nil, autherr.New(autherr.TokenInvalid, op, "令牌类型错误")
	}

	return claims, nil
}

// ExtractBearer вырезает токен из заголовка Authorization.
// ok=false, если префикса "Bearer " нет или токен пустой.
func ExtractBearer(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return "", false
	}

	return raw, true
}

// BlacklistKey — ключ записи blacklist (без префикса кэша).
func BlacklistKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "bl:" + base64.RawURLEncoding.EncodeToString(sum[:])
}

// IsBlacklisted сообщает, отозван ли токен.
func (s *Service) IsBlacklisted(ctx context.Context, raw string) (bool, error) {
	const op = "token.IsBlacklisted"

	ok, err := s.cache.Exists(ctx, BlacklistKey(raw))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Authenticate разбирает заголовок Authorization и возвращает claims
// действующего access-токена. Refresh-токен с валидной подписью и exp
// отклоняется как TokenInvalid. Ошибка кэша при проверке blacklist
// возвращается как Internal: без проверки токен не принимается.
func (s *Service) Authenticate(ctx context.Context, header string) (*models.Claims, error) {
	const op = "token.Authenticate"

	raw, ok := ExtractBearer(header)
	if !ok {
		return nil, autherr.New(autherr.TokenInvalid, op, "缺少访问令牌")
	}

	revoked, err := s.IsBlacklisted(ctx, raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.Internal, op, "令牌校验失败", err)
	}

	if revoked {
		return nil, autherr.New(autherr.TokenBlacklisted, op, "令牌已失效")
	}

	return s.ParseKind(raw, models.TokenAccess)
}

// Validate — булева форма Authenticate: true только для access-токена
// с "Bearer ", не отозванного и с валидными подписью и exp.
// Refresh-токен даёт false, даже если он ещё не истёк.
func (s *Service) Validate(ctx context.Context, header string) bool {
	_, err := s.Authenticate(ctx, header)
	return err == nil
}

// Blacklist отзывает токен из заголовка до его естественного истечения
// и сбрасывает закэшированный снимок subject.
// Заголовок без "Bearer ", неразбираемый или уже истёкший токен — no-op.
func (s *Service) Blacklist(ctx context.Context, header string) error {
	const op = "token.Blacklist"

	lg := log.From(ctx).With(slog.String("op", op))

	raw, ok := ExtractBearer(header)
	if !ok {
		return nil
	}

	claims, err := s.Parse(raw)
	if err != nil {
		lg.Debug("blacklist_skip_unparsable", slog.String("kind", autherr.KindOf(err).String()))
		return nil
	}

	// Parse принимает токен до exp+leeway, столько же живёт запись.
	ttl := claims.ExpiresAt.Add(leeway).Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Set(ctx, BlacklistKey(raw), "1", ttl); err != nil {
		return autherr.Wrap(autherr.Internal, op, "注销失败", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Invalidate(ctx, claims.Subject); err != nil {
			lg.Warn("session_invalidate_failed", slog.String("err", err.Error()))
		}
	}

	lg.Info("token_blacklisted",
		slog.String("subject", claims.Subject.String()),
		slog.String("jti", claims.ID),
		slog.Duration("ttl", ttl),
	)

	return nil
}
