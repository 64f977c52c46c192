package token

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/config"
	"github.com/pribylovaa/gamehub-auth/internal/models"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-test-secret",
		AccessTokenTTL:  2 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Issuer:          "gamehub-auth",
		Audience:        []string{"gamehub"},
	}
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type recordingSessions struct{ dropped []models.Subject }

func (r *recordingSessions) Invalidate(_ context.Context, s models.Subject) error {
	r.dropped = append(r.dropped, s)
	return nil
}

type fixture struct {
	svc      *Service
	clk      *clock
	m        *miniredis.Miniredis
	sessions *recordingSessions
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clk := &clock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	sessions := &recordingSessions{}
	svc := New(testCfg(), cache.NewWithClient(rdb, "auth:"), sessions, WithClock(clk.Now))

	return &fixture{svc: svc, clk: clk, m: m, sessions: sessions}
}

func TestIssueAndParse_Access(t *testing.T) {
	f := newFixture(t)

	raw, err := f.svc.IssueAccessToken(models.Registered(42), "alice", "a@x.com")
	require.NoError(t, err)

	c, err := f.svc.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, models.TokenAccess, c.Kind)
	require.Equal(t, "alice", c.Username)
	require.Equal(t, "a@x.com", c.Email)
	require.NotEmpty(t, c.ID)

	id, ok := c.Subject.UserID()
	require.True(t, ok)
	require.EqualValues(t, 42, id)
	require.True(t, c.ExpiresAt.Equal(f.clk.t.Add(2*time.Hour)))
	require.True(t, c.IssuedAt.Equal(f.clk.t))
}

func TestIssueAndParse_GuestRefresh(t *testing.T) {
	f := newFixture(t)

	raw, err := f.svc.IssueRefreshToken(models.Guest())
	require.NoError(t, err)

	c, err := f.svc.ParseKind(raw, models.TokenRefresh)
	require.NoError(t, err)
	require.True(t, c.Subject.IsGuest())
	require.True(t, c.ExpiresAt.Equal(f.clk.t.Add(7*24*time.Hour)))

	_, err = f.svc.ParseKind(raw, models.TokenAccess)
	require.ErrorIs(t, err, autherr.ErrTokenInvalid)
}

func TestParse_Expired(t *testing.T) {
	f := newFixture(t)

	raw, err := f.svc.IssueAccessToken(models.Registered(1), "u", "")
	require.NoError(t, err)

	f.clk.t = f.clk.t.Add(2*time.Hour + time.Minute)

	_, err = f.svc.Parse(raw)
	require.ErrorIs(t, err, autherr.ErrTokenExpired)
	require.Equal(t, autherr.TokenExpired, autherr.KindOf(err))
}

func TestParse_Rejects(t *testing.T) {
	f := newFixture(t)
	now := f.clk.t

	sign := func(method jwt.SigningMethod, secret string, mutate func(jwt.MapClaims)) string {
		claims := jwt.MapClaims{
			"uid":  1,
			"kind": "access",
			"iss":  "gamehub-auth",
			"aud":  []string{"gamehub"},
			"iat":  now.Unix(),
			"exp":  now.Add(time.Hour).Unix(),
		}
		if mutate != nil {
			mutate(claims)
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not-a-jwt"},
		{name: "wrong_alg", raw: sign(jwt.SigningMethodHS512, "unit-test-secret", nil)},
		{name: "wrong_secret", raw: sign(jwt.SigningMethodHS256, "other", nil)},
		{name: "wrong_issuer", raw: sign(jwt.SigningMethodHS256, "unit-test-secret", func(c jwt.MapClaims) { c["iss"] = "evil" })},
		{name: "wrong_audience", raw: sign(jwt.SigningMethodHS256, "unit-test-secret", func(c jwt.MapClaims) { c["aud"] = []string{"other"} })},
		{name: "no_exp", raw: sign(jwt.SigningMethodHS256, "unit-test-secret", func(c jwt.MapClaims) { delete(c, "exp") })},
		{name: "unknown_kind", raw: sign(jwt.SigningMethodHS256, "unit-test-secret", func(c jwt.MapClaims) { c["kind"] = "admin" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Parse(tt.raw)
			require.ErrorIs(t, err, autherr.ErrTokenInvalid)
		})
	}
}

func TestExtractBearer(t *testing.T) {
	raw, ok := ExtractBearer("Bearer abc")
	require.True(t, ok)
	require.Equal(t, "abc", raw)

	for _, h := range []string{"", "abc", "bearer abc", "Bearer ", "Basic abc"} {
		_, ok := ExtractBearer(h)
		require.False(t, ok, h)
	}
}

func TestBlacklistKey_StableAndOpaque(t *testing.T) {
	k := BlacklistKey("token-value")
	require.Equal(t, k, BlacklistKey("token-value"))
	require.NotEqual(t, k, BlacklistKey("token-value2"))
	require.True(t, strings.HasPrefix(k, "bl:"))
	require.NotContains(t, k, "token-value")
}

func TestValidate_RequiresBearerPrefix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw, err := f.svc.IssueAccessToken(models.Registered(1), "u", "")
	require.NoError(t, err)

	require.True(t, f.svc.Validate(ctx, "Bearer "+raw))
	require.False(t, f.svc.Validate(ctx, raw))
}

func TestValidate_RejectsRefreshToken(t *testing.T) {
	f := newFixture(t)

	raw, err := f.svc.IssueRefreshToken(models.Registered(1))
	require.NoError(t, err)

	require.False(t, f.svc.Validate(context.Background(), "Bearer "+raw))

	_, err = f.svc.Authenticate(context.Background(), "Bearer "+raw)
	require.ErrorIs(t, err, autherr.ErrTokenInvalid)
}

func TestBlacklist_ThenValidateFalse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	raw, err := f.svc.IssueAccessToken(models.Registered(7), "u", "")
	require.NoError(t, err)
	header := "Bearer " + raw

	f.clk.t = f.clk.t.Add(30 * time.Minute)
	require.NoError(t, f.svc.Blacklist(ctx, header))

	// TTL = оставшееся время жизни токена (с допуском).
	require.Equal(t, 90*time.Minute+leeway, f.m.TTL("auth:"+BlacklistKey(raw)))
	require.Equal(t, []models.Subject{models.Registered(7)}, f.sessions.dropped)

	require.False(t, f.svc.Validate(ctx, header))
	_, err = f.svc.Authenticate(ctx, header)
	require.ErrorIs(t, err, autherr.ErrTokenBlacklisted)

	// Повторный отзыв — без ошибки.
	require.NoError(t, f.svc.Blacklist(ctx, header))

	// Запись истекает вместе с токеном, токен остаётся недействительным.
	f.m.FastForward(90*time.Minute + leeway)
	f.clk.t = f.clk.t.Add(90*time.Minute + leeway + time.Second)
	require.False(t, f.m.Exists("auth:"+BlacklistKey(raw)))

	_, err = f.svc.Authenticate(ctx, header)
	require.ErrorIs(t, err, autherr.ErrTokenExpired)
}

func TestBlacklist_NoOpCases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Blacklist(ctx, ""))
	require.NoError(t, f.svc.Blacklist(ctx, "garbage"))
	require.NoError(t, f.svc.Blacklist(ctx, "Bearer garbage"))

	raw, err := f.svc.IssueAccessToken(models.Registered(1), "u", "")
	require.NoError(t, err)
	f.clk.t = f.clk.t.Add(3 * time.Hour)
	require.NoError(t, f.svc.Blacklist(ctx, "Bearer "+raw))

	require.Empty(t, f.m.Keys())
	require.Empty(t, f.sessions.dropped)
}

func TestBlacklist_GuestToken(t *testing.T) {
	f := newFixture(t)

	raw, err := f.svc.IssueAccessToken(models.Guest(), "guest_1", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Blacklist(context.Background(), "Bearer "+raw))
	require.False(t, f.svc.Validate(context.Background(), "Bearer "+raw))
}

func TestAuthenticate_CacheDown_FailsClosed(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	svc := New(testCfg(), cache.NewWithClient(rdb, "auth:"), nil)
	raw, err := svc.IssueAccessToken(models.Registered(1), "u", "")
	require.NoError(t, err)

	m.Close()

	_, err = svc.Authenticate(context.Background(), "Bearer "+raw)
	require.Error(t, err)
	require.Equal(t, autherr.Internal, autherr.KindOf(err))
	require.False(t, svc.Validate(context.Background(), "Bearer "+raw))
}
