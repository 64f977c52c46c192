// ratelimit — presence-based cooldown поверх общего кэша.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/cache"
)

// DefaultCooldown — пауза между отправками кода.
const DefaultCooldown = 60 * time.Second

// Limiter выдаёт не более одного разрешения на (identity, action) за окно cooldown.
// SET NX атомарен в Redis.
type Limiter struct {
	cache    cache.Cache
	cooldown time.Duration
}

// New создаёт Limiter. cooldown<=0 заменяется на DefaultCooldown.
func New(c cache.Cache, cooldown time.Duration) *Limiter {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	return &Limiter{cache: c, cooldown: cooldown}
}

// Key возвращает ключ маркера (без префикса кэша).
func Key(identity, action string) string {
	return "rl:" + action + ":" + identity
}

// TryAcquire ставит маркер, если его нет. false — окно ещё не истекло.
// Ошибка кэша возвращается как есть: запрос не пропускается молча.
func (l *Limiter) TryAcquire(ctx context.Context, identity, action string) (bool, error) {
	const op = "ratelimit.TryAcquire"

	ok, err := l.cache.SetNX(ctx, Key(identity, action), "1", l.cooldown)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Release снимает маркер досрочно.
func (l *Limiter) Release(ctx context.Context, identity, action string) error {
	const op = "ratelimit.Release"

	if err := l.cache.Delete(ctx, Key(identity, action)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
