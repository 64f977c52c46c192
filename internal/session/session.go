// session — кэш материализованных UserInfo по id пользователя.
// Кэш не авторитетен: отсутствие записи ничего не блокирует.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/cache"
	"github.com/pribylovaa/gamehub-auth/internal/models"
)

// Cache хранит снимки UserInfo с TTL, равным времени жизни access-токена.
type Cache struct {
	cache cache.Cache
	ttl   time.Duration
}

// New создаёт сессионный кэш.
func New(c cache.Cache, ttl time.Duration) *Cache {
	return &Cache{cache: c, ttl: ttl}
}

// Key — ключ записи (без префикса кэша).
func Key(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

// Get возвращает снимок; ok=false при промахе или повреждённой записи.
func (c *Cache) Get(ctx context.Context, userID int64) (*models.UserInfo, bool, error) {
	const op = "session.Get"

	raw, ok, err := c.cache.Get(ctx, Key(userID))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return nil, false, nil
	}

	var info models.UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		// Битую запись считаем промахом, её перезапишет следующий Put.
		return nil, false, nil
	}

	return &info, true, nil
}

// Put сохраняет снимок. Гостевые снимки не кэшируются.
func (c *Cache) Put(ctx context.Context, info *models.UserInfo) error {
	const op = "session.Put"

	if info == nil || info.Guest {
		return nil
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.cache.Set(ctx, Key(info.ID), string(raw), c.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Invalidate удаляет снимок subject. Для гостя ничего не делает.
func (c *Cache) Invalidate(ctx context.Context, subject models.Subject) error {
	const op = "session.Invalidate"

	id, ok := subject.UserID()
	if !ok {
		return nil
	}

	if err := c.cache.Delete(ctx, Key(id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
