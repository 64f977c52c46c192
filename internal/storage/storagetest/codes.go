// storagetest — in-memory реализации хранилищ для unit-тестов.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
)

// Codes — CodeStorage в памяти с той же семантикой выборки, что и postgres:
// учитывается только самая новая действующая строка.
type Codes struct {
	mu   sync.Mutex
	rows []models.VerificationCode
	// Err, если задан, возвращается всеми методами.
	Err error
}

var _ storage.CodeStorage = (*Codes)(nil)

func (c *Codes) SaveCode(_ context.Context, code *models.VerificationCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}

	code.ID = int64(len(c.rows) + 1)
	c.rows = append(c.rows, *code)

	return nil
}

func (c *Codes) LatestActiveCode(_ context.Context, email string, purpose models.CodePurpose, now time.Time) (*models.VerificationCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}

	for i := len(c.rows) - 1; i >= 0; i-- {
		r := c.rows[i]
		if r.Email == email && r.Purpose == purpose && r.Active(now) {
			return &r, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (c *Codes) MarkUsed(_ context.Context, email, code string, purpose models.CodePurpose) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return false, c.Err
	}

	for i := len(c.rows) - 1; i >= 0; i-- {
		r := &c.rows[i]
		if r.Email == email && r.Code == code && r.Purpose == purpose && !r.Used {
			r.Used = true
			return true, nil
		}
	}

	return false, nil
}

// Rows возвращает копию всех строк.
func (c *Codes) Rows() []models.VerificationCode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]models.VerificationCode(nil), c.rows...)
}
