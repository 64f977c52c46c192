package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
)

// SaveCode сохраняет новый код подтверждения.
func (s *Storage) SaveCode(ctx context.Context, code *models.VerificationCode) error {
	const op = "storage.postgres.SaveCode"

	query := `
		INSERT INTO verification_codes(email, code, purpose, used, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		code.Email,
		code.Code,
		string(code.Purpose),
		code.Used,
		code.ExpiresAt,
		code.CreatedAt,
	).Scan(&code.ID)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LatestActiveCode возвращает самый новый действующий код для (email, purpose).
// Более старые неиспользованные коды не рассматриваются.
func (s *Storage) LatestActiveCode(ctx context.Context, email string, purpose models.CodePurpose, now time.Time) (*models.VerificationCode, error) {
	const op = "storage.postgres.LatestActiveCode"

	query := `
		SELECT id, email, code, purpose, used, expires_at, created_at
		FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND used = FALSE AND expires_at > $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var (
		c    models.VerificationCode
		purp string
	)
	err := s.db.QueryRow(ctx, query, email, string(purpose), now).Scan(
		&c.ID,
		&c.Email,
		&c.Code,
		&purp,
		&c.Used,
		&c.ExpiresAt,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.Purpose = models.CodePurpose(purp)

	return &c, nil
}

// MarkUsed помечает использованным самый новый неиспользованный код с таким значением.
func (s *Storage) MarkUsed(ctx context.Context, email, code string, purpose models.CodePurpose) (bool, error) {
	const op = "storage.postgres.MarkUsed"

	query := `
		UPDATE verification_codes
		SET used = TRUE
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE email = $1 AND code = $2 AND purpose = $3 AND used = FALSE
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
	`

	tag, err := s.db.Exec(ctx, query, email, code, string(purpose))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected() > 0, nil
}
