package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
)

const userColumns = `id, username, email, password_hash, nickname, avatar_url, status, deleted,
		last_login_at, last_login_ip, created_at, updated_at`

// SaveUser создает нового пользователя в БД.
func (s *Storage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users(username, email, password_hash, nickname, avatar_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.AvatarURL,
		int16(user.Status),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByEmail находит пользователя по email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted = FALSE`

	user, err := scanUser(s.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByUsername находит пользователя по имени.
func (s *Storage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.postgres.UserByUsername"

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted = FALSE`

	user, err := scanUser(s.db.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByID находит пользователя по ID.
func (s *Storage) UserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser обновляет изменяемые поля пользователя.
func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.UpdateUser"

	query := `
		UPDATE users
		SET password_hash = $2, nickname = $3, avatar_url = $4, status = $5, deleted = $6,
			last_login_at = $7, last_login_ip = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		user.ID,
		user.PasswordHash,
		user.Nickname,
		user.AvatarURL,
		int16(user.Status),
		user.Deleted,
		user.LastLoginAt,
		user.LastLoginIP,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// RolesByUserID возвращает коды ролей пользователя.
func (s *Storage) RolesByUserID(ctx context.Context, userID int64) ([]string, error) {
	const op = "storage.postgres.RolesByUserID"

	query := `
		SELECT r.code
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return roles, nil
}

// AssignRole назначает роль пользователю по коду роли.
func (s *Storage) AssignRole(ctx context.Context, userID int64, role string) error {
	const op = "storage.postgres.AssignRole"

	query := `
		INSERT INTO user_roles(user_id, role_id)
		SELECT $1, id FROM roles WHERE code = $2
		ON CONFLICT DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		// Либо роль уже назначена, либо такой роли нет.
		var exists bool
		if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM roles WHERE code = $1)`, role).Scan(&exists); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if !exists {
			return fmt.Errorf("%s: role %q: %w", op, role, storage.ErrNotFound)
		}
	}

	return nil
}

// SavePreferences создаёт настройки пользователя.
func (s *Storage) SavePreferences(ctx context.Context, prefs *models.Preferences) error {
	const op = "storage.postgres.SavePreferences"

	query := `
		INSERT INTO user_preferences(user_id, theme, language)
		VALUES ($1, $2, $3)
	`

	_, err := s.db.Exec(ctx, query, prefs.UserID, prefs.Theme, prefs.Language)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user   models.User
		status int16
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Nickname,
		&user.AvatarURL,
		&status,
		&user.Deleted,
		&user.LastLoginAt,
		&user.LastLoginIP,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	user.Status = models.UserStatus(status)

	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
