package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/gamehub-auth/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/код).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/username).
	ErrAlreadyExists = errors.New("already exists")
)

// CodeStorage хранит выданные коды подтверждения.
type CodeStorage interface {
	// SaveCode сохраняет новый код и заполняет его ID.
	SaveCode(ctx context.Context, code *models.VerificationCode) error
	// LatestActiveCode возвращает самый новый неиспользованный и неистёкший
	// код для пары (email, purpose) либо ErrNotFound.
	LatestActiveCode(ctx context.Context, email string, purpose models.CodePurpose, now time.Time) (*models.VerificationCode, error)
	// MarkUsed помечает использованным самый новый неиспользованный код
	// с указанным значением. false — подходящей строки нет.
	MarkUsed(ctx context.Context, email, code string, purpose models.CodePurpose) (bool, error)
}

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя и заполняет ID.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит неудалённого пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByUsername находит неудалённого пользователя по имени.
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	// UserByID находит пользователя по ID (включая удалённых).
	UserByID(ctx context.Context, id int64) (*models.User, error)
	// UpdateUser обновляет изменяемые поля пользователя по ID.
	UpdateUser(ctx context.Context, user *models.User) error
	// RolesByUserID возвращает коды ролей пользователя.
	RolesByUserID(ctx context.Context, userID int64) ([]string, error)
	// AssignRole назначает роль по её коду. Повторное назначение не ошибка.
	AssignRole(ctx context.Context, userID int64, role string) error
	// SavePreferences создаёт настройки пользователя.
	SavePreferences(ctx context.Context, prefs *models.Preferences) error
}

// Storage задает контракт работы с БД.
type Storage interface {
	UserStorage
	CodeStorage
	Ping(ctx context.Context) error
	Close()
}
