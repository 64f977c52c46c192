package models

import "time"

// UserStatus — состояние учётной записи.
type UserStatus int16

const (
	UserStatusDisabled UserStatus = 0
	UserStatusEnabled  UserStatus = 1
)

// User - модель пользователя в системе.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Nickname     string
	AvatarURL    string
	Status       UserStatus
	Deleted      bool
	LastLoginAt  *time.Time
	LastLoginIP  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Enabled сообщает, разрешён ли вход.
func (u *User) Enabled() bool {
	return u.Status == UserStatusEnabled
}

// UserInfo — материализованный снимок пользователя, который отдаётся
// клиенту и кэшируется в сессионном кэше.
type UserInfo struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Nickname  string   `json:"nickname"`
	AvatarURL string   `json:"avatar,omitempty"`
	Roles     []string `json:"roles"`
	Guest     bool     `json:"guest"`
}

// Preferences — пользовательские настройки по умолчанию.
type Preferences struct {
	UserID   int64
	Theme    string
	Language string
}
