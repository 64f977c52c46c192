package models

import "time"

// TokenKind — тип токена.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims — разобранное содержимое подписанного токена.
type Claims struct {
	ID        string
	Subject   Subject
	Username  string
	Email     string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair - пара токенов, выдаваемая при входе и обновлении.
type TokenPair struct {
	// AccessToken — короткоживущий JWT для авторизации запросов.
	AccessToken string
	// RefreshToken — долгоживущий JWT для выпуска новой пары.
	RefreshToken string
	// ExpiresIn — время жизни access-токена в секундах.
	ExpiresIn int64
	// UserInfo — снимок пользователя на момент выдачи.
	UserInfo *UserInfo
}
