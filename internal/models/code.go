package models

import (
	"fmt"
	"time"
)

// CodePurpose — назначение кода подтверждения.
type CodePurpose string

const (
	PurposeRegister CodePurpose = "register"
	PurposeReset    CodePurpose = "reset"
)

// ParsePurpose разбирает назначение кода из строки запроса.
func ParsePurpose(s string) (CodePurpose, error) {
	switch p := CodePurpose(s); p {
	case PurposeRegister, PurposeReset:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported code purpose %q", s)
	}
}

// VerificationCode — выданный код подтверждения e-mail.
// Строки никогда не удаляются: использованный код помечается Used.
type VerificationCode struct {
	ID        int64
	Email     string
	Code      string
	Purpose   CodePurpose
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active сообщает, можно ли ещё принять код в момент now.
func (c *VerificationCode) Active(now time.Time) bool {
	return !c.Used && now.Before(c.ExpiresAt)
}
