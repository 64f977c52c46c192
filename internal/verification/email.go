package verification

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeEmail приводит адрес к каноническому виду для ключей кэша и БД.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail проверяет базовую форму адреса.
func ValidEmail(email string) bool {
	return email != "" && validate.Var(email, "required,email") == nil
}
