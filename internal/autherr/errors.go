// autherr задаёт закрытый набор видов ошибок auth-домена.
//
// Компоненты (коды подтверждения, токены, сценарии auth) возвращают *Error
// с заполненным Kind; транспорт выбирает HTTP-статус по Kind через KindOf
// и никогда не разбирает текст сообщения.
//
// errors.Is(err, autherr.ErrNotFound) сравнивает только Kind, поэтому
// экспортированные значения Err* работают как привычные sentinel-ошибки.
package autherr

import (
	"errors"
	"fmt"
)

// Kind — вид ошибки.
type Kind uint8

const (
	// Internal — непредвиденная ошибка инфраструктуры (БД, кэш и т.п.).
	Internal Kind = iota
	// MalformedInput — некорректный e-mail, пустые поля, неподдерживаемый тип кода.
	MalformedInput
	// Conflict — e-mail или имя пользователя уже заняты.
	Conflict
	// NotFound — нет аккаунта для e-mail или subject.
	NotFound
	// InvalidCredential — неверный пароль.
	InvalidCredential
	// AccountDisabled — аккаунт заблокирован.
	AccountDisabled
	// EmailUnverified — e-mail аккаунта не подтверждён.
	EmailUnverified
	// CodeInvalidOrExpired — код подтверждения неверен, использован или истёк.
	CodeInvalidOrExpired
	// RateLimited — повторная отправка кода раньше окончания паузы.
	RateLimited
	// TokenInvalid — токен повреждён, не подписан или не разбирается.
	TokenInvalid
	// TokenExpired — срок действия токена истёк.
	TokenExpired
	// TokenBlacklisted — токен отозван. Наружу отдаётся как TokenInvalid.
	TokenBlacklisted
	// DeliveryFailed — почтовый шлюз не смог отправить письмо.
	DeliveryFailed
)

var kindNames = [...]string{
	Internal:             "internal",
	MalformedInput:       "malformed_input",
	Conflict:             "conflict",
	NotFound:             "not_found",
	InvalidCredential:    "invalid_credential",
	AccountDisabled:      "account_disabled",
	EmailUnverified:      "email_unverified",
	CodeInvalidOrExpired: "code_invalid_or_expired",
	RateLimited:          "rate_limited",
	TokenInvalid:         "token_invalid",
	TokenExpired:         "token_expired",
	TokenBlacklisted:     "token_blacklisted",
	DeliveryFailed:       "delivery_failed",
}

// String возвращает стабильное машиночитаемое имя вида.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error — типизированная ошибка auth-домена.
type Error struct {
	Kind Kind
	// Op — операция, в которой возникла ошибка (service.auth.Login и т.п.).
	Op string
	// Field — поле запроса, к которому относится ошибка (для MalformedInput/Conflict).
	Field string
	// Msg — безопасное сообщение для пользователя.
	Msg string
	// Err — исходная причина, если есть.
	Err error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}

	if e.Op != "" {
		msg = e.Op + ": " + msg
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// Sentinel-значения для errors.Is.
var (
	ErrInternal             = &Error{Kind: Internal}
	ErrMalformedInput       = &Error{Kind: MalformedInput}
	ErrConflict             = &Error{Kind: Conflict}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrInvalidCredential    = &Error{Kind: InvalidCredential}
	ErrAccountDisabled      = &Error{Kind: AccountDisabled}
	ErrEmailUnverified      = &Error{Kind: EmailUnverified}
	ErrCodeInvalidOrExpired = &Error{Kind: CodeInvalidOrExpired}
	ErrRateLimited          = &Error{Kind: RateLimited}
	ErrTokenInvalid         = &Error{Kind: TokenInvalid}
	ErrTokenExpired         = &Error{Kind: TokenExpired}
	ErrTokenBlacklisted     = &Error{Kind: TokenBlacklisted}
	ErrDeliveryFailed       = &Error{Kind: DeliveryFailed}
)

// New создаёт ошибку вида kind с пользовательским сообщением.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Field создаёт ошибку, привязанную к полю запроса.
func Field(kind Kind, op, field, msg string) *Error {
	return &Error{Kind: kind, Op: op, Field: field, Msg: msg}
}

// Wrap оборачивает причину err в ошибку вида kind.
func Wrap(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// KindOf возвращает вид первой *Error в цепочке или Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

// As возвращает первую *Error в цепочке.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
