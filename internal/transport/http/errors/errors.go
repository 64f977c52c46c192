// errors стандартизирует ответы об ошибках HTTP-слоя auth-сервиса.
// На вход он принимает ошибку сценария (*autherr.Error в цепочке),
// а на выход даёт:
//   - HTTP-статус по виду ошибки;
//   - стабильный машиночитаемый code;
//   - безопасное сообщение без внутренних деталей.
//
// Отозванный токен отдаётся ровно так же, как недействительный:
// клиент не должен отличать blacklist от битой подписи.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

const (
	msgInternal     = "服务器内部错误"
	msgTokenInvalid = "令牌无效"
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// Field — поле запроса, к которому относится ошибка (если известно).
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - отмена/дедлайн контекста без *autherr.Error — 499/504;
//   - *autherr.Error — статус по Kind, сообщение из Msg;
//   - прочее — 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, internal()
	}

	ae, ok := autherr.As(err)
	if !ok {
		switch {
		case errors.Is(err, context.Canceled):
			return StatusClientClosedRequest, ErrorResponse{Error: APIError{Code: "canceled", Message: "canceled"}}
		case errors.Is(err, context.DeadlineExceeded):
			return http.StatusGatewayTimeout, ErrorResponse{Error: APIError{Code: "deadline_exceeded", Message: "deadline exceeded"}}
		default:
			return http.StatusInternalServerError, internal()
		}
	}

	kind := ae.Kind
	msg := ae.Msg

	switch kind {
	case autherr.Internal:
		return http.StatusInternalServerError, internal()
	case autherr.TokenBlacklisted:
		kind, msg = autherr.TokenInvalid, msgTokenInvalid
	}

	if msg == "" {
		msg = kind.String()
	}

	return StatusOf(kind), ErrorResponse{
		Error: APIError{
			Code:    kind.String(),
			Message: msg,
			Field:   ae.Field,
		},
	}
}

// StatusOf — таблица Kind -> HTTP-статус.
func StatusOf(kind autherr.Kind) int {
	switch kind {
	case autherr.MalformedInput, autherr.CodeInvalidOrExpired:
		return http.StatusBadRequest
	case autherr.Conflict:
		return http.StatusConflict
	case autherr.NotFound:
		return http.StatusNotFound
	case autherr.InvalidCredential, autherr.TokenInvalid, autherr.TokenExpired, autherr.TokenBlacklisted:
		return http.StatusUnauthorized
	case autherr.AccountDisabled, autherr.EmailUnverified:
		return http.StatusForbidden
	case autherr.RateLimited:
		return http.StatusTooManyRequests
	case autherr.DeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func internal() ErrorResponse {
	return ErrorResponse{Error: APIError{Code: autherr.Internal.String(), Message: msgInternal}}
}
