// handlers — HTTP-обработчики публичного auth API.
// Обработчики только разбирают запрос и формируют ответ; вся логика
// живёт в service.Service за интерфейсом AuthService.
package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/service"
)

// AuthService — сценарии auth, которые обслуживает HTTP-слой.
type AuthService interface {
	SendCode(ctx context.Context, email, typ string) error
	Register(ctx context.Context, in service.RegisterInput) error
	Login(ctx context.Context, in service.LoginInput) (*models.TokenPair, error)
	GuestLogin(ctx context.Context) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	SendPasswordResetCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, authHeader, oldPassword, newPassword string) error
	Logout(ctx context.Context, authHeader string) error
	ValidateToken(ctx context.Context, authHeader string) bool
	GetProfile(ctx context.Context, authHeader string) (*models.UserInfo, error)
}

var _ AuthService = (*service.Service)(nil)

// Handlers агрегирует зависимости.
type Handlers struct {
	Auth AuthService
}

func New(auth AuthService) *Handlers {
	return &Handlers{Auth: auth}
}

// envelope — успешный ответ.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// writeOK — 200 в едином конверте. Ошибки выводим через apierrors.WriteError.
func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Code: http.StatusOK, Message: "success", Data: data})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errBadBody — локальная ошибка разбора тела запроса.
func errBadBody(op string, err error) error {
	return autherr.Wrap(autherr.MalformedInput, op, "请求体格式不正确", err)
}

// clientIP — адрес клиента. X-Forwarded-For/X-Real-IP уже учтены chi RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
