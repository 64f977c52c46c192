package handlers

import (
	"net/http"

	"github.com/pribylovaa/gamehub-auth/internal/service"
	apierrors "github.com/pribylovaa/gamehub-auth/internal/transport/http/errors"
)

const headerAuthorization = "Authorization"

func (h *Handlers) SendCode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.Auth.SendCode(r.Context(), q.Get("email"), q.Get("type")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errBadBody("handlers.Register", err))
		return
	}

	err := h.Auth.Register(r.Context(), service.RegisterInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Code:     in.VerificationCode,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errBadBody("handlers.Login", err))
		return
	}

	pair, err := h.Auth.Login(r.Context(), service.LoginInput{
		Email:    in.Email,
		Password: in.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, tokenResponse(pair))
}

func (h *Handlers) GuestLogin(w http.ResponseWriter, r *http.Request) {
	pair, err := h.Auth.GuestLogin(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, tokenResponse(pair))
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	pair, err := h.Auth.RefreshToken(r.Context(), r.URL.Query().Get("refreshToken"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, tokenResponse(pair))
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SendPasswordResetCode(r.Context(), r.URL.Query().Get("email")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.Auth.ResetPassword(r.Context(), q.Get("email"), q.Get("code"), q.Get("newPassword")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.Auth.ChangePassword(r.Context(), r.Header.Get(headerAuthorization), q.Get("oldPassword"), q.Get("newPassword"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

// Logout всегда отвечает 200, кроме сбоя кэша при записи blacklist.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context(), r.Header.Get(headerAuthorization)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, nil)
}

func (h *Handlers) ValidateToken(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.Auth.ValidateToken(r.Context(), r.Header.Get(headerAuthorization)))
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	info, err := h.Auth.GetProfile(r.Context(), r.Header.Get(headerAuthorization))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeOK(w, info)
}
