package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamehub-auth/internal/metrics"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/transport/http/handlers"
)

// guestOnly реализует только GuestLogin; остальные методы не вызываются.
type guestOnly struct {
	handlers.AuthService
}

func (guestOnly) GuestLogin(context.Context) (*models.TokenPair, error) {
	return &models.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60,
		UserInfo: &models.UserInfo{ID: models.GuestSubjectID, Guest: true}}, nil
}

func (guestOnly) ValidateToken(context.Context, string) bool { return true }

func TestRouter_OpsEndpoints(t *testing.T) {
	ready := false
	reg := prometheus.NewRegistry()

	r := NewRouter(guestOnly{}, Options{
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Ready:    func() bool { return ready },
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	ready = true
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), "gamehub_auth_http_requests_total"))
}

func TestRouter_BasePathAndRequestID(t *testing.T) {
	r := NewRouter(guestOnly{}, Options{BasePath: "/api"})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/guest-login", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	var env struct {
		Code int `json:"code"`
		Data struct {
			UserInfo struct {
				Guest bool `json:"guest"`
			} `json:"userInfo"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, 200, env.Code)
	require.True(t, env.Data.UserInfo.Guest)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/guest-login", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auth/validate", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
