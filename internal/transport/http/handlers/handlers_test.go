package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/service"
)

type okEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func newRouter(t *testing.T) (http.Handler, *MockAuthService) {
	t.Helper()
	svc := NewMockAuthService(gomock.NewController(t))
	h := New(svc)

	r := chi.NewRouter()
	r.Post("/auth/send-code", h.SendCode)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/guest-login", h.GuestLogin)
	r.Post("/auth/refresh", h.RefreshToken)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/validate", h.ValidateToken)
	r.Get("/auth/profile", h.Profile)
	r.Put("/auth/change-password", h.ChangePassword)

	return r, svc
}

func do(h http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeOK(t *testing.T, rr *httptest.ResponseRecorder) okEnvelope {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var env okEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, 200, env.Code)
	require.Equal(t, "success", env.Message)
	return env
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder, status int) errEnvelope {
	t.Helper()
	require.Equal(t, status, rr.Code, rr.Body.String())
	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestSendCode_PassesQuery(t *testing.T) {
	r, svc := newRouter(t)

	svc.EXPECT().SendCode(gomock.Any(), "a@x.com", "register").Return(nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/send-code?email=a@x.com&type=register", "", nil))

	svc.EXPECT().SendCode(gomock.Any(), "a@x.com", "register").
		Return(autherr.New(autherr.RateLimited, "op", "验证码发送过于频繁，请稍后再试"))
	env := decodeErr(t, do(r, http.MethodPost, "/auth/send-code?email=a@x.com&type=register", "", nil), http.StatusTooManyRequests)
	require.Equal(t, "rate_limited", env.Error.Code)
}

func TestRegister_BodyMapping(t *testing.T) {
	r, svc := newRouter(t)

	svc.EXPECT().Register(gomock.Any(), service.RegisterInput{
		Username: "neo", Email: "a@x.com", Password: "secret1", Code: "013579",
	}).Return(nil)

	body := `{"username":"neo","email":"a@x.com","password":"secret1","verificationCode":"013579"}`
	decodeOK(t, do(r, http.MethodPost, "/auth/register", body, nil))
}

func TestRegister_UnknownFieldIsMalformed(t *testing.T) {
	r, _ := newRouter(t)

	env := decodeErr(t, do(r, http.MethodPost, "/auth/register", `{"username":"neo","admin":true}`, nil), http.StatusBadRequest)
	require.Equal(t, "malformed_input", env.Error.Code)

	env = decodeErr(t, do(r, http.MethodPost, "/auth/login", `{`, nil), http.StatusBadRequest)
	require.Equal(t, "malformed_input", env.Error.Code)
}

func TestLogin_ReturnsTokenShapeAndClientIP(t *testing.T) {
	r, svc := newRouter(t)

	pair := &models.TokenPair{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresIn:    7200,
		UserInfo:     &models.UserInfo{ID: 1, Username: "neo", Roles: []string{"USER"}},
	}
	svc.EXPECT().Login(gomock.Any(), service.LoginInput{
		Email: "a@x.com", Password: "secret1", ClientIP: "192.0.2.1",
	}).Return(pair, nil)

	env := decodeOK(t, do(r, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"secret1"}`, nil))

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, "acc", got["accessToken"])
	require.Equal(t, "ref", got["refreshToken"])
	require.EqualValues(t, 7200, got["expiresIn"])
	require.Contains(t, got, "userInfo")
}

func TestLogin_NotFound(t *testing.T) {
	r, svc := newRouter(t)

	svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, autherr.New(autherr.NotFound, "op", "用户不存在"))

	env := decodeErr(t, do(r, http.MethodPost, "/auth/login", `{"email":"missing@x.com","password":"x"}`, nil), http.StatusNotFound)
	require.Equal(t, "not_found", env.Error.Code)
	require.Equal(t, "用户不存在", env.Error.Message)
}

func TestGuestLoginAndRefresh(t *testing.T) {
	r, svc := newRouter(t)

	guest := &models.TokenPair{AccessToken: "g", RefreshToken: "gr", ExpiresIn: 7200, UserInfo: &models.UserInfo{ID: -1, Guest: true}}
	svc.EXPECT().GuestLogin(gomock.Any()).Return(guest, nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/guest-login", "", nil))

	svc.EXPECT().RefreshToken(gomock.Any(), "gr").Return(guest, nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/refresh?refreshToken=gr", "", nil))

	svc.EXPECT().RefreshToken(gomock.Any(), "revoked").Return(nil, autherr.New(autherr.TokenBlacklisted, "op", "令牌已失效"))
	env := decodeErr(t, do(r, http.MethodPost, "/auth/refresh?refreshToken=revoked", "", nil), http.StatusUnauthorized)
	require.Equal(t, "token_invalid", env.Error.Code)
}

func TestPasswordFlows(t *testing.T) {
	r, svc := newRouter(t)

	svc.EXPECT().SendPasswordResetCode(gomock.Any(), "a@x.com").Return(nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/forgot-password?email=a@x.com", "", nil))

	svc.EXPECT().ResetPassword(gomock.Any(), "a@x.com", "013579", "newpass1").Return(nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/reset-password?email=a@x.com&code=013579&newPassword=newpass1", "", nil))

	svc.EXPECT().ChangePassword(gomock.Any(), "Bearer t", "old", "newpass1").
		Return(autherr.Field(autherr.InvalidCredential, "op", "oldPassword", "原密码错误"))
	env := decodeErr(t, do(r, http.MethodPut, "/auth/change-password?oldPassword=old&newPassword=newpass1", "",
		map[string]string{"Authorization": "Bearer t"}), http.StatusUnauthorized)
	require.Equal(t, "oldPassword", env.Error.Field)
}

func TestLogoutValidateProfile(t *testing.T) {
	r, svc := newRouter(t)
	hdr := map[string]string{"Authorization": "Bearer t"}

	svc.EXPECT().Logout(gomock.Any(), "Bearer t").Return(nil)
	decodeOK(t, do(r, http.MethodPost, "/auth/logout", "", hdr))

	svc.EXPECT().ValidateToken(gomock.Any(), "Bearer t").Return(false)
	env := decodeOK(t, do(r, http.MethodGet, "/auth/validate", "", hdr))
	require.JSONEq(t, "false", string(env.Data))

	svc.EXPECT().GetProfile(gomock.Any(), "Bearer t").Return(&models.UserInfo{ID: 3, Username: "neo", Roles: []string{}}, nil)
	env = decodeOK(t, do(r, http.MethodGet, "/auth/profile", "", hdr))

	var info models.UserInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.Equal(t, int64(3), info.ID)
}
