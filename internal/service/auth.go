package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
	"github.com/pribylovaa/gamehub-auth/internal/models"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/log"
	"github.com/pribylovaa/gamehub-auth/internal/pkg/redact"
	"github.com/pribylovaa/gamehub-auth/internal/storage"
	"github.com/pribylovaa/gamehub-auth/internal/users"
	"github.com/pribylovaa/gamehub-auth/internal/verification"
)

const (
	msgUserNotFound = "用户不存在"
	msgCodeInvalid  = "验证码无效或已过期"
	msgDisabled     = "账号已被禁用"
)

// RegisterInput — данные регистрации.
type RegisterInput struct {
	Username string `validate:"required,min=2,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Code     string `validate:"required"`
}

// LoginInput — данные входа. ClientIP заполняет транспорт.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	ClientIP string
}

// SendCode выдаёт код подтверждения для type ∈ {register, reset}.
func (s *Service) SendCode(ctx context.Context, email, typ string) (err error) {
	const op = "service.auth.SendCode"
	defer func() { s.observe(ctx, "send_code", err) }()

	purpose, perr := models.ParsePurpose(strings.TrimSpace(typ))
	if perr != nil {
		return autherr.Field(autherr.MalformedInput, op, "type", "不支持的验证码类型")
	}

	_, err = s.codes.Issue(ctx, email, purpose)
	return err
}

// Register создаёт аккаунт по действующему коду подтверждения.
func (s *Service) Register(ctx context.Context, in RegisterInput) (err error) {
	const op = "service.auth.Register"
	defer func() { s.observe(ctx, "register", err) }()

	in.Email = verification.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Code = strings.TrimSpace(in.Code)

	if err := validateInput(op, in); err != nil {
		return err
	}

	if err := s.checkPasswordPolicy(op, "password", in.Password); err != nil {
		return err
	}

	ok, err := s.codes.Verify(ctx, in.Email, in.Code, models.PurposeRegister)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "验证码校验失败", err)
	}

	if !ok {
		return autherr.Field(autherr.CodeInvalidOrExpired, op, "verificationCode", msgCodeInvalid)
	}

	taken, err := s.userSvc.CheckUsernameExists(ctx, in.Username)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "检查用户名失败", err)
	}

	if taken {
		return autherr.Field(autherr.Conflict, op, "username", "用户名已存在")
	}

	taken, err = s.userSvc.CheckEmailExists(ctx, in.Email)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "检查邮箱失败", err)
	}

	if taken {
		return autherr.Field(autherr.Conflict, op, "email", "该邮箱已被注册")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "注册失败", err)
	}

	now := s.now()
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Nickname:     in.Username,
		Status:       models.UserStatusEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return autherr.Wrap(autherr.Conflict, op, "用户名或邮箱已被注册", err)
		}

		return autherr.Wrap(autherr.Internal, op, "注册失败", err)
	}

	lg := log.From(ctx).With(slog.String("op", op), slog.Int64("user_id", user.ID))

	// Аккаунт уже создан: дальнейшие шаги не откатывают регистрацию.
	if err := s.userSvc.AssignUserRole(ctx, user.ID, s.cfg.DefaultRole); err != nil {
		lg.Error("assign_default_role_failed", slog.String("err", err.Error()))
	}

	if err := s.userSvc.CreateDefaultPreferences(ctx, user.ID); err != nil {
		lg.Error("create_default_preferences_failed", slog.String("err", err.Error()))
	}

	if err := s.codes.Consume(ctx, in.Email, in.Code, models.PurposeRegister); err != nil {
		lg.Error("code_consume_failed", slog.String("err", err.Error()))
	}

	if err := s.mail.SendWelcomeEmail(ctx, in.Email, in.Username); err != nil {
		lg.Warn("welcome_email_failed", slog.String("err", err.Error()))
	}

	lg.Info("user_registered", slog.String("email", redact.Email(in.Email)))

	return nil
}

// Login выполняет вход по email и паролю.
func (s *Service) Login(ctx context.Context, in LoginInput) (pair *models.TokenPair, err error) {
	const op = "service.auth.Login"
	defer func() { s.observe(ctx, "login", err) }()

	in.Email = verification.NormalizeEmail(in.Email)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	user, err := s.users.UserByEmail(ctx, in.Email)
	if err != nil {
		return nil, userLookupErr(op, err)
	}

	if user.Deleted {
		return nil, autherr.New(autherr.NotFound, op, msgUserNotFound)
	}

	if !user.Enabled() {
		return nil, autherr.New(autherr.AccountDisabled, op, msgDisabled)
	}

	if !checkPassword(user.PasswordHash, in.Password) {
		return nil, autherr.New(autherr.InvalidCredential, op, "密码错误")
	}

	if err := s.userSvc.UpdateLastLoginInfo(ctx, user.ID, in.ClientIP); err != nil {
		log.From(ctx).Warn("update_last_login_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	info, err := s.snapshot(ctx, op, user)
	if err != nil {
		return nil, err
	}

	return s.issuePair(op, models.Registered(user.ID), info)
}

// GuestLogin выдаёт пару токенов синтетическому гостю без обращения к хранилищам.
func (s *Service) GuestLogin(ctx context.Context) (pair *models.TokenPair, err error) {
	const op = "service.auth.GuestLogin"
	defer func() { s.observe(ctx, "guest_login", err) }()

	return s.issuePair(op, models.Guest(), s.newGuestInfo())
}

// RefreshToken выпускает новую пару по действующему refresh-токену.
// Для гостя создаётся новый гость: старый нигде не хранился.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (pair *models.TokenPair, err error) {
	const op = "service.auth.RefreshToken"
	defer func() { s.observe(ctx, "refresh", err) }()

	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return nil, autherr.Field(autherr.TokenInvalid, op, "refreshToken", "刷新令牌不能为空")
	}

	claims, err := s.tokens.ParseKind(raw, models.TokenRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsBlacklisted(ctx, raw)
	if err != nil {
		return nil, autherr.Wrap(autherr.Internal, op, "令牌校验失败", err)
	}

	if revoked {
		return nil, autherr.New(autherr.TokenBlacklisted, op, "令牌已失效")
	}

	id, ok := claims.Subject.UserID()
	if !ok {
		return s.issuePair(op, models.Guest(), s.newGuestInfo())
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return nil, userLookupErr(op, err)
	}

	if user.Deleted {
		return nil, autherr.New(autherr.NotFound, op, msgUserNotFound)
	}

	if !user.Enabled() {
		return nil, autherr.New(autherr.AccountDisabled, op, msgDisabled)
	}

	info, err := s.snapshot(ctx, op, user)
	if err != nil {
		return nil, err
	}

	return s.issuePair(op, models.Registered(user.ID), info)
}

// SendPasswordResetCode выдаёт код сброса пароля. E-mail должен принадлежать аккаунту.
func (s *Service) SendPasswordResetCode(ctx context.Context, email string) (err error) {
	const op = "service.auth.SendPasswordResetCode"
	defer func() { s.observe(ctx, "forgot_password", err) }()

	email = verification.NormalizeEmail(email)
	if !verification.ValidEmail(email) {
		return autherr.Field(autherr.MalformedInput, op, "email", "邮箱格式不正确")
	}

	exists, err := s.userSvc.CheckEmailExists(ctx, email)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "检查邮箱失败", err)
	}

	if !exists {
		return autherr.Field(autherr.NotFound, op, "email", "该邮箱未注册")
	}

	_, err = s.codes.Issue(ctx, email, models.PurposeReset)
	return err
}

// ResetPassword меняет пароль по коду сброса и сбрасывает снимок сессии.
// Ранее выданные токены остаются действительными до своего exp.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) (err error) {
	const op = "service.auth.ResetPassword"
	defer func() { s.observe(ctx, "reset_password", err) }()

	email = verification.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	if !verification.ValidEmail(email) {
		return autherr.Field(autherr.MalformedInput, op, "email", "邮箱格式不正确")
	}

	if code == "" {
		return autherr.Field(autherr.MalformedInput, op, "code", "验证码不能为空")
	}

	if err := s.checkPasswordPolicy(op, "newPassword", newPassword); err != nil {
		return err
	}

	ok, err := s.codes.Verify(ctx, email, code, models.PurposeReset)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "验证码校验失败", err)
	}

	if !ok {
		return autherr.Field(autherr.CodeInvalidOrExpired, op, "code", msgCodeInvalid)
	}

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		return userLookupErr(op, err)
	}

	// Пароль меняется только по уже погашенному коду.
	if err := s.codes.Consume(ctx, email, code, models.PurposeReset); err != nil {
		if _, ok := autherr.As(err); ok {
			return err
		}

		return autherr.Wrap(autherr.Internal, op, "验证码作废失败", err)
	}

	if err := s.setPassword(ctx, op, user, newPassword); err != nil {
		return err
	}

	lg := log.From(ctx).With(slog.String("op", op), slog.Int64("user_id", user.ID))

	if err := s.userSvc.ClearUserSession(ctx, user.ID); err != nil {
		lg.Warn("clear_session_failed", slog.String("err", err.Error()))
	}

	lg.Info("password_reset")

	return nil
}

// ChangePassword меняет пароль владельца access-токена.
func (s *Service) ChangePassword(ctx context.Context, authHeader, oldPassword, newPassword string) (err error) {
	const op = "service.auth.ChangePassword"
	defer func() { s.observe(ctx, "change_password", err) }()

	claims, err := s.tokens.Authenticate(ctx, authHeader)
	if err != nil {
		return err
	}

	id, ok := claims.Subject.UserID()
	if !ok {
		return autherr.New(autherr.InvalidCredential, op, "游客不能修改密码")
	}

	if oldPassword == "" {
		return autherr.Field(autherr.MalformedInput, op, "oldPassword", "原密码不能为空")
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		return userLookupErr(op, err)
	}

	if user.Deleted {
		return autherr.New(autherr.NotFound, op, msgUserNotFound)
	}

	if !user.Enabled() {
		return autherr.New(autherr.AccountDisabled, op, msgDisabled)
	}

	if !checkPassword(user.PasswordHash, oldPassword) {
		return autherr.Field(autherr.InvalidCredential, op, "oldPassword", "原密码错误")
	}

	if newPassword == oldPassword {
		return autherr.Field(autherr.MalformedInput, op, "newPassword", "新密码不能与原密码相同")
	}

	if err := s.checkPasswordPolicy(op, "newPassword", newPassword); err != nil {
		return err
	}

	if err := s.setPassword(ctx, op, user, newPassword); err != nil {
		return err
	}

	if err := s.userSvc.ClearUserSession(ctx, user.ID); err != nil {
		log.From(ctx).Warn("clear_session_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	log.From(ctx).Info("password_changed", slog.String("op", op), slog.Int64("user_id", user.ID))

	return nil
}

// Logout отзывает access-токен из заголовка и сбрасывает снимок сессии.
// Отсутствующий или некорректный заголовок — no-op.
func (s *Service) Logout(ctx context.Context, authHeader string) (err error) {
	defer func() { s.observe(ctx, "logout", err) }()

	return s.tokens.Blacklist(ctx, authHeader)
}

// ValidateToken сообщает, действителен ли access-токен из заголовка.
func (s *Service) ValidateToken(ctx context.Context, authHeader string) bool {
	return s.tokens.Validate(ctx, authHeader)
}

// GetProfile возвращает снимок владельца access-токена.
func (s *Service) GetProfile(ctx context.Context, authHeader string) (*models.UserInfo, error) {
	const op = "service.auth.GetProfile"

	claims, err := s.tokens.Authenticate(ctx, authHeader)
	if err != nil {
		return nil, err
	}

	id, ok := claims.Subject.UserID()
	if !ok {
		return guestInfo(claims.Username), nil
	}

	info, err := s.userSvc.GetUserInfo(ctx, id)
	if err != nil {
		return nil, userLookupErr(op, err)
	}

	return info, nil
}

// snapshot собирает UserInfo из хранилища и кладёт его в сессионный кэш.
func (s *Service) snapshot(ctx context.Context, op string, user *models.User) (*models.UserInfo, error) {
	roles, err := s.users.RolesByUserID(ctx, user.ID)
	if err != nil {
		return nil, autherr.Wrap(autherr.Internal, op, "获取用户角色失败", err)
	}

	info := users.BuildUserInfo(user, roles)

	if err := s.sessions.Put(ctx, info); err != nil {
		log.From(ctx).Warn("session_write_failed", slog.String("op", op), slog.String("err", err.Error()))
	}

	return info, nil
}

func (s *Service) setPassword(ctx context.Context, op string, user *models.User, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return autherr.Wrap(autherr.Internal, op, "修改密码失败", err)
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return userLookupErr(op, err)
	}

	return nil
}

func (s *Service) issuePair(op string, subject models.Subject, info *models.UserInfo) (*models.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(subject, info.Username, info.Email)
	if err != nil {
		return nil, autherr.Wrap(autherr.Internal, op, "生成令牌失败", err)
	}

	refresh, err := s.tokens.IssueRefreshToken(subject)
	if err != nil {
		return nil, autherr.Wrap(autherr.Internal, op, "生成令牌失败", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		UserInfo:     info,
	}, nil
}

// userLookupErr переводит ошибку хранилища пользователей в autherr.
func userLookupErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return autherr.Wrap(autherr.NotFound, op, msgUserNotFound, err)
	}

	return autherr.Wrap(autherr.Internal, op, "服务器内部错误", err)
}
