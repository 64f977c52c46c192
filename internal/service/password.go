package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/gamehub-auth/internal/autherr"
)

const (
	maxPasswordLength = 64
	// maxPasswordBytes — предел bcrypt.
	maxPasswordBytes = 72
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.password.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// checkPasswordPolicy проверяет длину нового пароля.
func (s *Service) checkPasswordPolicy(op, field, pw string) error {
	if strings.TrimSpace(pw) == "" {
		return autherr.Field(autherr.MalformedInput, op, field, "密码不能为空")
	}

	if utf8.RuneCountInString(pw) < s.cfg.MinPasswordLength {
		return autherr.Field(autherr.MalformedInput, op, field,
			fmt.Sprintf("密码长度不能少于%d位", s.cfg.MinPasswordLength))
	}

	if utf8.RuneCountInString(pw) > maxPasswordLength || len(pw) > maxPasswordBytes {
		return autherr.Field(autherr.MalformedInput, op, field, fmt.Sprintf("密码长度不能超过%d位", maxPasswordLength))
	}

	return nil
}

// validateInput проверяет struct-теги validate и превращает первую
// ошибку в MalformedInput с именем поля.
func validateInput(op string, in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return autherr.Wrap(autherr.MalformedInput, op, "参数错误", err)
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())

	msg := "参数错误"
	switch fe.Tag() {
	case "required":
		msg = field + "不能为空"
	case "email":
		msg = "邮箱格式不正确"
	case "min", "max":
		msg = field + "长度不符合要求"
	case "numeric", "len":
		msg = "验证码格式不正确"
	}

	return autherr.Field(autherr.MalformedInput, op, field, msg)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}

	r, n := utf8.DecodeRuneInString(s)
	return strings.ToLower(string(r)) + s[n:]
}
