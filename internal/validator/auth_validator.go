package validator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// パスワード最低文字数
const minPasswordLength = 8

type authValidator struct {
	users repository.UserRepository
	v     *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users, v: validator.New()}
}

// サインアップの入力を検証
func (a *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	username := strings.TrimSpace(in.Username)

	// 必須チェック
	if username == "" {
		return invalid("username is required")
	}
	if in.Password == "" {
		return invalid("password is required")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return invalid("first_name is required")
	}
	if len(username) > 150 {
		return invalid("username must be at most 150 characters")
	}

	// email形式（空は許す）
	if email := strings.TrimSpace(in.Email); email != "" {
		if err := a.v.Var(email, "email"); err != nil {
			return invalid("email must be a valid email")
		}
	}

	if len(in.Password) < minPasswordLength {
		return invalid("password must be at least 8 characters")
	}

	// username重複チェック（DBが必要）
	_, err := a.users.FindByUsername(ctx, username)
	if err == nil {
		return usecase.NewHTTPError(http.StatusConflict, "username already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, username string, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return invalid("username and password are required")
	}
	return nil
}

// refresh 入力を検証
func (a *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return invalid("refresh is required")
	}
	return nil
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}
