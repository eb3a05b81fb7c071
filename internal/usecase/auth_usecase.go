package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, username string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

type AuthSettings struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
}

// ログイン・登録のレスポンス（ユーザー情報とトークン）
type AuthOutput struct {
	Refresh   string `json:"refresh"`
	Access    string `json:"access"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"is_admin"`
}

type RefreshOutput struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type ForceLogoutOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

// simplejwtと同じ文言
const invalidCredentialsMessage = "No active account found with the given credentials"

type AuthUsecase struct {
	settings  AuthSettings
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	auditRepo repository.AuditLogRepository
	validator AuthValidator
	log       *zap.Logger
	now       func() time.Time
}

func NewAuthUsecase(
	settings AuthSettings,
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	auditRepo repository.AuditLogRepository,
	validator AuthValidator,
	log *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		settings:  settings,
		users:     users,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput, userAgent string) (AuthOutput, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return AuthOutput{}, passOrInternal(u.log, "validate register", err)
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthOutput{}, internalError(u.log, "hash password", err)
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		TokenVersion: 0,
		IsActive:     true,
	}

	//username重複はDBの一意制約でも弾く
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return AuthOutput{}, conflict("username already exists")
		}
		return AuthOutput{}, internalError(u.log, "create user", err)
	}

	return u.issueTokens(ctx, user, userAgent)
}

func (u *AuthUsecase) Login(ctx context.Context, username, password, userAgent string) (AuthOutput, error) {
	if err := u.validator.ValidateLogin(ctx, username, password); err != nil {
		return AuthOutput{}, err
	}

	user, err := u.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
	}
	if err != nil {
		return AuthOutput{}, internalError(u.log, "find user", err)
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthOutput{}, NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return AuthOutput{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	//last_login更新
	now := u.now()
	user.LastLoginAt = &now
	if err := u.users.Update(ctx, user); err != nil {
		u.log.Warn("update last_login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return u.issueTokens(ctx, user, userAgent)
}

// refreshトークンのローテーション
// 使用済みトークンが再度来たら盗用とみなしてそのユーザーの全トークンを消す
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain, userAgent string) (RefreshOutput, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return RefreshOutput{}, err
	}
	unauthorized := NewHTTPError(http.StatusUnauthorized, "token not valid")

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return RefreshOutput{}, unauthorized
	}
	if err != nil {
		return RefreshOutput{}, internalError(u.log, "find refresh token", err)
	}

	now := u.now()
	if rt.RevokedAt != nil || rt.ExpiresAt.Before(now) {
		return RefreshOutput{}, unauthorized
	}

	//used済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		u.revokeAll(ctx, rt.UserID, "refresh token replay")
		return RefreshOutput{}, unauthorized
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return RefreshOutput{}, unauthorized
	}
	if err != nil {
		return RefreshOutput{}, internalError(u.log, "find user", err)
	}
	if !user.IsActive {
		return RefreshOutput{}, NewHTTPError(http.StatusForbidden, "user is inactive")
	}

	//旧tokenをusedにする（同時に使われたら片方だけ成功）
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			u.revokeAll(ctx, rt.UserID, "refresh token raced")
			return RefreshOutput{}, unauthorized
		}
		return RefreshOutput{}, internalError(u.log, "mark refresh token used", err)
	}

	out, err := u.issueTokens(ctx, user, userAgent)
	if err != nil {
		return RefreshOutput{}, err
	}
	return RefreshOutput{Access: out.Access, Refresh: out.Refresh}, nil
}

// token_versionを上げて既存のaccess tokenを無効にし、refreshも全削除
func (u *AuthUsecase) ForceLogout(ctx context.Context, adminUserID, targetUserID int64) (ForceLogoutOutput, error) {
	if targetUserID <= 0 {
		return ForceLogoutOutput{}, notFound("user not found")
	}

	err := u.users.IncrementTokenVersion(ctx, targetUserID)
	if errors.Is(err, repository.ErrNotFound) {
		return ForceLogoutOutput{}, notFound("user not found")
	}
	if err != nil {
		return ForceLogoutOutput{}, internalError(u.log, "increment token version", err)
	}

	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return ForceLogoutOutput{}, internalError(u.log, "delete refresh tokens", err)
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return ForceLogoutOutput{}, internalError(u.log, "find user", err)
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionForceLogout,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		AfterJSON:    `{"token_version":` + strconv.Itoa(user.TokenVersion) + `}`,
		CreatedAt:    u.now(),
	}); err != nil {
		return ForceLogoutOutput{}, internalError(u.log, "create audit log", err)
	}

	return ForceLogoutOutput{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

func (u *AuthUsecase) revokeAll(ctx context.Context, userID int64, reason string) {
	u.log.Warn("revoking all refresh tokens", zap.Int64("user_id", userID), zap.String("reason", reason))
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		u.log.Error("delete refresh tokens failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// access（JWT）とrefresh（ランダム文字列、DBにはhash）を発行
func (u *AuthUsecase) issueTokens(ctx context.Context, user *model.User, userAgent string) (AuthOutput, error) {
	access, err := u.issueAccessToken(user)
	if err != nil {
		return AuthOutput{}, internalError(u.log, "sign access token", err)
	}

	refreshPlain, refreshHash, err := newRandomTokenAndHash()
	if err != nil {
		return AuthOutput{}, internalError(u.log, "generate refresh token", err)
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(), // refresh token 自体のID
		UserID:    user.ID,
		TokenHash: refreshHash,
		UserAgent: userAgent,
		ExpiresAt: u.now().Add(u.settings.RefreshTokenTTL),
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return AuthOutput{}, internalError(u.log, "save refresh token", err)
	}

	return AuthOutput{
		Refresh:   refreshPlain,
		Access:    access,
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		Name:      user.DisplayName(),
		IsAdmin:   user.IsAdmin(),
	}, nil
}

func (u *AuthUsecase) issueAccessToken(user *model.User) (string, error) {
	now := u.now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"role":       string(user.Role),
		"tv":         user.TokenVersion,
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"is_admin":   user.IsAdmin(),
		"iat":        now.Unix(),
		"exp":        now.Add(u.settings.AccessTokenTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(u.settings.JWTSecret))
}

// 平文（クライアントに返す）とsha256ハッシュ（DBに保存）
func newRandomTokenAndHash() (string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain := base64.RawURLEncoding.EncodeToString(b)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
