package validator_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

var _ repo.UserRepository = (*UserRepoMock)(nil)

func requireHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "err=%v", err)
	assert.Equal(t, status, he.Status)
	assert.Equal(t, msg, he.Message)
}

func TestAuthValidator_ValidateRegister(t *testing.T) {
	valid := usecase.RegisterInput{Username: "alice", Email: "a@example.com", Password: "password123", FirstName: "Alice"}

	tests := []struct {
		name string
		mod  func(in *usecase.RegisterInput)
		msg  string
	}{
		{"usernameなし", func(in *usecase.RegisterInput) { in.Username = "  " }, "username is required"},
		{"passwordなし", func(in *usecase.RegisterInput) { in.Password = "" }, "password is required"},
		{"first_nameなし", func(in *usecase.RegisterInput) { in.FirstName = "" }, "first_name is required"},
		{"username長すぎ", func(in *usecase.RegisterInput) { in.Username = strings.Repeat("a", 151) }, "username must be at most 150 characters"},
		{"email形式", func(in *usecase.RegisterInput) { in.Email = "not-an-email" }, "email must be a valid email"},
		{"password短い", func(in *usecase.RegisterInput) { in.Password = "short" }, "password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(UserRepoMock)
			in := valid
			tt.mod(&in)

			err := validator.NewAuthValidator(users).ValidateRegister(context.Background(), in)
			requireHTTPError(t, err, http.StatusBadRequest, tt.msg)
			users.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
		})
	}

	t.Run("emailは空でもよい", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByUsername", mock.Anything, "alice").Return(nil, repo.ErrNotFound)
		in := valid
		in.Email = ""

		require.NoError(t, validator.NewAuthValidator(users).ValidateRegister(context.Background(), in))
	})

	t.Run("username重複は409", func(t *testing.T) {
		users := new(UserRepoMock)
		users.On("FindByUsername", mock.Anything, "alice").Return(&model.User{ID: 1, Username: "alice"}, nil)

		err := validator.NewAuthValidator(users).ValidateRegister(context.Background(), valid)
		requireHTTPError(t, err, http.StatusConflict, "username already exists")
	})
}

func TestAuthValidator_LoginAndRefresh(t *testing.T) {
	v := validator.NewAuthValidator(new(UserRepoMock))
	ctx := context.Background()

	requireHTTPError(t, v.ValidateLogin(ctx, "", "x"), http.StatusBadRequest, "username and password are required")
	requireHTTPError(t, v.ValidateLogin(ctx, "alice", ""), http.StatusBadRequest, "username and password are required")
	assert.NoError(t, v.ValidateLogin(ctx, "alice", "x"))

	requireHTTPError(t, v.ValidateRefresh(ctx, " "), http.StatusBadRequest, "refresh is required")
	assert.NoError(t, v.ValidateRefresh(ctx, "token"))
}

type shipRequest struct {
	Address string `json:"address" validate:"required,max=5"`
	Status  string `json:"status" validate:"omitempty,oneof=A B"`
	Qty     int64  `json:"qty" validate:"gte=0"`
}

func TestRequestValidator(t *testing.T) {
	rv := validator.NewRequestValidator()

	tests := []struct {
		name string
		in   shipRequest
		msg  string
	}{
		{"required", shipRequest{}, "address is required"},
		{"max", shipRequest{Address: "toolong"}, "address must be <= 5"},
		{"oneof", shipRequest{Address: "x", Status: "C"}, "status must be one of A B"},
		{"gte", shipRequest{Address: "x", Qty: -1}, "qty must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireHTTPError(t, rv.Validate(tt.in), http.StatusBadRequest, tt.msg)
		})
	}

	assert.NoError(t, rv.Validate(shipRequest{Address: "x", Status: "A"}))
}
