package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/auth"
	"webshop/internal/mocks"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	users   *mocks.MockUserRepository
	tokens  *mocks.MockTokenRepository
	issuer  *auth.Issuer
	service *AuthService
}

func newAuthFixture() authFixture {
	f := authFixture{
		users:  new(mocks.MockUserRepository),
		tokens: new(mocks.MockTokenRepository),
		issuer: auth.NewIssuer(testSecret, "webshop-test", 15*time.Minute),
	}
	f.service = NewAuthService(f.users, f.tokens, f.issuer, 24*time.Hour)
	return f
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmailOrUsername", ctx, "new@example.com", "newuser").Return(nil, nil).Once()
		f.users.On("Create", ctx, mock.AnythingOfType("*models.User"), []string{models.RoleCustomer}).Return(nil).Once()

		resp, err := f.service.Register(ctx, models.RegisterRequest{
			Username:  "newuser",
			Email:     "new@example.com",
			Password:  "Password123!",
			FirstName: "<b>Ada</b>",
		})

		require.NoError(t, err)
		assert.Equal(t, "newuser", resp.Username)
		assert.NotEqual(t, uuid.Nil, resp.UserID)

		created := f.users.Calls[1].Arguments.Get(1).(*models.User)
		assert.Equal(t, "Ada", created.FirstName)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Password123!")))
		f.users.AssertExpectations(t)
	})

	t.Run("Fail_RoleInsert", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmailOrUsername", ctx, "new@example.com", "newuser").Return(nil, nil).Once()
		f.users.On("Create", ctx, mock.AnythingOfType("*models.User"), []string{models.RoleCustomer}).
			Return(apperr.Internal("users.create", errors.New("conn reset"))).Once()

		resp, err := f.service.Register(ctx, models.RegisterRequest{
			Username: "newuser",
			Email:    "new@example.com",
			Password: "Password123!",
		})

		assert.Nil(t, resp)
		assert.True(t, apperr.Is(err, apperr.KindInternal))
		f.users.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("Fail_UserExists", func(t *testing.T) {
		f := newAuthFixture()
		existingUser := &models.User{ID: uuid.New(), Username: "taken"}
		f.users.On("GetByEmailOrUsername", ctx, "taken@example.com", "taken").Return(existingUser, nil).Once()

		resp, err := f.service.Register(ctx, models.RegisterRequest{
			Username: "taken",
			Email:    "taken@example.com",
			Password: "Password123!",
		})

		assert.Nil(t, resp)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hashPassword(t, "Secret123!"),
		Roles:        []string{models.RoleCustomer},
	}

	t.Run("Success", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmailOrUsername", ctx, "alice", "alice").Return(user, nil).Once()
		f.users.On("UpdateLastLogin", ctx, user.ID).Return(nil).Once()
		f.tokens.On("Create", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil).Once()

		pair, err := f.service.Login(ctx, models.LoginRequest{Username: "alice", Password: "Secret123!"})
		require.NoError(t, err)

		claims, err := f.issuer.Parse(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, []string{models.RoleCustomer}, claims.Roles)
		assert.Equal(t, "alice", pair.User.Username)

		stored := f.tokens.Calls[0].Arguments.Get(1).(*models.RefreshToken)
		assert.Equal(t, auth.HashToken(pair.RefreshToken), stored.TokenHash)
		assert.Equal(t, user.ID, stored.UserID)
		assert.Equal(t, stored.ExpiresAt.Unix(), pair.RefreshExpiresAt)
	})

	t.Run("Wrong_Password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmailOrUsername", ctx, "alice", "alice").Return(user, nil).Once()

		_, err := f.service.Login(ctx, models.LoginRequest{Username: "alice", Password: "Wrong123!"})
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Unknown_User", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("GetByEmailOrUsername", ctx, "ghost", "ghost").Return(nil, nil).Once()

		_, err := f.service.Login(ctx, models.LoginRequest{Username: "ghost", Password: "Secret123!"})
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: uuid.New(), Username: "alice", Roles: []string{models.RoleCustomer}}
	hash := auth.HashToken("presented")

	t.Run("Rotates", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("GetByHash", ctx, hash).Return(&models.RefreshToken{
			UserID: user.ID, TokenHash: hash, ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		f.tokens.On("Revoke", ctx, hash).Return(nil).Once()
		f.users.On("GetByID", ctx, user.ID).Return(user, nil).Once()
		f.tokens.On("Create", ctx, mock.AnythingOfType("*models.RefreshToken")).Return(nil).Once()

		pair, err := f.service.Refresh(ctx, "presented")
		require.NoError(t, err)
		assert.NotEqual(t, "presented", pair.RefreshToken)
		f.tokens.AssertExpectations(t)
	})

	t.Run("Revoked_Token", func(t *testing.T) {
		f := newAuthFixture()
		revokedAt := time.Now()
		f.tokens.On("GetByHash", ctx, hash).Return(&models.RefreshToken{
			UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revokedAt,
		}, nil).Once()

		_, err := f.service.Refresh(ctx, "presented")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		f.tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Expired_Token_Is_Revoked", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("GetByHash", ctx, hash).Return(&models.RefreshToken{
			UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute),
		}, nil).Once()
		f.tokens.On("Revoke", ctx, hash).Return(nil).Once()

		_, err := f.service.Refresh(ctx, "presented")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		f.tokens.AssertExpectations(t)
	})

	t.Run("Unknown_Token", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("GetByHash", ctx, hash).Return(nil, apperr.NotFound("refresh token not found")).Once()

		_, err := f.service.Refresh(ctx, "presented")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("Concurrent_Rotation_Loses", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("GetByHash", ctx, hash).Return(&models.RefreshToken{
			UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		f.tokens.On("Revoke", ctx, hash).Return(apperr.NotFound("refresh token not found")).Once()

		_, err := f.service.Refresh(ctx, "presented")
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.tokens.On("Revoke", ctx, auth.HashToken("gone")).Return(apperr.NotFound("refresh token not found")).Once()
	f.tokens.On("Revoke", ctx, auth.HashToken("live")).Return(nil).Once()

	assert.NoError(t, f.service.Logout(ctx, "gone"))
	assert.NoError(t, f.service.Logout(ctx, "live"))
	f.tokens.AssertExpectations(t)
}
