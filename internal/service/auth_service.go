package service

import (
	"context"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/auth"
	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenBytes is the entropy of a refresh token before encoding.
const refreshTokenBytes = 48

func invalidCredentials() error {
	return apperr.Unauthorized("invalid credentials").WithOp("auth.login")
}

type AuthService struct {
	users      core.UserRepository
	tokens     core.TokenRepository
	issuer     *auth.Issuer
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users core.UserRepository, tokens core.TokenRepository, issuer *auth.Issuer, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	existing, err := s.users.GetByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user with this email or username already exists").WithOp("auth.register")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("auth.register", err)
	}

	now := s.now().UTC()
	newUser := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    validation.SanitizeString(req.FirstName),
		LastName:     validation.SanitizeString(req.LastName),
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, newUser, []string{models.RoleCustomer}); err != nil {
		return nil, err
	}
	return &models.RegisterResponse{UserID: newUser.ID, Username: newUser.Username, Email: newUser.Email}, nil
}

// Login accepts a username or an email together with the password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	user, err := s.users.GetByEmailOrUsername(ctx, req.Username, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalidCredentials()
	}

	_ = s.users.UpdateLastLogin(ctx, user.ID)

	return s.issuePair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Reusing a rotated token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	hash := auth.HashToken(refreshToken)

	stored, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("invalid refresh token").WithOp("auth.refresh")
		}
		return nil, err
	}
	if stored.RevokedAt != nil {
		return nil, apperr.Unauthorized("refresh token has been revoked").WithOp("auth.refresh")
	}

	if err := s.tokens.Revoke(ctx, hash); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("refresh token has been revoked").WithOp("auth.refresh")
		}
		return nil, err
	}
	if !s.now().Before(stored.ExpiresAt) {
		return nil, apperr.Unauthorized("refresh token expired").WithOp("auth.refresh")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("account is no longer active").WithOp("auth.refresh")
		}
		return nil, err
	}

	return s.issuePair(ctx, user)
}

// Logout revokes the refresh token. Unknown or already revoked tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokens.Revoke(ctx, auth.HashToken(refreshToken))
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	return err
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	accessToken, expiresAt, err := s.issuer.Sign(user.ID, user.Roles)
	if err != nil {
		return nil, apperr.Internal("auth.issue", err)
	}

	refreshToken, err := auth.GenerateRefreshToken(refreshTokenBytes)
	if err != nil {
		return nil, apperr.Internal("auth.issue", err)
	}
	refreshExpiresAt := s.now().Add(s.refreshTTL).UTC()

	if err := s.tokens.Create(ctx, &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        expiresAt.Unix(),
		RefreshExpiresAt: refreshExpiresAt.Unix(),
		User: models.UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    user.Roles,
		},
	}, nil
}
