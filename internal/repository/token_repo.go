package repository

import (
	"context"
	"time"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var tokenText = errText{
	notFound:  "refresh token not found",
	duplicate: "refresh token already exists",
	reference: "user not found",
}

type PostgresTokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) core.TokenRepository {
	return &PostgresTokenRepository{db: db}
}

func (r *PostgresTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO auth.refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, token.ID, token.UserID, token.TokenHash, token.ExpiresAt).Scan(&token.CreatedAt)
	return translate("tokens.create", err, tokenText)
}

func (r *PostgresTokenRepository) GetByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
		FROM auth.refresh_tokens WHERE token_hash = $1`
	err := r.db.QueryRow(ctx, query, hash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		return nil, translate("tokens.get", err, tokenText)
	}
	return &token, nil
}

// Revoke marks the token as used. Revoking an already revoked token is NotFound,
// which makes concurrent rotations of the same token fail for all but one caller.
func (r *PostgresTokenRepository) Revoke(ctx context.Context, hash string) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE auth.refresh_tokens SET revoked_at = $1 WHERE token_hash = $2 AND revoked_at IS NULL",
		time.Now().UTC(), hash)
	if err != nil {
		return translate("tokens.revoke", err, tokenText)
	}
	return requireRow(tag, "tokens.revoke", tokenText)
}

func (r *PostgresTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		"UPDATE auth.refresh_tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL",
		time.Now().UTC(), userID)
	return translate("tokens.revoke_all", err, tokenText)
}
