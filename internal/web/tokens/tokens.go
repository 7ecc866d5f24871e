// Package tokens inspects access tokens on the front-end. The API verifies
// signatures; the front-end only needs the expiry and the claims it displays.
package tokens

import (
	"time"

	"webshop/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSkew treats tokens as expired slightly early so that a request
// started with a valid token does not arrive with an expired one.
const DefaultSkew = 30 * time.Second

type Validator struct {
	skew   time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewValidator(skew time.Duration) *Validator {
	return &Validator{skew: skew, parser: jwt.NewParser(), now: time.Now}
}

// Claims is what the views need to know about the signed-in user.
type Claims struct {
	UserID    uuid.UUID
	Roles     []string
	ExpiresAt time.Time
}

// Claims decodes the token without checking its signature.
func (v *Validator) Claims(token string) (*Claims, error) {
	claims := &auth.Claims{}
	if _, _, err := v.parser.ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, auth.ErrTokenInvalid
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, auth.ErrTokenInvalid
	}
	return &Claims{UserID: userID, Roles: claims.Roles, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Expired reports whether token expires within the skew. Malformed tokens count as expired.
func (v *Validator) Expired(token string) bool {
	claims, err := v.Claims(token)
	if err != nil {
		return true
	}
	return !v.now().Add(v.skew).Before(claims.ExpiresAt)
}
