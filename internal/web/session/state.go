// Package session holds the front-end's per-browser state: the API token pair,
// the signed-in user and the shopping cart.
package session

import (
	"context"
	"encoding/gob"
	"net/http"
	"slices"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/models"
	"webshop/internal/web/tokens"

	"github.com/alexedwards/scs/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	CookieName = "webshop_session"

	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyUsername     = "username"
	keyRoles        = "roles"
	keyCart         = "cart"
	keyFlash        = "flash"
)

// CartItem is a product line in the session cart.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

func init() {
	gob.Register([]CartItem{})
}

// NewManager returns a session manager persisting to Redis.
func NewManager(client *redis.Client, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = NewRedisStore(client)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secure
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	return sm
}

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

// CurrentUser is the signed-in user as remembered by the session.
type CurrentUser struct {
	ID       uuid.UUID
	Username string
	Roles    []string
}

func (u *CurrentUser) IsAdmin() bool {
	return u != nil && slices.Contains(u.Roles, models.RoleAdmin)
}

const refreshTimeout = 10 * time.Second

type StateManager struct {
	sessions *scs.SessionManager
	api      Refresher
	tokens   *tokens.Validator
	logger   zerolog.Logger

	// Concurrent requests of one browser share a single refresh call.
	refreshes singleflight.Group
}

func NewStateManager(sessions *scs.SessionManager, api Refresher, validator *tokens.Validator, logger zerolog.Logger) *StateManager {
	return &StateManager{sessions: sessions, api: api, tokens: validator, logger: logger}
}

// Sessions exposes the underlying manager for LoadAndSave.
func (sm *StateManager) Sessions() *scs.SessionManager {
	return sm.sessions
}

// SignIn stores a freshly issued token pair under a new session token.
func (sm *StateManager) SignIn(ctx context.Context, pair *models.TokenPair) error {
	if err := sm.sessions.RenewToken(ctx); err != nil {
		return apperr.Internal("session.sign_in", err)
	}
	sm.storePair(ctx, pair)
	return nil
}

func (sm *StateManager) storePair(ctx context.Context, pair *models.TokenPair) {
	sm.sessions.Put(ctx, keyAccessToken, pair.AccessToken)
	sm.sessions.Put(ctx, keyRefreshToken, pair.RefreshToken)
	sm.sessions.Put(ctx, keyUserID, pair.User.ID.String())
	sm.sessions.Put(ctx, keyUsername, pair.User.Username)
	sm.sessions.Put(ctx, keyRoles, pair.User.Roles)
}

// SignOut forgets everything, the cart included.
func (sm *StateManager) SignOut(ctx context.Context) error {
	return sm.sessions.Destroy(ctx)
}

// RefreshToken returns the stored refresh token, empty when signed out.
func (sm *StateManager) RefreshToken(ctx context.Context) string {
	return sm.sessions.GetString(ctx, keyRefreshToken)
}

// AccessToken returns a usable access token. An expired token is refreshed
// once through the API; when that fails the session is cleared and an
// Unauthorized error is returned.
func (sm *StateManager) AccessToken(ctx context.Context) (string, error) {
	token := sm.sessions.GetString(ctx, keyAccessToken)
	if token == "" {
		return "", apperr.Unauthorized("please sign in").WithOp("session.access_token")
	}
	if !sm.tokens.Expired(token) {
		return token, nil
	}

	refreshToken := sm.RefreshToken(ctx)
	if refreshToken == "" {
		sm.clear(ctx)
		return "", apperr.Unauthorized("your session has expired, please sign in again").WithOp("session.access_token")
	}

	// Concurrent requests share one refresh; it must outlive the request that started it.
	result, err, _ := sm.refreshes.Do(refreshToken, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return sm.api.Refresh(refreshCtx, refreshToken)
	})
	if err != nil {
		sm.logger.Warn().
			Err(err).
			Str("user_id", sm.sessions.GetString(ctx, keyUserID)).
			Msg("Token refresh failed, clearing session")
		sm.clear(ctx)
		return "", apperr.Unauthorized("your session has expired, please sign in again").WithOp("session.access_token")
	}

	pair := result.(*models.TokenPair)
	sm.storePair(ctx, pair)
	return pair.AccessToken, nil
}

func (sm *StateManager) clear(ctx context.Context) {
	if err := sm.sessions.Destroy(ctx); err != nil {
		sm.logger.Error().Err(err).Msg("Failed to destroy session")
	}
}

// User returns the signed-in user, nil when anonymous.
func (sm *StateManager) User(ctx context.Context) *CurrentUser {
	id, err := uuid.Parse(sm.sessions.GetString(ctx, keyUserID))
	if err != nil {
		return nil
	}
	roles, _ := sm.sessions.Get(ctx, keyRoles).([]string)
	return &CurrentUser{ID: id, Username: sm.sessions.GetString(ctx, keyUsername), Roles: roles}
}

// --- Cart ---

func (sm *StateManager) Cart(ctx context.Context) []CartItem {
	items, _ := sm.sessions.Get(ctx, keyCart).([]CartItem)
	return items
}

// AddToCart adds quantity of a product, merging with an existing line.
func (sm *StateManager) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) {
	if quantity < 1 {
		return
	}
	items := slices.Clone(sm.Cart(ctx))
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			sm.sessions.Put(ctx, keyCart, items)
			return
		}
	}
	sm.sessions.Put(ctx, keyCart, append(items, CartItem{ProductID: productID, Quantity: quantity}))
}

// SetCartQuantity changes a line; zero or less removes it.
func (sm *StateManager) SetCartQuantity(ctx context.Context, productID uuid.UUID, quantity int) {
	items := slices.DeleteFunc(slices.Clone(sm.Cart(ctx)), func(item CartItem) bool {
		return item.ProductID == productID && quantity < 1
	})
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
		}
	}
	sm.sessions.Put(ctx, keyCart, items)
}

func (sm *StateManager) ClearCart(ctx context.Context) {
	sm.sessions.Remove(ctx, keyCart)
}

// --- Flash messages ---

func (sm *StateManager) Flash(ctx context.Context, message string) {
	sm.sessions.Put(ctx, keyFlash, message)
}

func (sm *StateManager) PopFlash(ctx context.Context) string {
	return sm.sessions.PopString(ctx, keyFlash)
}
