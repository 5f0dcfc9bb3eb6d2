package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/filmgate/filmgate/internal/logctx"
	"github.com/filmgate/filmgate/internal/storage"
	"github.com/google/uuid"
)

// PasswordSettingKey is the admin_settings row holding the shared secret.
const PasswordSettingKey = "admin_password"

// SettingsStore is the persistence contract for the admin secret.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Gate is the single-secret check protecting admin operations. A successful
// Authenticate issues an opaque session token with a TTL; sessions live in
// process memory and die with it. This is deliberately not a security
// subsystem: no hashing, lockout or rate limiting.
type Gate struct {
	settings SettingsStore
	fallback string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]time.Time
}

// NewGate builds a Gate. fallbackPassword is used whenever the settings
// store cannot produce a secret, so a fresh database stays administrable.
func NewGate(settings SettingsStore, fallbackPassword string, ttl time.Duration) *Gate {
	return &Gate{
		settings: settings,
		fallback: fallbackPassword,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
}

// Authenticate compares the candidate against the stored secret and, on
// match, returns a fresh session token.
func (g *Gate) Authenticate(ctx context.Context, candidate string) (string, bool) {
	if candidate != g.currentPassword(ctx) {
		return "", false
	}

	token := uuid.NewString()

	g.mu.Lock()
	g.purgeExpiredLocked()
	g.sessions[token] = g.now().Add(g.ttl)
	g.mu.Unlock()

	return token, true
}

// IsAuthenticated reports whether the token names a live session.
func (g *Gate) IsAuthenticated(token string) bool {
	if token == "" {
		return false
	}

	g.mu.RLock()
	expiry, ok := g.sessions[token]
	g.mu.RUnlock()

	return ok && g.now().Before(expiry)
}

// Logout ends the session named by the token.
func (g *Gate) Logout(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

// ChangePassword stores a new secret after verifying the current one.
// Existing sessions stay valid.
func (g *Gate) ChangePassword(ctx context.Context, current, next string) bool {
	if next == "" || current != g.currentPassword(ctx) {
		return false
	}

	if err := g.settings.Set(ctx, PasswordSettingKey, next); err != nil {
		logctx.LoggerFromContext(ctx).Error("failed to store admin password", "err", err)

		return false
	}

	logctx.LoggerFromContext(ctx).Info("admin password changed")

	return true
}

// currentPassword fetches the secret from the settings store, falling back
// to the configured default when the store is unreachable or unset. The
// unreachable case is logged loudly so a dead settings store is visible.
func (g *Gate) currentPassword(ctx context.Context) string {
	value, err := g.settings.Get(ctx, PasswordSettingKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logctx.LoggerFromContext(ctx).Warn("settings store unreachable, using fallback admin password", "err", err)
		}

		return g.fallback
	}

	if value == "" {
		return g.fallback
	}

	return value
}

func (g *Gate) purgeExpiredLocked() {
	now := g.now()

	for token, expiry := range g.sessions {
		if now.After(expiry) {
			delete(g.sessions, token)
		}
	}
}
