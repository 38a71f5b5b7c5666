package credentials

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storysquad/internal/models"
	"storysquad/internal/repository"
)

// ErrNoBearer signals that an authenticated operation was attempted with
// no active token. Callers must fail on it, never proceed unauthenticated.
var ErrNoBearer = errors.New("no bearer token for session")

// Cache holds the active bearer token per role and persists the login
// credentials that produced it, so a relaunch can restore the session
// silently. Tokens are replaced atomically; the last write wins.
type Cache struct {
	settings *repository.SettingsRepository

	mu     sync.Mutex
	tokens map[models.Role]string
}

// NewCache creates a credential cache backed by the settings storage
func NewCache(settings *repository.SettingsRepository) *Cache {
	return &Cache{
		settings: settings,
		tokens:   make(map[models.Role]string),
	}
}

// SetSession makes token the active one for role and persists the full
// credential record for later silent restoration.
func (c *Cache) SetSession(role models.Role, token, email, password string) error {
	c.mu.Lock()
	c.tokens[role] = token
	c.mu.Unlock()

	for key, value := range map[string]string{
		settingKey(role, "token"):    token,
		settingKey(role, "email"):    email,
		settingKey(role, "password"): password,
	} {
		if err := c.settings.SetSetting(key, value); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return nil
}

// ClearSession drops the in-memory token for role. Persisted credentials
// survive so "remember me" re-login still works.
func (c *Cache) ClearSession(role models.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, role)
}

// ForgetSession drops the token and the persisted credential record
func (c *Cache) ForgetSession(role models.Role) error {
	c.ClearSession(role)
	for _, field := range []string{"token", "email", "password"} {
		if err := c.settings.DeleteSetting(settingKey(role, field)); err != nil {
			return fmt.Errorf("failed to forget session: %w", err)
		}
	}
	return nil
}

// CurrentToken returns the active token for role, or ErrNoBearer
func (c *Cache) CurrentToken(role models.Role) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, ok := c.tokens[role]
	if !ok || token == "" {
		return "", ErrNoBearer
	}
	return token, nil
}

// AdoptToken makes a previously persisted token the active one for role
// without touching the persisted record.
func (c *Cache) AdoptToken(role models.Role, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[role] = token
}

// RestoreSession reads the persisted credential record for role.
// Nothing persisted returns (nil, nil).
func (c *Cache) RestoreSession(role models.Role) (*models.Session, error) {
	token, err := c.settings.GetSetting(settingKey(role, "token"))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	email, err := c.settings.GetSetting(settingKey(role, "email"))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	password, err := c.settings.GetSetting(settingKey(role, "password"))
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if token == "" && email == "" {
		return nil, nil
	}

	return &models.Session{Role: role, Token: token, Email: email, Password: password}, nil
}

// TokenUsable reports whether a persisted token is still worth presenting.
// Tokens are JWTs on this service; an unexpired (or unparseable, hence
// unknowable) token is presented and the server remains the authority.
func TokenUsable(token string) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.After(time.Now())
}

func settingKey(role models.Role, field string) string {
	return string(role) + "_session_" + field
}
