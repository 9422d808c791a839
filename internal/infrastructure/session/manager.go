// Package session keeps the signed-in customer's auth session in the secret
// store and keeps its access token fresh.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nearbasket/internal/domain/service"
	"nearbasket/internal/infrastructure/remote"
	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyPhone        = "phone"

	// DefaultLeeway refreshes tokens this long before they expire.
	DefaultLeeway = 30 * time.Second
)

type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Phone        string
}

type Manager struct {
	secrets service.SecretStore
	auth    remote.Authenticator
	leeway  time.Duration
	now     func() time.Time

	mu sync.Mutex
}

func NewManager(secrets service.SecretStore, auth remote.Authenticator) *Manager {
	return &Manager{
		secrets: secrets,
		auth:    auth,
		leeway:  DefaultLeeway,
		now:     time.Now,
	}
}

// Save stores a session returned by the auth service.
func (m *Manager) Save(s *remote.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(s)
}

func (m *Manager) save(s *remote.AuthSession) error {
	values := map[string]string{
		keyAccessToken:  s.AccessToken,
		keyRefreshToken: s.RefreshToken,
		keyUserID:       s.User.ID,
		keyPhone:        s.User.Phone,
	}
	for k, v := range values {
		if err := m.secrets.SetString(k, v); err != nil {
			return errors.LocalStorage("Failed to save your session", err)
		}
	}
	return nil
}

// Current returns the stored session, or nil when signed out.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() (*Session, error) {
	access, ok, err := m.secrets.GetString(keyAccessToken)
	if err != nil {
		return nil, errors.LocalStorage("Failed to read your session", err)
	}
	if !ok || access == "" {
		return nil, nil
	}

	s := &Session{AccessToken: access}
	s.RefreshToken, _, err = m.secrets.GetString(keyRefreshToken)
	if err == nil {
		s.UserID, _, err = m.secrets.GetString(keyUserID)
	}
	if err == nil {
		s.Phone, _, err = m.secrets.GetString(keyPhone)
	}
	if err != nil {
		return nil, errors.LocalStorage("Failed to read your session", err)
	}
	return s, nil
}

func (m *Manager) IsSignedIn() bool {
	s, err := m.Current()
	return err == nil && s != nil
}

// AccessToken implements remote.TokenSource. It returns "" when signed out
// and refreshes the session when the token is about to expire. A refresh the
// server rejects signs the customer out.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load()
	if err != nil || s == nil {
		return "", err
	}

	exp, ok := tokenExpiry(s.AccessToken)
	if !ok || m.now().Add(m.leeway).Before(exp) {
		return s.AccessToken, nil
	}
	if s.RefreshToken == "" {
		return s.AccessToken, nil
	}

	logger.Debug("access token for %s expires at %s, refreshing", s.UserID, exp.Format(time.RFC3339))
	fresh, err := m.auth.RefreshSession(ctx, s.RefreshToken)
	if err != nil {
		if errors.Is(err, errors.CodeUnauthorized) {
			m.clear()
		}
		return "", err
	}
	if fresh.User.Phone == "" {
		fresh.User.Phone = s.Phone
	}
	if err := m.save(fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

// Clear forgets the session.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear()
}

func (m *Manager) clear() error {
	for _, k := range []string{keyAccessToken, keyRefreshToken, keyUserID, keyPhone} {
		if err := m.secrets.Remove(k); err != nil {
			return errors.LocalStorage("Failed to clear your session", err)
		}
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend verifies tokens, the device only needs to know when to refresh.
func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
