// Package session manages the authentication lifecycle: obtaining a token
// from the Telegram identity assertion (or the development fallback),
// persisting it, and re-authenticating when the backend reports expiry.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Cossomoj/booksmood/internal/api"
	"github.com/Cossomoj/booksmood/internal/domain"
	"github.com/Cossomoj/booksmood/internal/errors"
	"github.com/Cossomoj/booksmood/internal/logger"
	"github.com/Cossomoj/booksmood/internal/storage"
)

// Manager owns the session state. It implements api.Reauthorizer so the API
// client can run one refresh cycle after a 401.
type Manager struct {
	client      *api.Client
	store       *storage.Store
	environment string
	initData    string
	logger      *logger.Logger

	mu   sync.RWMutex
	user *domain.User
}

// New creates a session manager. Call Start before using the API for
// authenticated endpoints.
func New(client *api.Client, store *storage.Store, environment, initData string, log *logger.Logger) *Manager {
	return &Manager{
		client:      client,
		store:       store,
		environment: environment,
		initData:    initData,
		logger:      log,
	}
}

// Start establishes a session: restore the persisted token if it is still
// usable, otherwise run one authentication cycle. Failure to authenticate
// is non-fatal; the client continues in anonymous mode.
func (m *Manager) Start(ctx context.Context) {
	if token, err := m.store.Token(); err == nil && token != "" {
		if exp, expired := tokenExpiry(token); !expired {
			m.client.SetToken(token)
			m.logger.Debug("session restored from storage", "expires", exp)
			return
		}
		m.logger.Debug("stored token expired, re-authenticating")
		_ = m.store.ClearToken()
	}

	if _, err := m.authenticate(ctx); err != nil {
		m.logger.WithError(err).Warn("authentication failed, continuing anonymous")
	}
}

// Reauthorize clears the stored token and runs exactly one authentication
// cycle, returning the fresh token. Called by the API client after a 401.
func (m *Manager) Reauthorize(ctx context.Context) (string, error) {
	_ = m.store.ClearToken()
	return m.authenticate(ctx)
}

// authenticate runs one cycle: Telegram exchange first, then the test-auth
// fallback when running in a development environment.
func (m *Manager) authenticate(ctx context.Context) (string, error) {
	if m.initData != "" {
		result, err := m.client.TelegramAuth(ctx, m.initData)
		if err == nil {
			m.adopt(result)
			return result.AccessToken, nil
		}
		m.logger.WithError(err).Warn("telegram auth failed")
	}

	if m.environment == "development" {
		result, err := m.client.TestAuth(ctx)
		if err == nil {
			m.adopt(result)
			return result.AccessToken, nil
		}
		m.logger.WithError(err).Warn("test auth failed")
		return "", errors.Wrap(err, errors.CodeUnauthorized, "test auth failed")
	}

	return "", errors.Unauthorized("no usable identity")
}

// adopt installs a successful auth result: token on the client, token in
// durable storage, user in memory.
func (m *Manager) adopt(result *api.AuthResult) {
	m.client.SetToken(result.AccessToken)
	if err := m.store.SetToken(result.AccessToken); err != nil {
		m.logger.WithError(err).Warn("failed to persist token")
	}

	m.mu.Lock()
	m.user = result.User
	m.mu.Unlock()

	if result.User != nil {
		m.logger.Info("authenticated", "user", result.User.DisplayName())
	}
}

// Authenticated reports whether a token is currently held.
func (m *Manager) Authenticated() bool {
	return m.client.Token() != ""
}

// User returns the authenticated user, or nil in anonymous mode.
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// tokenExpiry peeks at the token's exp claim without verifying the
// signature (verification is the backend's job). Opaque or claim-less
// tokens are treated as not expired; the 401 path covers them.
func tokenExpiry(token string) (expiry time.Time, expired bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, time.Now().After(claims.ExpiresAt.Time)
}

// EnsureDeviceID returns the stable device identity for this installation,
// generating and persisting one on first run.
func EnsureDeviceID(store *storage.Store) (string, error) {
	if id, err := store.DeviceID(); err == nil {
		return id, nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		return "", err
	}

	id := uuid.NewString()
	if err := store.SetDeviceID(id); err != nil {
		return "", err
	}
	return id, nil
}
