package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reveille/internal/shared"
	"golang.org/x/oauth2"
)

// Manager owns the cached token for a single user and is the only
// component that mutates it. Resolve is safe to call repeatedly; the
// run loop calls it again right before playback because the overnight
// wait can outlive the access token.
type Manager struct {
	config   *oauth2.Config
	cache    Cache
	username string
	seed     *oauth2.Token
	logger   *log.Logger
}

// NewManager creates a Manager for the given user.
func NewManager(config *oauth2.Config, cache Cache, username string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		config:   config,
		cache:    cache,
		username: username,
		logger:   logger,
	}
}

// Seed installs a fallback token consulted when the cache is empty.
// The auth command mirrors tokens into the config file; seeding from
// that copy lets the account survive a wiped keyring or a lost cache
// directory.
func (m *Manager) Seed(tok *oauth2.Token) {
	m.seed = tok
}

// Resolve returns a usable access token.
//
// Decision table: no cached token falls back to the seed, or fails
// with [shared.ErrTokenRetrieval] when there is none (the interactive
// flow lives in the auth command); a cached, unexpired token is
// returned as-is; an expired token is refreshed with the stored
// refresh token and re-cached.
func (m *Manager) Resolve(ctx context.Context) (*oauth2.Token, error) {
	seeded := false
	tok, err := m.cache.Load(m.username)
	switch {
	case errors.Is(err, ErrNotCached):
		if m.seed == nil {
			return nil, fmt.Errorf("%w: no cached token for %q, run 'reveille auth login'", shared.ErrTokenRetrieval, m.username)
		}
		m.logger.Debug("token cache empty, falling back to the config copy", "user", m.username)
		tok = m.seed
		seeded = true
	case err != nil:
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenRetrieval, err)
	}

	if tok.Valid() {
		if seeded {
			m.store(tok)
		}
		return tok, nil
	}

	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenRetrieval, shared.ErrNoRefreshToken)
	}

	m.logger.Debug("access token expired, refreshing", "user", m.username)

	fresh, err := m.config.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	// Spotify omits the refresh token on refresh responses; keep the
	// one we already have.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}

	m.store(fresh)

	return fresh, nil
}

// store caches a token, warn-only: a broken cache degrades to
// re-resolving next run, it never blocks the current one.
func (m *Manager) store(tok *oauth2.Token) {
	if err := m.cache.Store(m.username, tok); err != nil {
		m.logger.Warn("failed to cache token", "error", err)
	}
}

// Save caches a token obtained from an interactive authorization flow.
func (m *Manager) Save(tok *oauth2.Token) error {
	if tok == nil {
		return fmt.Errorf("%w: nil token", shared.ErrInvalidArgument)
	}
	if err := m.cache.Store(m.username, tok); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

// Clear removes the cached token for the user.
func (m *Manager) Clear() error {
	return m.cache.Delete(m.username)
}
