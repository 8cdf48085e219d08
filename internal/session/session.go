// Package session makes the wallet store lifecycle explicit: the store and
// its push subscription are created on login and destroyed on logout,
// never inferred from consumer mount order.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentiva/walletsync/internal/logging"
	"github.com/rentiva/walletsync/internal/metrics"
	"github.com/rentiva/walletsync/internal/notify"
	"github.com/rentiva/walletsync/internal/push"
	"github.com/rentiva/walletsync/internal/wallet"
)

var (
	// ErrUserRequired rejects logins without a user identity.
	ErrUserRequired = errors.New("user id is required")
	// ErrSessionActive rejects a second concurrent login.
	ErrSessionActive = errors.New("a session is already active")
)

// Session binds one authenticated user to a store and a live push channel.
type Session struct {
	UserID    string
	StartedAt time.Time
	Store     *wallet.Store

	sub *push.Subscriber
}

// Connected reports whether the session's push channel is live.
func (s *Session) Connected() bool {
	return s.sub.Connected()
}

// Manager owns at most one session per process.
type Manager struct {
	backend  wallet.Backend
	cache    *redis.Client
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	current *Session
}

// NewManager wires the session manager's collaborators.
func NewManager(backend wallet.Backend, cache *redis.Client, notifier notify.Notifier, m *metrics.Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{backend: backend, cache: cache, notifier: notifier, metrics: m, logger: logger}
}

// Login creates the store, connects the push channel, and primes the
// balance from the backend. Wallet state is never persisted, so every new
// session starts from a fresh fetch.
func (m *Manager) Login(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return nil, ErrSessionActive
	}

	store := wallet.New(userID, m.backend, m.notifier, m.metrics, m.logger)
	sub := push.New(m.cache, store, m.logger)
	if err := sub.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect push channel: %w", err)
	}

	store.FetchBalance(ctx)

	session := &Session{
		UserID:    userID,
		StartedAt: time.Now().UTC(),
		Store:     store,
		sub:       sub,
	}
	m.current = session
	m.logger.Info("wallet session started", "user_id", userID)
	return session, nil
}

// Logout disconnects the push channel and resets the store to its zero
// state. A no-op when no session is active.
func (m *Manager) Logout() error {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.mu.Unlock()

	if session == nil {
		return nil
	}

	err := session.sub.Disconnect()
	session.Store.Reset()
	m.logger.Info("wallet session ended", "user_id", session.UserID)
	return err
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentStore resolves the active session's store, or nil. Shaped to fit
// wallet.StoreProvider.
func (m *Manager) CurrentStore() *wallet.Store {
	if session := m.Current(); session != nil {
		return session.Store
	}
	return nil
}
