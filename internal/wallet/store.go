package wallet

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rentiva/walletsync/internal/logging"
	"github.com/rentiva/walletsync/internal/metrics"
	"github.com/rentiva/walletsync/internal/notify"
)

const (
	actionFetchBalance      = "fetch_balance"
	actionCreateTopup       = "create_topup"
	actionFetchTransactions = "fetch_transactions"

	fallbackBalanceError      = "Unable to load wallet balance"
	fallbackTopupError        = "Unable to start wallet top-up"
	fallbackTransactionsError = "Unable to load transaction history"
)

// Store is the single source of truth for one session's wallet state. All
// field writes happen under the store mutex as one atomic step; network
// round-trips run outside the lock, so in-flight actions may overlap in
// time but readers never observe a torn snapshot. Last write wins by
// completion order — the server is the consistency authority.
type Store struct {
	userID   string
	backend  Backend
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	fetchSeq uint64
}

// New constructs the store for an authenticated session. An empty userID
// yields a store whose actions are no-ops until a real session exists.
func New(userID string, backend Backend, notifier notify.Notifier, m *metrics.Metrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		userID:   userID,
		backend:  backend,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Transactions = append([]Transaction(nil), s.state.Transactions...)
	return out
}

// Reset returns the store to its zero state. Called on logout; nothing is
// persisted, a fresh session always refetches.
func (s *Store) Reset() {
	s.update(func(st *State) {
		*st = State{}
	})
	s.metrics.SetBalance(0)
}

// FetchBalance refreshes the balance from the backend. Failures are fully
// absorbed into state plus a notification and never returned: this is
// called opportunistically and must not crash callers. The loading flag is
// cleared on every exit path.
func (s *Store) FetchBalance(ctx context.Context) {
	if s.userID == "" {
		return
	}

	s.update(func(st *State) { st.Loading = true })
	defer s.update(func(st *State) { st.Loading = false })

	payload, err := s.backend.WalletBalance(ctx)
	var amount int64
	if err == nil {
		amount, err = ExtractBalance(payload)
	}
	if err != nil {
		s.fail(ctx, actionFetchBalance, err, fallbackBalanceError)
		return
	}

	s.update(func(st *State) {
		st.Balance = amount
		st.LastError = ""
	})
	s.metrics.SetBalance(amount)
}

// CreateTopup opens a payment session for the given amount and, once the
// provider accepts the session, prepends a pending deposit entry. Bounds
// checking belongs to the caller; the store surfaces whatever the backend
// rejects. Failures are recorded AND returned so callers can react.
func (s *Store) CreateTopup(ctx context.Context, amount int64) (TopupSession, error) {
	s.update(func(st *State) { st.Loading = true })
	defer s.update(func(st *State) { st.Loading = false })

	session, err := s.backend.CreateTopup(ctx, amount)
	if err != nil {
		s.fail(ctx, actionCreateTopup, err, fallbackTopupError)
		return TopupSession{}, err
	}

	pending := Transaction{
		ID:          session.TransactionID,
		Amount:      amount,
		Type:        TypeDeposit,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
		Description: "Wallet top-up",
	}
	s.update(func(st *State) {
		st.Transactions = append([]Transaction{pending}, st.Transactions...)
		st.LastError = ""
	})

	return session, nil
}

// FetchTransactions loads one page of history and replaces the store's
// transaction list with it; this is a paged view, not an incremental sync.
// A completion that is no longer the most recent fetch still returns its
// page to the caller but does not overwrite newer store contents.
// Failures are recorded AND returned.
func (s *Store) FetchTransactions(ctx context.Context, query ListQuery) (TransactionPage, error) {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.state.Loading = true
	s.mu.Unlock()
	defer s.update(func(st *State) { st.Loading = false })

	page, err := s.backend.Transactions(ctx, query)
	if err != nil {
		s.fail(ctx, actionFetchTransactions, err, fallbackTransactionsError)
		return TransactionPage{}, err
	}

	s.mu.Lock()
	if seq == s.fetchSeq {
		s.state.Transactions = append([]Transaction(nil), page.Transactions...)
	}
	s.state.LastError = ""
	s.mu.Unlock()

	return page, nil
}

// Apply reduces one push event into state. Events arrive from a single
// subscriber goroutine and are applied in arrival order, never coalesced.
func (s *Store) Apply(ctx context.Context, channel string, event Event) {
	switch e := event.(type) {
	case PaymentStatus:
		s.metrics.EventApplied(channel)
		// Re-derive the balance from the source of truth: the event may
		// arrive before the ledger write is committed server-side.
		s.FetchBalance(ctx)
	case Maintenance:
		s.metrics.EventApplied(channel)
		s.notifyUser(ctx, notify.LevelWarning, e.Message, notify.MaintenanceDisplay)
	default:
		var balance int64
		s.update(func(st *State) {
			*st = reduce(*st, event)
			balance = st.Balance
		})
		s.metrics.EventApplied(channel)
		if _, ok := event.(BalanceUpdated); ok {
			s.metrics.SetBalance(balance)
		}
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (s *Store) fail(ctx context.Context, action string, err error, fallback string) {
	msg := errorMessage(err, fallback)
	s.update(func(st *State) { st.LastError = msg })
	s.metrics.ActionFailed(action)
	s.notifyUser(ctx, notify.LevelError, msg, 0)
	s.logger.Warn("wallet action failed", "action", action, "error", err)
}

func (s *Store) notifyUser(ctx context.Context, level, body string, d time.Duration) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notify.Message{Level: level, Body: body, Duration: d}); err != nil {
		s.logger.Warn("notify failed", "error", err)
	}
}

// errorMessage prefers the server-reported message, then the transport
// error text, then a static fallback.
func errorMessage(err error, fallback string) string {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Error()
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
