// Package push delivers realtime wallet events from the Redis pub/sub
// channel into the store.
package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentiva/walletsync/internal/logging"
	"github.com/rentiva/walletsync/internal/wallet"
)

const applyTimeout = 5 * time.Second

// Subscriber owns one pub/sub subscription and a single goroutine that
// applies events in arrival order. Connect and Disconnect are an explicit
// lifecycle pair invoked by the session, so handlers never accumulate
// across reconnects.
type Subscriber struct {
	client *redis.Client
	store  *wallet.Store
	logger *slog.Logger

	mu   sync.Mutex
	sub  *redis.PubSub
	done chan struct{}
}

// New builds a subscriber bound to one session's store.
func New(client *redis.Client, store *wallet.Store, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Subscriber{client: client, store: store, logger: logger}
}

// Connect subscribes to the wallet channels and starts the apply loop.
// Calling Connect while connected is a no-op.
func (s *Subscriber) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return nil
	}

	sub := s.client.Subscribe(ctx, wallet.Channels()...)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return err
	}

	s.sub = sub
	s.done = make(chan struct{})
	go s.run(sub.Channel(), s.done)

	s.logger.Info("push channel connected", "channels", wallet.Channels())
	return nil
}

// Disconnect tears the subscription down and waits for the apply loop to
// drain, so no handler outlives the session. Safe to call repeatedly.
func (s *Subscriber) Disconnect() error {
	s.mu.Lock()
	sub, done := s.sub, s.done
	s.sub, s.done = nil, nil
	s.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	<-done
	s.logger.Info("push channel disconnected")
	return err
}

// Connected reports whether a live subscription exists.
func (s *Subscriber) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}

func (s *Subscriber) run(messages <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range messages {
		event, err := wallet.DecodeEvent(msg.Channel, []byte(msg.Payload))
		if err != nil {
			s.logger.Warn("drop malformed push event", "channel", msg.Channel, "error", err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
		s.store.Apply(ctx, msg.Channel, event)
		cancel()
	}
}
