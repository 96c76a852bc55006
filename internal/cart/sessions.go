package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sessions owns one Store per session key. A session ends explicitly through
// End or implicitly when it has been idle for longer than the TTL.
type Sessions struct {
	mu       sync.Mutex
	carts    map[string]*session
	ttl      time.Duration
	now      func() time.Time
	onCreate func(key string, store *Store)
	logger   *zap.Logger
}

type session struct {
	store    *Store
	lastSeen time.Time
}

// SessionsOption customizes a Sessions registry.
type SessionsOption func(*Sessions)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// WithOnCreate registers a hook run once for every new cart, before it is
// handed to any caller. It is the place to attach long lived listeners.
func WithOnCreate(fn func(key string, store *Store)) SessionsOption {
	return func(s *Sessions) { s.onCreate = fn }
}

// NewSessions creates a registry whose carts expire after ttl of inactivity.
// A ttl of zero disables expiry.
func NewSessions(ttl time.Duration, logger *zap.Logger, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		carts:  make(map[string]*session),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cart of the session, creating an empty one on first use.
func (s *Sessions) Get(key string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.carts[key]; ok {
		sess.lastSeen = s.now()
		return sess.store
	}

	store := NewStore()
	if s.onCreate != nil {
		s.onCreate(key, store)
	}
	s.carts[key] = &session{store: store, lastSeen: s.now()}
	s.logger.Debug("cart session started", zap.String("session", key))
	return store
}

// Touch marks the session as active without creating it. It reports false
// when the session has ended, in which case a Store obtained earlier is
// detached and the next Get starts a fresh cart.
func (s *Sessions) Touch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.carts[key]
	if ok {
		sess.lastSeen = s.now()
	}
	return ok
}

// End clears and forgets the cart of the session.
func (s *Sessions) End(key string) {
	s.mu.Lock()
	sess, ok := s.carts[key]
	delete(s.carts, key)
	s.mu.Unlock()

	if ok {
		sess.store.Clear()
		s.logger.Debug("cart session ended", zap.String("session", key))
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Sweep ends every session idle for longer than the TTL and returns how many were ended.
// Long lived holders of a Store, such as event streams, keep it alive with Touch.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)
	var expired []*session

	s.mu.Lock()
	for key, sess := range s.carts {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.carts, key)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.store.Clear()
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired idle cart sessions", zap.Int("count", n))
			}
		}
	}
}
