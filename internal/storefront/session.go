package storefront

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is one browser's cart. Do serializes every event on it.
// lastSeen is kept outside mu so sweeping never waits on a running handler.
type Session struct {
	ID string

	mu       sync.Mutex
	ctrl     *Controller
	lastSeen atomic.Int64 // unix nanos
}

// Do runs fn with the session's controller while holding the session lock.
func (s *Session) Do(fn func(*Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Registry maps session ids to sessions and evicts idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newController func() *Controller
	ttl           time.Duration
	metrics       *Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewRegistry creates a Registry. newController builds the controller of each new session.
func NewRegistry(newController func() *Controller, ttl time.Duration, metrics *Metrics, logger *slog.Logger) *Registry {
	return &Registry{
		sessions:      make(map[string]*Session),
		newController: newController,
		ttl:           ttl,
		metrics:       metrics,
		logger:        logger.With("component", "sessions"),
		now:           time.Now,
	}
}

// Session returns the session for id. An empty or unknown id yields a new session with a fresh id.
// The second result reports whether the session was created.
func (r *Registry) Session(id string) (*Session, bool) {
	now := r.now()
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok && id != "" {
		r.mu.Unlock()
		s.touch(now)
		return s, false
	}
	s := &Session{
		ID:   uuid.NewString(),
		ctrl: r.newController(),
	}
	s.touch(now)
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionsActive.Set(float64(count))
	return s, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many were dropped.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	dropped := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			delete(r.sessions, id)
			dropped++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionsActive.Set(float64(count))
	r.metrics.SessionsEvicted.Add(float64(dropped))
	return dropped
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if dropped := r.Sweep(r.now()); dropped > 0 {
				r.logger.InfoContext(ctx, "Evicted idle sessions", "count", dropped, "remaining", r.Len())
			}
		}
	}
}
