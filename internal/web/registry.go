package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assignments/internal/assignmentlist"
	"github.com/noah-isme/gema-assignments/pkg/apiclient"
)

// ViewFactory builds the view for a new session. fetcher and unsubmitter call the API with the session's token.
type ViewFactory func(fetcher assignmentlist.Fetcher, unsubmitter assignmentlist.Unsubmitter, notifier assignmentlist.Notifier) *assignmentlist.View

// Session is one browser's view plus the credentials used by its API calls.
type Session struct {
	client *apiclient.Client
	View   *assignmentlist.View
	Toasts *assignmentlist.Toasts

	mu       sync.Mutex
	token    string
	lastSeen time.Time
	// redirected marks the next page load as the tail of a form action.
	redirected bool
}

func (s *Session) authorized() *apiclient.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.ForToken(s.token)
}

func (s *Session) FetchAssignments(ctx context.Context, listType apiclient.ListType) ([]apiclient.Assignment, error) {
	return s.authorized().FetchAssignments(ctx, listType)
}

func (s *Session) Unsubmit(ctx context.Context, assignmentID string) (apiclient.Result, error) {
	return s.authorized().Unsubmit(ctx, assignmentID)
}

func (s *Session) touch(token string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.lastSeen = now
}

func (s *Session) markRedirect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirected = true
}

func (s *Session) takeRedirect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	redirected := s.redirected
	s.redirected = false
	return redirected
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry keeps one view per session and closes views left idle longer than the TTL.
type Registry struct {
	client  *apiclient.Client
	factory ViewFactory
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(client *apiclient.Client, factory ViewFactory, ttl time.Duration, logger zerolog.Logger) *Registry {
	return &Registry{
		client:   client,
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With().Str("component", "view_registry").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session's view, creating it on first use, and refreshes its token.
func (r *Registry) Acquire(sessionID, token string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if !ok {
		toasts := assignmentlist.NewToasts(r.logger)
		entry = &Session{client: r.client, Toasts: toasts}
		entry.View = r.factory(entry, entry, toasts)
		r.sessions[sessionID] = entry
		r.logger.Debug().Str("session_id", sessionID).Msg("assignment view created")
	}
	entry.touch(token, r.now())
	return entry
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(sessionID, token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[sessionID]
	if ok {
		entry.touch(token, r.now())
	}
	return entry, ok
}

// Sweep closes and removes idle views, returning how many were evicted.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, entry := range r.sessions {
		if entry.idleSince().Before(cutoff) {
			entry.View.Close()
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info().Int("evicted", evicted).Int("remaining", len(r.sessions)).Msg("idle assignment views evicted")
	}
	return evicted
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.ttl / 2
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every view.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.sessions {
		entry.View.Close()
		delete(r.sessions, id)
	}
}

// Len reports the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
