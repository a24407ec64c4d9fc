package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/ideagen/internal/chat"
)

// SessionCookieName identifies a browser's conversation
const SessionCookieName = "ideagen_session"

// Session limits used when the config leaves them unset
const (
	DefaultMaxSessions = 1000
	DefaultIdleTTL     = 30 * time.Minute
)

type contextKey int

const sessionKey contextKey = iota

type storedSession struct {
	session  *chat.Session
	lastSeen time.Time
}

// Store keeps one chat session per browser, in memory only. Sessions idle
// for longer than the TTL are swept; when the store is full the least
// recently seen idle session makes room for a new one.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*storedSession
	newSession func() *chat.Session

	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithMaxSessions caps the number of live sessions
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithIdleTTL sets how long an untouched session is kept
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// NewStore creates a store that builds sessions with newSession
func NewStore(newSession func() *chat.Session, opts ...StoreOption) *Store {
	s := &Store{
		sessions:    make(map[string]*storedSession),
		newSession:  newSession,
		maxSessions: DefaultMaxSessions,
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session for id, if any, and marks it as seen
func (s *Store) Get(id string) (*chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	stored.lastSeen = s.now()
	return stored.session, true
}

// Create starts a new session under a fresh id
func (s *Store) Create() (string, *chat.Session) {
	id := uuid.NewString()
	session := s.newSession()

	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[id] = &storedSession{session: session, lastSeen: s.now()}
	s.mu.Unlock()
	return id, session
}

// evictOldestLocked drops the least recently seen session that is not waiting on a reply
func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, stored := range s.sessions {
		if stored.session.Busy() {
			continue
		}
		if oldestID == "" || stored.lastSeen.Before(oldest) {
			oldestID, oldest = id, stored.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

// Sweep drops sessions idle for longer than the TTL and returns how many went
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, stored := range s.sessions {
		if stored.lastSeen.Before(cutoff) && !stored.session.Busy() {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) fromCookie(r *http.Request) *chat.Session {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return nil
	}
	session, _ := s.Get(c.Value)
	return session
}

// Lookup attaches the caller's session to the request context when the
// browser already has one. It never creates sessions.
func (s *Store) Lookup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := s.fromCookie(r); session != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, session))
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware attaches the caller's session to the request context,
// creating one and setting the cookie when the browser has none.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := s.fromCookie(r)
		if session == nil {
			var id string
			id, session = s.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// SessionFromContext returns the session attached by Middleware or Lookup, or nil
func SessionFromContext(ctx context.Context) *chat.Session {
	session, _ := ctx.Value(sessionKey).(*chat.Session)
	return session
}
