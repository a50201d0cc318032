package core

// session.go holds the import-session store. A session is the immutable,
// preview-validated snapshot of one entity batch, addressed by an opaque
// single-use token. Consumption is an atomic check-and-set under the store
// mutex: under concurrent confirms of the same token at most one caller
// wins and the rest observe ErrSessionConsumed.

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Protocol errors surfaced by Consume.
var (
	ErrSessionNotFound = errors.New("import session not found")
	ErrSessionExpired  = errors.New("import session expired")
	ErrSessionConsumed = errors.New("import session already consumed")
	ErrSessionBlocked  = errors.New("import session has validation errors and cannot be confirmed")
	ErrSessionEntity   = errors.New("import session belongs to a different entity type")
)

// DefaultSessionTTL is the validity window between preview and confirm.
var DefaultSessionTTL = 15 * time.Minute

// Session is one preview-validated snapshot awaiting confirm. Never mutated
// after creation except for the consumed mark.
type Session struct {
	Token     string
	Entity    EntityType
	Set       RowSet
	Errors    []Diagnostic
	Warnings  []Diagnostic
	CreatedAt time.Time
	ExpiresAt time.Time

	consumed bool
}

// Blocked reports whether the session carries blocking validation errors.
func (s *Session) Blocked() bool { return len(s.Errors) > 0 }

// SessionStore keeps live sessions keyed by token.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time // stubbed in tests
}

// NewSessionStore creates a store with the given validity window.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create captures a validated snapshot and returns its session. The token
// is issued even when the snapshot has errors, so callers can reference the
// diagnostics; Consume enforces that such a session is never committed.
func (st *SessionStore) Create(entity EntityType, set RowSet, errs, warns []Diagnostic) *Session {
	now := st.now()
	session := &Session{
		Token:     uuid.New().String(),
		Entity:    entity,
		Set:       set,
		Errors:    errs,
		Warnings:  warns,
		CreatedAt: now,
		ExpiresAt: now.Add(st.ttl),
	}

	st.mu.Lock()
	st.sweepLocked(now)
	st.sessions[session.Token] = session
	st.mu.Unlock()

	return session
}

// Consume atomically marks a session consumed and returns its snapshot.
// Exactly one caller can consume a given token; later calls get
// ErrSessionConsumed. Expired and blocked sessions are rejected, as is a
// token presented under the wrong entity type; rejection never consumes.
func (st *SessionStore) Consume(token string, entity EntityType) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.consumed {
		return nil, ErrSessionConsumed
	}
	if st.now().After(session.ExpiresAt) {
		delete(st.sessions, token)
		return nil, ErrSessionExpired
	}
	if session.Entity != entity {
		return nil, ErrSessionEntity
	}
	if session.Blocked() {
		return nil, ErrSessionBlocked
	}

	session.consumed = true
	return session, nil
}

// Len returns the number of live sessions, consumed included until sweep.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweepLocked drops expired sessions. Called opportunistically on Create;
// there is no background janitor.
func (st *SessionStore) sweepLocked(now time.Time) {
	for token, session := range st.sessions {
		if now.After(session.ExpiresAt) {
			delete(st.sessions, token)
		}
	}
}
