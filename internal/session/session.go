// Package session derives opaque per-browser-session identifiers and tracks the
// live sessions behind them. An id is a one-way digest of a random identifier and
// a configured secret, so it is never derived from user input and cannot be
// reversed to either.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/google/uuid"

	"github.com/julienb/mentor-go/internal/history"
)

// IDLength is the hex-character length of a session id.
const IDLength = 16

// Session is the per-browser-session state. It is created on first interaction
// and mutated only by the conversation controller.
type Session struct {
	ID         string
	State      string
	Transcript []history.Message
}

// NewID generates a fresh opaque session id: sha256 over a random UUID combined
// with the secret, truncated to IDLength hex characters.
func NewID(secret string) string {
	raw := uuid.NewString()
	sum := sha256.Sum256([]byte(raw + secret))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// Manager holds the live sessions, keyed by their opaque ids.
type Manager struct {
	secret string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a Manager using secret for id derivation.
func NewManager(secret string) *Manager {
	return &Manager{
		secret:   secret,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session for a known id. Unknown ids return (nil, false);
// callers should then Create a fresh session rather than trusting the id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Create mints a new session with a fresh id and initialState, registers it, and
// returns it. Calling Create twice yields two distinct ids.
func (m *Manager) Create(initialState string) *Session {
	s := &Session{
		ID:         NewID(m.secret),
		State:      initialState,
		Transcript: []history.Message{},
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}
