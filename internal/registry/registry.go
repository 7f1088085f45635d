// Package registry keeps a small index of known sessions (id, message count,
// last activity) in SQLite. The database is opened lazily and created on first
// use. If opening the DB or executing queries fails, the package falls back to
// in-memory bookkeeping; the index is advisory and never blocks a chat turn.
package registry

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/julienb/mentor-go/internal/logger"
)

// Entry is one indexed session.
type Entry struct {
	SessionID string    `json:"session_id"`
	Messages  int       `json:"messages"`
	LastSeen  time.Time `json:"last_seen"`
}

// Registry records session activity.
type Registry struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry // in-memory fallback

	dbOnce  sync.Once
	db      *sql.DB
	initErr error
}

// New returns a Registry backed by the SQLite file at path. The file is not
// touched until the first Touch or List call.
func New(path string) *Registry {
	return &Registry{
		path:    path,
		entries: make(map[string]Entry),
	}
}

// initDB lazily opens the SQLite database and creates the sessions table if it doesn't exist.
func (r *Registry) initDB() {
	var err error
	r.db, err = sql.Open("sqlite", "file:"+r.path+"?_busy_timeout=10000")
	if err != nil {
		r.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory session index", "error", err)
		return
	}
	if _, err = r.db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY,
        messages INTEGER,
        last_seen DATETIME
    );`); err != nil {
		r.initErr = err
		logger.L.Warn("sqlite table creation failed; using in-memory session index", "error", err)
		return
	}
	logger.L.Info("session index initialized", "path", r.path)
}

// Touch records that a session was active with the given transcript length.
// The in-memory copy is always kept as fallback.
func (r *Registry) Touch(sessionID string, messages int) {
	r.dbOnce.Do(r.initDB)

	now := time.Now().UTC()
	if r.initErr == nil && r.db != nil {
		_, err := r.db.Exec(
			`INSERT INTO sessions (id, messages, last_seen) VALUES (?,?,?)
             ON CONFLICT(id) DO UPDATE SET messages=excluded.messages, last_seen=excluded.last_seen;`,
			sessionID, messages, now)
		if err != nil {
			logger.L.Error("failed to index session in sqlite; falling back to memory", "error", err)
		}
	}

	r.mu.Lock()
	r.entries[sessionID] = Entry{SessionID: sessionID, Messages: messages, LastSeen: now}
	r.mu.Unlock()
}

// List returns all indexed sessions, most recently active first.
func (r *Registry) List() []Entry {
	r.dbOnce.Do(r.initDB)

	if r.initErr == nil && r.db != nil {
		rows, err := r.db.Query(`SELECT id, messages, last_seen FROM sessions ORDER BY last_seen DESC;`)
		if err == nil {
			defer rows.Close()
			out := []Entry{}
			for rows.Next() {
				var e Entry
				if err := rows.Scan(&e.SessionID, &e.Messages, &e.LastSeen); err == nil {
					out = append(out, e)
				}
			}
			return out
		}
	}

	r.mu.Lock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.Unlock()
	return out
}
