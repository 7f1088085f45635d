// Package history provides file-based persistence for chat transcripts.
// Each session id maps to one JSON file under the store directory, holding the
// transcript as an ordered list of {role, content} records. The system prompt is
// never part of a transcript. Read and write failures degrade to an empty
// transcript and a dropped write respectively; they are logged, never returned.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julienb/mentor-go/internal/logger"
)

// MaxMessages is the transcript retention bound. Save keeps only the most recent
// MaxMessages entries, dropping from the front.
const MaxMessages = 50

// Store persists transcripts as one JSON file per session id.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

// Load reads the transcript for a session id. A missing file yields an empty
// transcript; so do unreadable or malformed files, with a warning logged.
func (s *Store) Load(sessionID string) []Message {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.L.Warn("transcript read failed", "session", sessionID, "error", err)
		}
		return []Message{}
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		logger.L.Warn("transcript unparseable, starting empty", "session", sessionID, "error", err)
		return []Message{}
	}
	return msgs
}

// Save writes the transcript for a session id, truncating to the most recent
// MaxMessages entries first. Write failures are logged and swallowed; the
// in-memory transcript stays authoritative for the current interaction.
func (s *Store) Save(sessionID string, msgs []Message) {
	if len(msgs) > MaxMessages {
		msgs = msgs[len(msgs)-MaxMessages:]
	}
	if msgs == nil {
		msgs = []Message{}
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		logger.L.Error("transcript dir creation failed", "dir", s.dir, "error", err)
		return
	}

	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		logger.L.Error("transcript encode failed", "session", sessionID, "error", err)
		return
	}
	if err := os.WriteFile(s.path(sessionID), data, 0o644); err != nil {
		logger.L.Error("transcript write failed", "session", sessionID, "error", err)
	}
}

// Clear overwrites the session's file with an empty transcript. The file is never
// deleted, only emptied.
func (s *Store) Clear(sessionID string) {
	s.Save(sessionID, []Message{})
}
