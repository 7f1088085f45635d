package history

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())
	msgs := []Message{
		{Role: RoleUser, Content: "Bonjour"},
		{Role: RoleAssistant, Content: "Salut !"},
	}

	s.Save("abc123", msgs)
	got := s.Load("abc123")
	if !reflect.DeepEqual(got, msgs) {
		t.Fatalf("round-trip mismatch: %v", got)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	got := s.Load("nope")
	if len(got) != 0 {
		t.Fatalf("expected empty transcript, got %v", got)
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	got := s.Load("bad")
	if len(got) != 0 {
		t.Fatalf("expected empty transcript for malformed file, got %v", got)
	}
}

// TestStore_Truncation checks FIFO truncation: only the most recent MaxMessages
// entries survive a save, in their original order.
func TestStore_Truncation(t *testing.T) {
	s := NewStore(t.TempDir())
	var msgs []Message
	for i := 0; i < MaxMessages+10; i++ {
		msgs = append(msgs, Message{Role: RoleUser, Content: fmt.Sprintf("msg-%d", i)})
	}

	s.Save("long", msgs)
	got := s.Load("long")
	if len(got) != MaxMessages {
		t.Fatalf("expected %d messages, got %d", MaxMessages, len(got))
	}
	if got[0].Content != "msg-10" {
		t.Fatalf("oldest entries should be dropped first, got first=%s", got[0].Content)
	}
	if got[len(got)-1].Content != fmt.Sprintf("msg-%d", MaxMessages+9) {
		t.Fatalf("most recent entry missing, got last=%s", got[len(got)-1].Content)
	}
}

func TestStore_Clear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	s.Save("sess", []Message{{Role: RoleUser, Content: "hi"}})

	s.Clear("sess")

	// The file survives, holding an empty transcript.
	if _, err := os.Stat(filepath.Join(dir, "sess.json")); err != nil {
		t.Fatalf("file should still exist after clear: %v", err)
	}
	if got := s.Load("sess"); len(got) != 0 {
		t.Fatalf("expected empty transcript after clear, got %v", got)
	}
}

// A failed write never surfaces: the store logs and continues.
func TestStore_WriteFailureSwallowed(t *testing.T) {
	s := NewStore(filepath.Join(string([]byte{0}), "impossible"))
	s.Save("sess", []Message{{Role: RoleUser, Content: "hi"}})
}
