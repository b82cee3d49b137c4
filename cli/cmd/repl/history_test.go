package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory("")

	for _, e := range []HistoryEntry{
		{"uid + 1", modeEval},
		{"list", modeCtrl},
		{"uid + 1", modeEval},
		{"   ", modeEval},
		{"list", modeEval},
		{"uid + 2", modeEval},
		{"list", modeCtrl},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"uid + 1", modeEval},
		{"list", modeEval},
		{"uid + 2", modeEval},
		{"list", modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistoryEntry_OutOfBounds(t *testing.T) {
	h := NewHistory("")
	if err := h.Add("x", modeEval); err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistoryPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"a", modeEval},
		{"let b = 2", modeCtrl},
		{"c", modeEval},
		{"a", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}

	if want := "C:let b = 2\nE:c\nE:a\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !slices.Equal(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestHistoryLoad_Unprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("uid\n\nC:help\nE:E:odd\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []HistoryEntry{
		{"uid", modeEval},
		{"help", modeCtrl},
		{"E:odd", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}
