package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iabetor/voicevox-capi/internal/text"
)

func TestStore_AddMatchPersist(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.AddWord(text.Word{Surface: "初音", Pronunciation: "ハツネ", Accent: 1}); err != nil {
		t.Fatalf("AddWord: %v", err)
	}
	// 覆盖已有词条
	if err := s.AddWord(text.Word{Surface: "初音", Pronunciation: "ハツネ", Accent: 0}); err != nil {
		t.Fatalf("AddWord overwrite: %v", err)
	}
	if err := s.AddWord(text.Word{Surface: "x", Pronunciation: "not kana"}); err == nil {
		t.Error("invalid pronunciation should be rejected")
	}

	w, n, ok := s.Match([]rune("初音ミク"))
	if !ok || n != 2 || w.Accent != 0 {
		t.Errorf("Match: got (%+v, %d, %v)", w, n, ok)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	words, err := reopened.Words()
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if len(words) != 1 || words[0].Surface != "初音" {
		t.Fatalf("expected persisted word, got %+v", words)
	}
	if _, _, ok := reopened.Match([]rune("初音")); !ok {
		t.Error("persisted word should be matchable after reopen")
	}

	removed, err := reopened.RemoveWord("初音")
	if err != nil || !removed {
		t.Fatalf("RemoveWord: (%v, %v)", removed, err)
	}
	if _, _, ok := reopened.Match([]rune("初音")); ok {
		t.Error("removed word should not match")
	}
}

func TestOpen_RejectsMissingDir(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(file); err == nil {
		t.Error("expected error when path is a file")
	}
}
