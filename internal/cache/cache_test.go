package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	key := "section/12345.xml"
	if err := s.Put(key, []byte("<theorytab/>")); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, ok := s.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != "<theorytab/>" {
		t.Errorf("expected cached bytes back, got %q", data)
	}
}

func TestStore_MissForUnknownKey(t *testing.T) {
	s, err := Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if _, ok := s.Get("song/never-written.html"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestStore_FreshModeAlwaysMisses(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put("artist/a-1.html", []byte("page")); err != nil {
		t.Fatalf("put: %v", err)
	}
	s.Close()

	fresh, err := Open(dir, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer fresh.Close()

	if _, ok := fresh.Get("artist/a-1.html"); ok {
		t.Error("fresh store should miss even for cached keys")
	}
}

func TestStore_PathStaysUnderRoot(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	p := s.Path("../../etc/passwd")
	rel, err := filepath.Rel(dir, p)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 2 && rel[:2] == ".." {
		t.Errorf("expected path inside root, got %q", p)
	}
}

func TestStore_FindByPrefix(t *testing.T) {
	s, err := Open(t.TempDir(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if err := s.Put("youtube/dQw4w9WgXcQ.m4a", []byte("audio")); err != nil {
		t.Fatalf("put: %v", err)
	}

	path, ok := s.Find("youtube/dQw4w9WgXcQ")
	if !ok {
		t.Fatal("expected to find cached audio by prefix")
	}
	if filepath.Ext(path) != ".m4a" {
		t.Errorf("expected .m4a match, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("returned path should exist: %v", err)
	}
}
