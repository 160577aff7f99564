package bbolt

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wordtrove/authd/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "auth.db")
	s, err := NewRepositoryFromFile(path, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	s := newTestStore(t)

	t.Run("PutAndGet", func(t *testing.T) {
		if err := s.Put(storage.KindSession, "s-1", []byte("row")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		data, err := s.Get(storage.KindSession, "s-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(data) != "row" {
			t.Errorf("got %q, want %q", data, "row")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get(storage.KindSession, "absent")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteReportsCount", func(t *testing.T) {
		if err := s.Put(storage.KindSession, "s-del", []byte("x")); err != nil {
			t.Fatal(err)
		}
		deleted, err := s.Delete(storage.KindSession, "s-del")
		if err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if !deleted {
			t.Error("first delete should report removal")
		}
		deleted, err = s.Delete(storage.KindSession, "s-del")
		if err != nil {
			t.Fatal(err)
		}
		if deleted {
			t.Error("second delete should report nothing removed")
		}
	})

	t.Run("ListScopedToKind", func(t *testing.T) {
		if err := s.Put(storage.KindSession, "list-a", []byte("1")); err != nil {
			t.Fatal(err)
		}
		if err := s.Put("OTHER", "list-b", []byte("2")); err != nil {
			t.Fatal(err)
		}
		ids, err := s.List("OTHER")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(ids) != 1 || ids[0] != "list-b" {
			t.Fatalf("expected [list-b], got %v", ids)
		}
	})

	t.Run("PersistsAcrossReopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reopen.db")
		s1, err := NewRepositoryFromFile(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := s1.Put(storage.KindSession, "durable", []byte("v")); err != nil {
			t.Fatal(err)
		}
		if err := s1.Close(); err != nil {
			t.Fatal(err)
		}

		s2, err := NewRepositoryFromFile(path, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer s2.Close()
		data, err := s2.Get(storage.KindSession, "durable")
		if err != nil {
			t.Fatalf("Get after reopen failed: %v", err)
		}
		if string(data) != "v" {
			t.Errorf("got %q, want %q", data, "v")
		}
	})
}
