package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "state", "test.db")
	s, err := NewSQLiteStore(WithDSN(dsn))
	if err != nil {
		t.Fatalf("Expected no error creating store, got %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(); err == nil {
		t.Error("Expected error for missing DSN, got nil")
	}
}

func TestSQLiteStoreCRUD(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for absent key, got %q", got)
	}

	if err := s.Put(ctx, "users", []byte(`[42]`)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err = s.Get(ctx, "users")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(got) != `[42]` {
		t.Errorf("Expected stored value back, got %q", got)
	}

	// Put is a full overwrite of the key
	if err := s.Put(ctx, "users", []byte(`[42,7]`)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, _ = s.Get(ctx, "users")
	if string(got) != `[42,7]` {
		t.Errorf("Expected overwritten value, got %q", got)
	}

	if err := s.Delete(ctx, "users"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, _ = s.Get(ctx, "users")
	if got != nil {
		t.Errorf("Expected nil after delete, got %q", got)
	}
}

func TestSQLiteStoreDeleteAbsentKey(t *testing.T) {
	s := newTestSQLiteStore(t)
	if err := s.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Expected delete of absent key to succeed, got %v", err)
	}
}
