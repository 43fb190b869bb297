package cache

import (
	"context"
	"errors"
	"os"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, 1, "a"); err != nil || ok {
		t.Fatalf("expected miss on empty store, got ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, 1, "a", []byte("one")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	v, ok, err := s.Get(ctx, 1, "a")
	if err != nil || !ok || string(v) != "one" {
		t.Fatalf("expected hit, got %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := s.Get(ctx, 2, "a"); ok {
		t.Fatalf("expected other generation to miss")
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, 1, "a"); ok {
		t.Fatalf("expected miss after clear")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(url, "faithcheck-test:")
	if err != nil {
		t.Fatalf("NewRedisStore error: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStoreRequiresPrefix(t *testing.T) {
	if _, err := NewRedisStore("redis://127.0.0.1:1/0", ""); !errors.Is(err, ErrEmptyPrefix) {
		t.Fatalf("expected ErrEmptyPrefix, got %v", err)
	}
}

func TestEntryKeyIsScoped(t *testing.T) {
	if entryKey("p:", 1, "x") == entryKey("p:", 2, "x") {
		t.Fatalf("expected generation in key")
	}
	if got := entryKey("p:", 3, "x"); got[:8] != "p:gen:3:" {
		t.Fatalf("unexpected key %q", got)
	}
}
