package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if _, ok := store.Get(); ok {
		t.Fatal("Expected empty store before Set")
	}

	tokens := []string{
		"eyJhbGciOiJIUzI1NiJ9.payload.sig",
		"plain-opaque-token",
		"token with spaces and ünïcode",
	}
	for _, token := range tokens {
		if err := store.Set(token); err != nil {
			t.Fatalf("Set(%q) error = %v", token, err)
		}
		got, ok := store.Get()
		if !ok {
			t.Fatalf("Get() after Set(%q) reported absent", token)
		}
		if got != token {
			t.Errorf("Get() = %q, want %q", got, token)
		}
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("Expected absent credential after Clear")
	}
}

func TestFileStore_ClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// Clearing a store that never held a token must not error
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Second Clear() error = %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("Expected corrupt file to read as absent credential")
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := store.Set("secret"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}

func TestMemStore_RoundTrip(t *testing.T) {
	store := NewMemStore()

	if _, ok := store.Get(); ok {
		t.Fatal("Expected empty store")
	}
	if err := store.Set("tok-123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok := store.Get()
	if !ok || got != "tok-123" {
		t.Errorf("Get() = %q, %v, want %q, true", got, ok, "tok-123")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Error("Expected absent credential after Clear")
	}
}
