package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"notes-go/internal/kv"
	"notes-go/internal/notes"
	"notes-go/internal/objects"
	"notes-go/internal/store"
)

// Backend builds a fresh storage backend for a test.
type Backend struct {
	Name string
	New  func(t *testing.T) notes.Store
}

// Backends returns every backend/capability combination. Repository behavior
// must be identical across all of them.
func Backends() []Backend {
	return []Backend{
		{Name: "embedded/memory", New: func(t *testing.T) notes.Store {
			return store.NewEmbeddedStore(kv.NewMemoryStore(), "", notes.NewNopLogger())
		}},
		{Name: "embedded/sqlite", New: func(t *testing.T) notes.Store {
			t.Helper()
			s, err := kv.NewSQLiteStore(filepath.Join(t.TempDir(), kv.DatabaseFile))
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			es := store.NewEmbeddedStore(s, "", notes.NewNopLogger())
			t.Cleanup(func() { es.Close() })
			return es
		}},
		{Name: "directory/memory", New: func(t *testing.T) notes.Store {
			return store.NewDirectoryStore(objects.NewMemoryStore(), notes.NewNopLogger())
		}},
		{Name: "directory/filesystem", New: func(t *testing.T) notes.Store {
			t.Helper()
			fs, err := objects.NewFileSystemStore(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemStore() error = %v", err)
			}
			return store.NewDirectoryStore(fs, notes.NewNopLogger())
		}},
	}
}

// NewTestRepository creates a repository over an in-memory directory backend
// with a fixed clock and sequential ids.
func NewTestRepository(t *testing.T) (*notes.Repository, *StubClock) {
	t.Helper()
	clock := FixedClock()
	s := store.NewDirectoryStore(objects.NewMemoryStore(), notes.NewNopLogger())
	return notes.NewRepository(s, notes.NewNopLogger(), clock, NewStubIDGenerator(), nil), clock
}

// CountingKV wraps a KeyValueStore and counts Set calls.
type CountingKV struct {
	notes.KeyValueStore

	mu   sync.Mutex
	sets int
}

func NewCountingKV(inner notes.KeyValueStore) *CountingKV {
	return &CountingKV{KeyValueStore: inner}
}

func (c *CountingKV) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.KeyValueStore.Set(ctx, key, value)
}

// Sets returns the number of Set calls so far.
func (c *CountingKV) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}
