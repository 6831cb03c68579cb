package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"notes-go/internal/notes"
)

// DefaultNamespace prefixes collection keys in the key-value store, so the
// default scope "files" lives under "fileManager_files".
const DefaultNamespace = "fileManager"

// EmbeddedStore keeps every record of a scope in one JSON array stored under
// a single key. Each mutation reads the whole collection, changes it in
// memory and writes it back with one Set.
type EmbeddedStore struct {
	kv        notes.KeyValueStore
	namespace string
	logger    notes.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewEmbeddedStore creates an embedded backend over kv. An empty namespace
// selects DefaultNamespace.
func NewEmbeddedStore(kv notes.KeyValueStore, namespace string, logger notes.Logger) *EmbeddedStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &EmbeddedStore{kv: kv, namespace: namespace, logger: logger}
}

func (s *EmbeddedStore) Kind() string { return "embedded" }

// Key returns the key-value key holding the collection for scope.
func (s *EmbeddedStore) Key(scope string) string {
	return s.namespace + "_" + scope
}

// load returns the raw elements of scope's collection. A key that was never
// set is an empty collection.
func (s *EmbeddedStore) load(ctx context.Context, scope string) ([]json.RawMessage, error) {
	value, ok, err := s.kv.Get(ctx, s.Key(scope))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	if !ok {
		return nil, nil
	}
	return notes.SplitCollection([]byte(value))
}

func (s *EmbeddedStore) save(ctx context.Context, scope string, entries []json.RawMessage) error {
	data, err := notes.JoinCollection(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	if err := s.kv.Set(ctx, s.Key(scope), string(data)); err != nil {
		return fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	return nil
}

func (s *EmbeddedStore) ListEntries(ctx context.Context, scope string) ([]notes.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}

	entries := make([]notes.Entry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, notes.Entry{ID: notes.RecordID(r), Data: r})
	}
	return entries, nil
}

// GetEntry returns the first element whose id matches.
func (s *EmbeddedStore) GetEntry(ctx context.Context, scope, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, r := range raw {
		if notes.RecordID(r) == id {
			return r, nil
		}
	}
	return nil, notes.ErrNotFound
}

// PutEntry replaces the first element with a matching id and drops any later
// duplicates, or appends when the id is new. Elements that cannot be decoded
// are written back untouched. A collection that is not a JSON array is never
// overwritten.
func (s *EmbeddedStore) PutEntry(ctx context.Context, scope, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.load(ctx, scope)
	if err != nil {
		return err
	}

	updated := make([]json.RawMessage, 0, len(raw)+1)
	replaced := false
	for _, r := range raw {
		if notes.RecordID(r) != id {
			updated = append(updated, r)
			continue
		}
		if !replaced {
			updated = append(updated, data)
			replaced = true
		}
	}
	if !replaced {
		updated = append(updated, data)
	}

	return s.save(ctx, scope, updated)
}

// DeleteEntry removes every element with a matching id. Nothing is written
// when the id is absent.
func (s *EmbeddedStore) DeleteEntry(ctx context.Context, scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.load(ctx, scope)
	if err != nil {
		return err
	}

	kept := make([]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		if notes.RecordID(r) != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(raw) {
		return nil
	}

	s.logger.Debug("rewriting collection", "key", s.Key(scope), "entries", len(kept))
	return s.save(ctx, scope, kept)
}

func (s *EmbeddedStore) Close() error {
	return s.kv.Close()
}

var _ notes.Store = (*EmbeddedStore)(nil)
