package objects

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"notes-go/internal/notes"
)

// MemoryStore is an in-memory ObjectStore, useful for testing.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) ReadObject(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", notes.ErrObjectNotFound, name)
	}
	return slices.Clone(data), nil
}

func (m *MemoryStore) WriteObject(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[path.Clean(name)] = slices.Clone(data)
	return nil
}

func (m *MemoryStore) DeleteObject(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, path.Clean(name))
	return nil
}

func (m *MemoryStore) ListObjects(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := path.Clean(dir) + "/"
	names := []string{}
	for key := range m.objects {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	slices.Sort(names)
	return names, nil
}

var _ notes.ObjectStore = (*MemoryStore)(nil)
