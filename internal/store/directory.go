package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"notes-go/internal/notes"
)

const recordSuffix = ".json"

// DirectoryStore keeps one object per record at <scope>/<id>.json. Reads and
// writes touch a single object; listing enumerates the scope directory.
type DirectoryStore struct {
	objects notes.ObjectStore
	logger  notes.Logger
}

// NewDirectoryStore creates a directory backend over objects.
func NewDirectoryStore(objects notes.ObjectStore, logger notes.Logger) *DirectoryStore {
	return &DirectoryStore{objects: objects, logger: logger}
}

func (s *DirectoryStore) Kind() string { return "directory" }

// ObjectName returns the object name of the record id in scope.
func ObjectName(scope, id string) string {
	return path.Join(scope, id+recordSuffix)
}

// ListEntries reads every .json object in the scope. Objects that vanish
// between listing and reading are skipped; other read failures are reported
// per entry so the rest of the scope still lists.
func (s *DirectoryStore) ListEntries(ctx context.Context, scope string) ([]notes.Entry, error) {
	names, err := s.objects.ListObjects(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}

	entries := make([]notes.Entry, 0, len(names))
	for _, name := range names {
		id, ok := strings.CutSuffix(name, recordSuffix)
		if !ok || id == "" {
			continue
		}

		data, err := s.objects.ReadObject(ctx, path.Join(scope, name))
		if err != nil {
			if errors.Is(err, notes.ErrObjectNotFound) {
				continue
			}
			entries = append(entries, notes.Entry{ID: id, Err: err})
			continue
		}
		entries = append(entries, notes.Entry{ID: id, Data: data})
	}
	return entries, nil
}

func (s *DirectoryStore) GetEntry(ctx context.Context, scope, id string) ([]byte, error) {
	data, err := s.objects.ReadObject(ctx, ObjectName(scope, id))
	if err != nil {
		if errors.Is(err, notes.ErrObjectNotFound) {
			return nil, notes.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	return data, nil
}

func (s *DirectoryStore) PutEntry(ctx context.Context, scope, id string, data []byte) error {
	if err := s.objects.WriteObject(ctx, ObjectName(scope, id), data); err != nil {
		return fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	return nil
}

func (s *DirectoryStore) DeleteEntry(ctx context.Context, scope, id string) error {
	if err := s.objects.DeleteObject(ctx, ObjectName(scope, id)); err != nil {
		return fmt.Errorf("%w: %w", notes.ErrStorageFailure, err)
	}
	return nil
}

func (s *DirectoryStore) Close() error {
	if c, ok := s.objects.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ notes.Store = (*DirectoryStore)(nil)
