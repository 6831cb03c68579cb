package notes

import "context"

// Entry is one stored record as raw bytes, before decoding.
type Entry struct {
	// ID is the record id the backend associates with the entry. It may be
	// empty for an embedded-store element whose id cannot be read.
	ID string
	// Data is the serialized record.
	Data []byte
	// Err is set when the backend found the entry but could not read it.
	// The repository skips such entries when listing.
	Err error
}

// Store is a storage backend for one or more scopes of records. It moves
// serialized records around; encoding and decoding belong to the Repository.
// A backend is selected once at startup and injected into the Repository.
type Store interface {
	// Kind names the backend variant ("embedded", "directory").
	Kind() string

	// ListEntries returns every entry stored in scope, in no particular order.
	ListEntries(ctx context.Context, scope string) ([]Entry, error)

	// GetEntry returns the serialized record for id, or an error wrapping
	// ErrNotFound when it does not exist.
	GetEntry(ctx context.Context, scope, id string) ([]byte, error)

	// PutEntry atomically inserts or replaces the record for id.
	// On failure the previously stored value is left unchanged.
	PutEntry(ctx context.Context, scope, id string, data []byte) error

	// DeleteEntry removes the record for id. Deleting a missing id is not an error.
	DeleteEntry(ctx context.Context, scope, id string) error

	// Close releases resources held by the backend.
	Close() error
}

// KeyValueStore is the capability used by the embedded backend: a store of
// named text blobs, each replaced as a whole.
type KeyValueStore interface {
	// Get returns the value for key. ok is false when the key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set atomically replaces the value for key.
	Set(ctx context.Context, key, value string) error

	Close() error
}

// ObjectStore is the capability used by the directory backend: named byte
// streams addressed by slash-separated paths.
type ObjectStore interface {
	// ReadObject returns the content of name, or an error wrapping
	// ErrObjectNotFound when it does not exist.
	ReadObject(ctx context.Context, name string) ([]byte, error)

	// WriteObject atomically creates or replaces name.
	WriteObject(ctx context.Context, name string, data []byte) error

	// DeleteObject removes name. Removing a missing object is not an error.
	DeleteObject(ctx context.Context, name string) error

	// ListObjects returns the base names of the objects directly under dir.
	// A missing dir yields an empty list.
	ListObjects(ctx context.Context, dir string) ([]string, error)
}

// Exporter hands already-serialized text to the user (a file on disk, a
// download, standard output). It returns a description of where the content
// went, e.g. the written path.
type Exporter interface {
	Export(ctx context.Context, filename, content string) (string, error)
}
