package notes

import "errors"

// Error kinds surfaced by the Repository. Callers match them with errors.Is;
// the returned errors always carry additional context.
var (
	// ErrNotFound is returned when no record with the requested id exists in the scope.
	ErrNotFound = errors.New("record not found")

	// ErrCorruptRecord is returned when stored data cannot be decoded into a record.
	// List skips such entries; Read propagates the error.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrStorageFailure wraps any I/O or serialization failure of a backend.
	ErrStorageFailure = errors.New("storage failure")

	// ErrInvalidRecord is returned by Write when a record breaks the data model
	// invariants (empty id, modifiedAt before createdAt).
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidScope is returned when a scope name cannot be mapped to storage.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrObjectNotFound is returned by ObjectStore.ReadObject for a missing object.
	ErrObjectNotFound = errors.New("object not found")
)

// ErrorKind classifies err into a short label used for metrics and API error codes.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorruptRecord):
		return "corrupt_record"
	case errors.Is(err, ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, ErrInvalidScope):
		return "invalid_scope"
	case errors.Is(err, ErrStorageFailure):
		return "storage_failure"
	default:
		return "other"
	}
}
