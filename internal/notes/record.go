package notes

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// DefaultName is the display name given to records created by CreateEmpty.
	DefaultName = "Untitled Note"

	// DefaultType is the classification tag given to records created by CreateEmpty.
	DefaultType = "text"
)

// FileRecord is a single note. It is the only persisted domain entity.
// Values returned by the Repository are copies; mutating them has no effect
// on storage until they are passed back to Write.
type FileRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       *int64    `json:"size,omitempty"` // informational, never set by write paths
}

// Clone returns a deep copy of r.
func (r *FileRecord) Clone() *FileRecord {
	c := *r
	if r.Size != nil {
		size := *r.Size
		c.Size = &size
	}
	return &c
}

// Validate checks the invariants a record must satisfy before it is stored.
func (r *FileRecord) Validate() error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	if r.CreatedAt.IsZero() || r.ModifiedAt.IsZero() {
		return fmt.Errorf("%w: record %s is missing timestamps", ErrInvalidRecord, r.ID)
	}
	if r.ModifiedAt.Before(r.CreatedAt) {
		return fmt.Errorf("%w: record %s modifiedAt %s is before createdAt %s",
			ErrInvalidRecord, r.ID, r.ModifiedAt.Format(time.RFC3339), r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// ValidateID rejects identifiers that every backend cannot store and list
// alike: empty ids, path separators, control characters, and a leading dot
// (which covers "." and ".." and hidden or temp file names).
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) || strings.ContainsFunc(id, unicode.IsControl) {
		return fmt.Errorf("%w: id %q is not a valid record identifier", ErrInvalidRecord, id)
	}
	return nil
}

// ValidateScope rejects scope names that are empty or contain parent references.
// Nested scopes ("work/drafts") are allowed.
func ValidateScope(scope string) error {
	if scope == "" {
		return fmt.Errorf("%w: empty scope", ErrInvalidScope)
	}
	if strings.HasPrefix(scope, "/") || strings.Contains(scope, `\`) {
		return fmt.Errorf("%w: scope %q must be a relative slash-separated name", ErrInvalidScope, scope)
	}
	for _, part := range strings.Split(scope, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: scope %q contains an empty or relative segment", ErrInvalidScope, scope)
		}
	}
	return nil
}

// IconFor maps a record type to the name of the icon the presentation layer
// should show. Unknown types fall back to a generic text icon.
func IconFor(fileType string) string {
	switch fileType {
	case "image":
		return "image"
	case "audio":
		return "music"
	case "video":
		return "video"
	case "archive":
		return "archive"
	case "code":
		return "code"
	default:
		return "file-text"
	}
}

// ExportFilename returns the file name used when a record's content is
// handed to an Exporter: the record name with a .txt extension.
func ExportFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = DefaultName
	}
	return name + ".txt"
}
