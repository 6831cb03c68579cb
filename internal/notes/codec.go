package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// wireRecord mirrors FileRecord with pointer fields so that DecodeRecord can
// tell a missing field apart from an empty one.
type wireRecord struct {
	ID         *string    `json:"id"`
	Name       *string    `json:"name"`
	Content    *string    `json:"content"`
	Type       *string    `json:"type"`
	CreatedAt  *time.Time `json:"createdAt"`
	ModifiedAt *time.Time `json:"modifiedAt"`
	Size       *int64     `json:"size"`
}

// EncodeRecord serializes a record as two-space indented JSON.
func EncodeRecord(r *FileRecord) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", r.ID, err)
	}
	return data, nil
}

// DecodeRecord parses a record produced by EncodeRecord (or by any writer of
// the same field set; key order does not matter). Malformed input and
// missing required fields fail with ErrCorruptRecord.
func DecodeRecord(data []byte) (*FileRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	var missing []string
	if w.ID == nil || *w.ID == "" {
		missing = append(missing, "id")
	}
	if w.Name == nil {
		missing = append(missing, "name")
	}
	if w.Content == nil {
		missing = append(missing, "content")
	}
	if w.Type == nil {
		missing = append(missing, "type")
	}
	if w.CreatedAt == nil {
		missing = append(missing, "createdAt")
	}
	if w.ModifiedAt == nil {
		missing = append(missing, "modifiedAt")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", ErrCorruptRecord, missing)
	}

	return &FileRecord{
		ID:         *w.ID,
		Name:       *w.Name,
		Content:    *w.Content,
		Type:       *w.Type,
		CreatedAt:  *w.CreatedAt,
		ModifiedAt: *w.ModifiedAt,
		Size:       w.Size,
	}, nil
}

// SplitCollection parses a serialized collection (a JSON array of records)
// into its raw elements without decoding them, so one bad element does not
// affect the others. Empty input is an empty collection. Anything other than
// a JSON array fails with ErrCorruptRecord.
func SplitCollection(data []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: collection is not a JSON array: %w", ErrCorruptRecord, err)
	}
	return entries, nil
}

// JoinCollection serializes raw elements back into a compact JSON array.
func JoinCollection(entries []json.RawMessage) ([]byte, error) {
	if entries == nil {
		entries = []json.RawMessage{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding collection: %w", err)
	}
	return data, nil
}

// RecordID extracts the id of a raw collection element. It returns "" when
// the element is not an object or has no string id.
func RecordID(raw []byte) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}
