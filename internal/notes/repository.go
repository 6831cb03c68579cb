package notes

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Repository is the public operation set over file records. It is backend
// agnostic: the Store it wraps decides where serialized records live.
type Repository struct {
	store   Store
	logger  Logger
	clock   Clock
	idgen   IDGenerator
	metrics Metrics
}

// NewRepository creates a Repository over store. metrics may be nil.
func NewRepository(store Store, logger Logger, clock Clock, idgen IDGenerator, metrics Metrics) *Repository {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Repository{
		store:   store,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		metrics: metrics,
	}
}

// Backend returns the kind of the underlying store.
func (r *Repository) Backend() string {
	return r.store.Kind()
}

// Now returns the repository clock's current time. Callers preparing a record
// for Write use it to stamp modifiedAt.
func (r *Repository) Now() time.Time {
	return r.clock.Now()
}

func (r *Repository) observe(op string, start time.Time, err error) {
	r.metrics.ObserveOperation(op, r.clock.Now().Sub(start), err)
}

// List returns every record in scope, most recently modified first.
// Entries that cannot be read or decoded are skipped and logged.
func (r *Repository) List(ctx context.Context, scope string) (_ []*FileRecord, err error) {
	start := r.clock.Now()
	defer func() { r.observe("list", start, err) }()

	if err := ValidateScope(scope); err != nil {
		return nil, err
	}

	entries, err := r.store.ListEntries(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			r.logger.Warn("skipping unreadable collection", "scope", scope, "error", err)
			return []*FileRecord{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", scope, err)
	}

	records := make([]*FileRecord, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil {
			r.logger.Warn("skipping unreadable record", "scope", scope, "id", e.ID, "error", e.Err)
			continue
		}
		rec, err := DecodeRecord(e.Data)
		if err != nil {
			r.logger.Warn("skipping corrupt record", "scope", scope, "id", e.ID, "error", err)
			continue
		}
		records = append(records, rec)
	}

	sortByModified(records)
	return records, nil
}

// sortByModified orders records by modifiedAt descending, breaking ties by id
// so the result is deterministic across backends.
func sortByModified(records []*FileRecord) {
	slices.SortFunc(records, func(a, b *FileRecord) int {
		if c := b.ModifiedAt.Compare(a.ModifiedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Read returns the record with id. It fails with ErrNotFound when no such
// record exists and with ErrCorruptRecord when it cannot be decoded.
func (r *Repository) Read(ctx context.Context, scope, id string) (_ *FileRecord, err error) {
	start := r.clock.Now()
	defer func() { r.observe("read", start, err) }()

	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if ValidateID(id) != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", scope, id, ErrNotFound)
	}

	data, err := r.store.GetEntry(ctx, scope, id)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", scope, id, err)
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", scope, id, err)
	}
	return rec, nil
}

// Write inserts record, or fully replaces the stored record with the same id.
// The caller is responsible for setting ModifiedAt; Write stores the record as
// given. On failure the previously stored value is unchanged.
func (r *Repository) Write(ctx context.Context, scope string, record *FileRecord) (err error) {
	start := r.clock.Now()
	defer func() { r.observe("write", start, err) }()

	if err := ValidateScope(scope); err != nil {
		return err
	}
	if err := record.Validate(); err != nil {
		return err
	}

	data, err := EncodeRecord(record)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w: %w", scope, record.ID, ErrStorageFailure, err)
	}

	if err := r.store.PutEntry(ctx, scope, record.ID, data); err != nil {
		return fmt.Errorf("writing %s/%s: %w", scope, record.ID, err)
	}

	r.logger.Debug("record written", "scope", scope, "id", record.ID, "backend", r.store.Kind())
	return nil
}

// Remove deletes the record with id. Removing an id that does not exist is a no-op.
func (r *Repository) Remove(ctx context.Context, scope, id string) (err error) {
	start := r.clock.Now()
	defer func() { r.observe("remove", start, err) }()

	if err := ValidateScope(scope); err != nil {
		return err
	}
	if ValidateID(id) != nil {
		return nil
	}

	if err := r.store.DeleteEntry(ctx, scope, id); err != nil {
		return fmt.Errorf("removing %s/%s: %w", scope, id, err)
	}

	r.logger.Debug("record removed", "scope", scope, "id", id)
	return nil
}

// CreateEmpty persists and returns a new record with a fresh id, the default
// name and type, empty content and createdAt == modifiedAt == now.
func (r *Repository) CreateEmpty(ctx context.Context, scope string) (*FileRecord, error) {
	now := r.clock.Now()
	rec := &FileRecord{
		ID:         r.idgen.New(),
		Name:       DefaultName,
		Content:    "",
		Type:       DefaultType,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := r.Write(ctx, scope, rec); err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	r.logger.Info("record created", "scope", scope, "id", rec.ID)
	return rec, nil
}

// Search returns the records whose name contains query, ignoring case,
// in List order. An empty query matches everything.
func (r *Repository) Search(ctx context.Context, scope, query string) ([]*FileRecord, error) {
	records, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records, nil
	}

	matched := records[:0]
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), query) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Edit describes a partial change to a record. Nil fields are left as they are.
type Edit struct {
	Name    *string `json:"name,omitempty"`
	Content *string `json:"content,omitempty"`
	Type    *string `json:"type,omitempty"`
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return e.Name == nil && e.Content == nil && e.Type == nil
}

// Update applies edit to the record with id, stamps modifiedAt with the
// current time and writes the result back. This is the editor's save path.
func (r *Repository) Update(ctx context.Context, scope, id string, edit Edit) (*FileRecord, error) {
	rec, err := r.Read(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if edit.Name != nil {
		rec.Name = *edit.Name
	}
	if edit.Content != nil {
		rec.Content = *edit.Content
	}
	if edit.Type != nil {
		rec.Type = *edit.Type
	}

	now := r.clock.Now()
	if now.Before(rec.CreatedAt) {
		// A clock that moved backwards must not break modifiedAt >= createdAt.
		now = rec.CreatedAt
	}
	rec.ModifiedAt = now

	if err := r.Write(ctx, scope, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Rename changes the display name of the record with id.
func (r *Repository) Rename(ctx context.Context, scope, id, name string) (*FileRecord, error) {
	return r.Update(ctx, scope, id, Edit{Name: &name})
}

// Export hands the content of the record with id to exporter under the
// record's export file name.
func (r *Repository) Export(ctx context.Context, scope, id string, exporter Exporter) (string, error) {
	rec, err := r.Read(ctx, scope, id)
	if err != nil {
		return "", err
	}

	location, err := exporter.Export(ctx, ExportFilename(rec.Name), rec.Content)
	if err != nil {
		return "", fmt.Errorf("exporting %s/%s: %w", scope, id, err)
	}

	r.logger.Info("record exported", "scope", scope, "id", id, "location", location)
	return location, nil
}

// Clear removes every listable record in scope and returns how many were removed.
// Entries that List skips as corrupt are left in place.
func (r *Repository) Clear(ctx context.Context, scope string) (int, error) {
	records, err := r.List(ctx, scope)
	if err != nil {
		return 0, err
	}

	for i, rec := range records {
		if err := r.Remove(ctx, scope, rec.ID); err != nil {
			return i, fmt.Errorf("clearing %s: %w", scope, err)
		}
	}

	r.logger.Info("scope cleared", "scope", scope, "count", len(records))
	return len(records), nil
}
