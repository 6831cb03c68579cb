package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"notes-go/internal/cache"
	"notes-go/internal/config"
	"notes-go/internal/export"
	"notes-go/internal/metrics"
	"notes-go/internal/notes"
	"notes-go/internal/server"
	"notes-go/internal/store"
)

// NotesApp is the application layer between the CLI and the Repository.
// It constructs all dependencies from config, exposes high-level operations
// bound to the current scope, and releases the backend on Close.
type NotesApp struct {
	cfg      *config.Config
	store    notes.Store
	repo     *notes.Repository
	recorder *metrics.Recorder
	logger   *slogAdapter
	op       *Operation
	scope    string
	logFile  *os.File
}

// NewNotesApp creates a fully wired NotesApp from the given config.
// operation identifies the CLI command being run (e.g. "list", "serve").
// The caller must call Close when done.
func NewNotesApp(ctx context.Context, cfg *config.Config, operation string) (*NotesApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := NewOperation(operation, "", time.Now())
	sl, logFile, err := newLogger(cfg.LogDir, op.ID, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	recorder := metrics.NewRecorder(true)

	st, err := store.NewStoreFromConfig(ctx, cfg.Storage, logger)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}
	if cfg.Cache.Size > 0 {
		st = cache.NewCachedStore(st, cfg.Cache.Size, cfg.Cache.TTL.Duration, recorder)
	}

	scope := cfg.Scope
	if scope == "" {
		scope = config.DefaultScope
	}

	repo := notes.NewRepository(st, logger, notes.RealClock{}, notes.UUIDGenerator{}, recorder)
	logger.Debug("app started", "operation", operation, "backend", st.Kind(), "scope", scope)

	return &NotesApp{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		recorder: recorder,
		logger:   logger,
		op:       op,
		scope:    scope,
		logFile:  logFile,
	}, nil
}

// SetScope switches the scope subsequent operations act on.
func (a *NotesApp) SetScope(scope string) error {
	if err := notes.ValidateScope(scope); err != nil {
		return err
	}
	a.scope = scope
	return nil
}

// Scope returns the scope operations act on.
func (a *NotesApp) Scope() string { return a.scope }

// Backend returns the kind of the selected storage backend.
func (a *NotesApp) Backend() string { return a.repo.Backend() }

// SetParameters records the command arguments logged with the operation.
func (a *NotesApp) SetParameters(params string) { a.op.Parameters = params }

// List returns every record in the current scope, most recently modified first.
func (a *NotesApp) List(ctx context.Context) ([]*notes.FileRecord, error) {
	recs, err := a.repo.List(ctx, a.scope)
	return recs, a.op.Track(err)
}

// Search returns the records whose name contains query.
func (a *NotesApp) Search(ctx context.Context, query string) ([]*notes.FileRecord, error) {
	recs, err := a.repo.Search(ctx, a.scope, query)
	return recs, a.op.Track(err)
}

// Show returns the record with id.
func (a *NotesApp) Show(ctx context.Context, id string) (*notes.FileRecord, error) {
	rec, err := a.repo.Read(ctx, a.scope, id)
	return rec, a.op.Track(err)
}

// Create makes a new empty record and applies edit to it, if any.
func (a *NotesApp) Create(ctx context.Context, edit notes.Edit) (*notes.FileRecord, error) {
	rec, err := a.repo.CreateEmpty(ctx, a.scope)
	if err != nil {
		return nil, a.op.Track(err)
	}
	if edit.Empty() {
		return rec, nil
	}
	rec, err = a.repo.Update(ctx, a.scope, rec.ID, edit)
	return rec, a.op.Track(err)
}

// Edit applies edit to the record with id.
func (a *NotesApp) Edit(ctx context.Context, id string, edit notes.Edit) (*notes.FileRecord, error) {
	if edit.Empty() {
		return nil, a.op.Track(fmt.Errorf("nothing to edit: set a name, content or type"))
	}
	rec, err := a.repo.Update(ctx, a.scope, id, edit)
	return rec, a.op.Track(err)
}

// Rename changes the name of the record with id.
func (a *NotesApp) Rename(ctx context.Context, id, name string) (*notes.FileRecord, error) {
	rec, err := a.repo.Rename(ctx, a.scope, id, name)
	return rec, a.op.Track(err)
}

// Remove deletes the record with id. Removing a missing id is not an error.
func (a *NotesApp) Remove(ctx context.Context, id string) error {
	return a.op.Track(a.repo.Remove(ctx, a.scope, id))
}

// ExportToDir writes the record's content to dir, or to the configured
// export directory when dir is empty. It returns the written path.
func (a *NotesApp) ExportToDir(ctx context.Context, id, dir string) (string, error) {
	if dir == "" {
		dir = a.cfg.Export.Dir
	}
	path, err := a.repo.Export(ctx, a.scope, id, export.NewFileExporter(dir))
	return path, a.op.Track(err)
}

// ExportTo writes the record's content to w.
func (a *NotesApp) ExportTo(ctx context.Context, id string, w io.Writer) error {
	_, err := a.repo.Export(ctx, a.scope, id, export.NewWriterExporter(w))
	return a.op.Track(err)
}

// Clear removes every record in the current scope and returns how many were removed.
func (a *NotesApp) Clear(ctx context.Context) (int, error) {
	n, err := a.repo.Clear(ctx, a.scope)
	return n, a.op.Track(err)
}

// Serve runs the HTTP API until ctx is canceled. An empty addr uses the
// configured server address.
func (a *NotesApp) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	srv := server.New(a.repo, a.logger, a.recorder, server.Options{
		Addr:           addr,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Scope:          a.scope,
	})
	return a.op.Track(srv.Run(ctx))
}

// Close logs the operation outcome, writes the metrics textfile if one is
// configured, and closes the store and log file.
func (a *NotesApp) Close() error {
	var firstErr error

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"parameters", a.op.Parameters,
		"status", a.op.Status,
		"duration", time.Since(a.op.StartedAt).Round(time.Millisecond),
	)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.recorder.WriteTextfile(path); err != nil {
			firstErr = fmt.Errorf("writing metrics textfile: %w", err)
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
