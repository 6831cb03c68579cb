package store

import (
	"context"
	"fmt"
	"runtime"

	"notes-go/internal/config"
	"notes-go/internal/kv"
	"notes-go/internal/notes"
	"notes-go/internal/objects"
)

// ResolveMode turns a configured storage mode into a concrete one. "auto"
// (or empty) picks the embedded backend on platforms without a writable
// filesystem and the directory backend everywhere else.
func ResolveMode(mode string) string {
	return resolveMode(mode, runtime.GOOS)
}

func resolveMode(mode, goos string) string {
	if mode != "" && mode != config.ModeAuto {
		return mode
	}
	switch goos {
	case "js", "wasip1":
		return config.ModeEmbedded
	default:
		return config.ModeDirectory
	}
}

// NewStoreFromConfig selects and builds the storage backend. The choice is
// made once; the returned Store is injected into the Repository.
func NewStoreFromConfig(ctx context.Context, cfg config.StorageConfig, logger notes.Logger) (notes.Store, error) {
	switch mode := ResolveMode(cfg.Mode); mode {
	case config.ModeEmbedded:
		kvs, err := kv.NewStoreFromConfig(cfg.KV)
		if err != nil {
			return nil, fmt.Errorf("creating kv store: %w", err)
		}
		return NewEmbeddedStore(kvs, cfg.KV.Namespace, logger), nil
	case config.ModeDirectory:
		objs, err := objects.NewStoreFromConfig(ctx, cfg.Objects)
		if err != nil {
			return nil, fmt.Errorf("creating object store: %w", err)
		}
		return NewDirectoryStore(objs, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", mode)
	}
}
