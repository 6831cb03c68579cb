package kv

import (
	"fmt"
	"os"
	"path/filepath"

	"notes-go/internal/config"
	"notes-go/internal/notes"
)

// DatabaseFile is the name of the SQLite file inside KVConfig.DataDir.
const DatabaseFile = "notes.db"

// NewStoreFromConfig creates a KeyValueStore based on the kv config type.
func NewStoreFromConfig(cfg config.KVConfig) (notes.KeyValueStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, DatabaseFile))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv store type: %s", cfg.Type)
	}
}
