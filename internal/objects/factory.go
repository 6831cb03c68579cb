package objects

import (
	"context"
	"fmt"

	"notes-go/internal/config"
	"notes-go/internal/notes"
)

// NewStoreFromConfig creates an ObjectStore based on the objects config type.
func NewStoreFromConfig(ctx context.Context, cfg config.ObjectsConfig) (notes.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3StoreFromConfig(ctx, cfg)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown object store type: %s", cfg.Type)
	}
}
