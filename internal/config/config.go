package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultScope is the scope used when neither the config nor a flag names one.
const DefaultScope = "files"

// Storage modes for StorageConfig.Mode.
const (
	ModeAuto      = "auto"
	ModeEmbedded  = "embedded"
	ModeDirectory = "directory"
)

// Config represents the main configuration for notes.
type Config struct {
	BaseDir  string        `toml:"base_dir"`
	LogDir   string        `toml:"log_dir"`
	LogLevel string        `toml:"log_level"` // "debug", "info" (default), "warn", "error"
	Scope    string        `toml:"scope"`
	Storage  StorageConfig `toml:"storage"`
	Cache    CacheConfig   `toml:"cache"`
	Export   ExportConfig  `toml:"export"`
	Metrics  MetricsConfig `toml:"metrics"`
	Server   ServerConfig  `toml:"server"`
}

// StorageConfig selects the storage backend. Only the section matching the
// resolved mode is used.
type StorageConfig struct {
	Mode    string        `toml:"mode"` // "auto" (default), "embedded" or "directory"
	KV      KVConfig      `toml:"kv"`
	Objects ObjectsConfig `toml:"objects"`
}

// KVConfig configures the key-value store behind the embedded backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type KVConfig struct {
	Type      string `toml:"type"`                // "sqlite" or "memory"
	DataDir   string `toml:"data_dir,omitempty"`  // only used for type=sqlite
	Namespace string `toml:"namespace,omitempty"` // key prefix for collections
}

// ObjectsConfig configures the object store behind the directory backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ObjectsConfig struct {
	Type string `toml:"type"` // "filesystem", "s3" or "memory"

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3UsePathStyle    bool   `toml:"s3_use_path_style,omitempty"`
}

// CacheConfig configures the read cache. A zero Size disables it.
type CacheConfig struct {
	Size int      `toml:"size"`
	TTL  Duration `toml:"ttl"`
}

// ExportConfig holds settings for exported note files.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// MetricsConfig holds settings for the metrics dump written on exit.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"` // node-exporter textfile path; empty disables
}

// ServerConfig holds settings for `notes serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Duration is a time.Duration that reads and writes as a string like "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// NewConfig creates a new Config rooted at baseDir with working defaults:
// auto storage mode, sqlite KV store and filesystem object store under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Scope:    DefaultScope,
		Storage: StorageConfig{
			Mode: ModeAuto,
			KV: KVConfig{
				Type:      "sqlite",
				DataDir:   filepath.Join(baseDir, "db"),
				Namespace: "fileManager",
			},
			Objects: ObjectsConfig{
				Type:   "filesystem",
				FSRoot: filepath.Join(baseDir, "notes"),
			},
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  Duration{5 * time.Minute},
		},
		Export: ExportConfig{
			Dir: filepath.Join(baseDir, "export"),
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}
}

// Validate checks enumerations and the fields each tagged-union type requires.
// It only looks at the storage section the configured mode can reach.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir is required")
	}
	if c.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("unknown log_level: %s", c.LogLevel)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}

	mode := c.Storage.Mode
	switch mode {
	case "", ModeAuto, ModeEmbedded, ModeDirectory:
	default:
		return fmt.Errorf("unknown storage mode: %s", mode)
	}

	if mode != ModeDirectory {
		if err := c.Storage.KV.validate(); err != nil {
			return fmt.Errorf("storage.kv: %w", err)
		}
	}
	if mode != ModeEmbedded {
		if err := c.Storage.Objects.validate(); err != nil {
			return fmt.Errorf("storage.objects: %w", err)
		}
	}
	return nil
}

func (k KVConfig) validate() error {
	switch k.Type {
	case "memory":
		return nil
	case "sqlite":
		if k.DataDir == "" {
			return fmt.Errorf("sqlite store requires data_dir to be set")
		}
		return nil
	default:
		return fmt.Errorf("unknown kv store type: %s", k.Type)
	}
}

func (o ObjectsConfig) validate() error {
	switch o.Type {
	case "memory":
		return nil
	case "filesystem":
		if o.FSRoot == "" {
			return fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return nil
	case "s3":
		if o.S3Bucket == "" {
			return fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		if (o.S3AccessKeyID == "") != (o.S3SecretAccessKey == "") {
			return fmt.Errorf("s3_access_key_id and s3_secret_access_key must be set together")
		}
		return nil
	default:
		return fmt.Errorf("unknown object store type: %s", o.Type)
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may carry S3 credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. It refuses to overwrite an
// existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
