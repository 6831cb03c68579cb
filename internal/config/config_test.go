package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:  "/home/user/.local/share/notes",
		LogDir:   "/home/user/.local/share/notes/log",
		LogLevel: "debug",
		Scope:    "work",
		Storage: StorageConfig{
			Mode: ModeDirectory,
			KV:   KVConfig{Type: "sqlite", DataDir: "/home/user/.local/share/notes/db", Namespace: "fm"},
			Objects: ObjectsConfig{
				Type:           "s3",
				S3Bucket:       "notes",
				S3Prefix:       "alice",
				S3Region:       "auto",
				S3Endpoint:     "https://example.r2.cloudflarestorage.com",
				S3UsePathStyle: true,
			},
		},
		Cache:   CacheConfig{Size: 64, TTL: Duration{90 * time.Second}},
		Export:  ExportConfig{Dir: "/tmp/export"},
		Metrics: MetricsConfig{Textfile: "/var/lib/node_exporter/notes.prom"},
		Server:  ServerConfig{Addr: ":9000", AllowedOrigins: []string{"https://notes.example.com"}},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.Scope != "work" {
		t.Errorf("Scope = %q, want %q", got.Scope, "work")
	}
	if got.Storage.Mode != ModeDirectory {
		t.Errorf("Storage.Mode = %q, want %q", got.Storage.Mode, ModeDirectory)
	}
	if got.Storage.KV.Namespace != "fm" {
		t.Errorf("Storage.KV.Namespace = %q, want %q", got.Storage.KV.Namespace, "fm")
	}
	if got.Storage.Objects != original.Storage.Objects {
		t.Errorf("Storage.Objects = %+v, want %+v", got.Storage.Objects, original.Storage.Objects)
	}
	if got.Cache.TTL.Duration != 90*time.Second {
		t.Errorf("Cache.TTL = %v, want %v", got.Cache.TTL, 90*time.Second)
	}
	if got.Cache.Size != 64 {
		t.Errorf("Cache.Size = %d, want 64", got.Cache.Size)
	}
	if got.Metrics.Textfile != original.Metrics.Textfile {
		t.Errorf("Metrics.Textfile = %q, want %q", got.Metrics.Textfile, original.Metrics.Textfile)
	}
	if len(got.Server.AllowedOrigins) != 1 || got.Server.AllowedOrigins[0] != "https://notes.example.com" {
		t.Errorf("Server.AllowedOrigins = %v", got.Server.AllowedOrigins)
	}
}

func TestManager_Read_ParsesDuration(t *testing.T) {
	m := &Manager{}

	cfg, err := m.Read(strings.NewReader("[cache]\nsize = 10\nttl = \"2m30s\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Cache.TTL.Duration != 150*time.Second {
		t.Errorf("Cache.TTL = %v, want 2m30s", cfg.Cache.TTL)
	}

	if _, err := m.Read(strings.NewReader("[cache]\nttl = \"soon\"\n")); err == nil {
		t.Error("Read() expected error for invalid duration")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/notes")

	if cfg.BaseDir != "/data/notes" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/notes")
	}
	if cfg.LogDir != "/data/notes/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/notes/log")
	}
	if cfg.Scope != DefaultScope {
		t.Errorf("Scope = %q, want %q", cfg.Scope, DefaultScope)
	}
	if cfg.Storage.Mode != ModeAuto {
		t.Errorf("Storage.Mode = %q, want %q", cfg.Storage.Mode, ModeAuto)
	}
	if cfg.Storage.KV.DataDir != "/data/notes/db" {
		t.Errorf("Storage.KV.DataDir = %q, want %q", cfg.Storage.KV.DataDir, "/data/notes/db")
	}
	if cfg.Storage.Objects.FSRoot != "/data/notes/notes" {
		t.Errorf("Storage.Objects.FSRoot = %q, want %q", cfg.Storage.Objects.FSRoot, "/data/notes/notes")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing base dir",
			mutate:  func(c *Config) { c.BaseDir = "" },
			wantErr: "base_dir",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Storage.Mode = "cloud" },
			wantErr: "storage mode",
		},
		{
			name:    "negative cache size",
			mutate:  func(c *Config) { c.Cache.Size = -1 },
			wantErr: "cache.size",
		},
		{
			name:    "sqlite without data dir",
			mutate:  func(c *Config) { c.Storage.KV.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name: "sqlite without data dir ignored in directory mode",
			mutate: func(c *Config) {
				c.Storage.Mode = ModeDirectory
				c.Storage.KV.DataDir = ""
			},
		},
		{
			name:    "unknown kv type",
			mutate:  func(c *Config) { c.Storage.KV.Type = "redis" },
			wantErr: "unknown kv store type",
		},
		{
			name:    "filesystem without root",
			mutate:  func(c *Config) { c.Storage.Objects.FSRoot = "" },
			wantErr: "fs_root",
		},
		{
			name: "filesystem without root ignored in embedded mode",
			mutate: func(c *Config) {
				c.Storage.Mode = ModeEmbedded
				c.Storage.Objects.FSRoot = ""
			},
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Storage.Objects = ObjectsConfig{Type: "s3"} },
			wantErr: "s3_bucket",
		},
		{
			name: "s3 with half credentials",
			mutate: func(c *Config) {
				c.Storage.Objects = ObjectsConfig{Type: "s3", S3Bucket: "b", S3AccessKeyID: "AKIA"}
			},
			wantErr: "must be set together",
		},
		{
			name: "s3 with static credentials",
			mutate: func(c *Config) {
				c.Storage.Objects = ObjectsConfig{Type: "s3", S3Bucket: "b", S3AccessKeyID: "AKIA", S3SecretAccessKey: "secret"}
			},
		},
		{
			name:    "unknown object type",
			mutate:  func(c *Config) { c.Storage.Objects.Type = "ftp" },
			wantErr: "unknown object store type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data/notes")
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("config file mode = %o, want 600", perm)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.toml")
		cfg := NewConfig(dir)
		cfg.Storage.KV = KVConfig{Type: "memory"}
		cfg.Scope = "read-test"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Scope != "read-test" {
			t.Errorf("Scope = %q, want %q", got.Scope, "read-test")
		}
		if got.Storage.KV.Type != "memory" {
			t.Errorf("Storage.KV.Type = %q, want %q", got.Storage.KV.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/notes.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
