package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Store.Backend != store.BackendFile {
		t.Errorf("backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.CacheSize <= 0 {
		t.Errorf("cache size = %d", cfg.Server.CacheSize)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[catalog]
path = "nodes.toml"

[store]
backend = "redis"

[store.redis]
addr = "redis:6379"
db = 2

[server]
cache_size = 16
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog.Path != "nodes.toml" {
		t.Errorf("catalog = %q", cfg.Catalog.Path)
	}
	if cfg.Store.Backend != store.BackendRedis || cfg.Store.Redis.Addr != "redis:6379" || cfg.Store.Redis.DB != 2 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Server.CacheSize != 16 {
		t.Errorf("cache size = %d", cfg.Server.CacheSize)
	}
	// untouched sections keep their defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Mongo.Database != "vfxgraph" {
		t.Errorf("mongo database = %q", cfg.Store.Mongo.Database)
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("[store\nbackend ="))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, c *Config)
		wantErr bool
	}{
		{
			name: "store backend and s3",
			env: map[string]string{
				"VFXGRAPH_STORE":       "S3",
				"VFXGRAPH_S3_ENDPOINT": "minio:9000",
				"VFXGRAPH_S3_USE_SSL":  "true",
			},
			check: func(t *testing.T, c *Config) {
				if c.Store.Backend != store.BackendS3 {
					t.Errorf("backend = %q", c.Store.Backend)
				}
				if c.Store.S3.Endpoint != "minio:9000" || !c.Store.S3.UseSSL {
					t.Errorf("s3 = %+v", c.Store.S3)
				}
			},
		},
		{
			name: "numbers",
			env:  map[string]string{"VFXGRAPH_REDIS_DB": "3", "VFXGRAPH_SERVER_CACHE_SIZE": "10"},
			check: func(t *testing.T, c *Config) {
				if c.Store.Redis.DB != 3 || c.Server.CacheSize != 10 {
					t.Errorf("db=%d cache=%d", c.Store.Redis.DB, c.Server.CacheSize)
				}
			},
		},
		{
			name: "blank values ignored",
			env:  map[string]string{"VFXGRAPH_SERVER_ADDR": "  "},
			check: func(t *testing.T, c *Config) {
				if c.Server.Addr != ":8080" {
					t.Errorf("addr = %q", c.Server.Addr)
				}
			},
		},
		{
			name:    "bad number",
			env:     map[string]string{"VFXGRAPH_REDIS_DB": "two"},
			wantErr: true,
		},
		{
			name:    "bad bool",
			env:     map[string]string{"VFXGRAPH_S3_USE_SSL": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VFXGRAPH_SERVER_ADDR", ":9999")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7000\"\ncache_size = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("env should win over file, addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.CacheSize != 4 {
		t.Errorf("cache size = %d", cfg.Server.CacheSize)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Load(""); err != nil {
		t.Errorf("missing default config should be fine: %v", err)
	}
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	cfg := Default()
	cat, err := cfg.LoadCatalog()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Context("spawn"); err != nil {
		t.Errorf("default catalog missing spawn: %v", err)
	}

	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := cfg.LoadCatalog(); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
