// Package config loads vfxgraph settings for the CLI and the HTTP server.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, $XDG_CONFIG_HOME/vfxgraph/config.toml unless a path is given
//  3. VFXGRAPH_* environment variables, after loading .env from the working
//     directory
//
// Every command works without a config file.
//
// # File format
//
//	[catalog]
//	path = "nodes.toml"
//
//	[store]
//	backend = "redis"
//
//	[store.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	cache_size = 256
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/vfxgraph/pkg/catalog"
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

const appName = "vfxgraph"

// Config is the full configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Store   store.Config  `toml:"store"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
}

// CatalogConfig selects the node library. An empty path means the
// built-in library.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// ServerConfig configures `vfxgraph serve`.
type ServerConfig struct {
	Addr      string `toml:"addr"`
	CacheSize int    `toml:"cache_size"` // inspect results kept in memory
	MaxBody   int64  `toml:"max_body"`   // request body limit in bytes
}

// CacheConfig configures the render cache.
type CacheConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Store: store.Config{
			Backend: store.BackendFile,
			Redis:   store.RedisConfig{Addr: "localhost:6379"},
			Mongo:   store.MongoConfig{URI: "mongodb://localhost:27017", Database: appName, Collection: "assets"},
			S3:      store.S3Config{Region: "us-east-1", Bucket: "vfxgraph-assets"},
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 256,
			MaxBody:   32 << 20,
		},
	}
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate config dir")
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment. With an empty path the default location is tried and a
// missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := cfg.decodeFile(path, explicit); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults. The environment is not
// consulted.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	return cfg, nil
}

// LoadCatalog returns the configured node library.
func (c *Config) LoadCatalog() (catalog.Catalog, error) {
	if c.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(c.Catalog.Path)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "config file %s", path)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return nil
}

// applyEnv overrides fields from VFXGRAPH_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup("VFXGRAPH_" + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var firstErr error
	num := func(key string, set func(int64)) {
		var raw string
		str(key, &raw)
		if raw == "" {
			return
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = errors.Wrap(errors.ErrCodeInvalidInput, err, "VFXGRAPH_%s", key)
			}
			return
		}
		set(n)
	}

	str("CATALOG", &c.Catalog.Path)
	str("CACHE_DIR", &c.Cache.Dir)

	var backend string
	str("STORE", &backend)
	if backend != "" {
		c.Store.Backend = store.Backend(strings.ToLower(backend))
	}
	str("STORE_DIR", &c.Store.File.Dir)

	str("REDIS_ADDR", &c.Store.Redis.Addr)
	str("REDIS_PASSWORD", &c.Store.Redis.Password)
	str("REDIS_PREFIX", &c.Store.Redis.Prefix)
	num("REDIS_DB", func(n int64) { c.Store.Redis.DB = int(n) })

	str("MONGO_URI", &c.Store.Mongo.URI)
	str("MONGO_DATABASE", &c.Store.Mongo.Database)
	str("MONGO_COLLECTION", &c.Store.Mongo.Collection)

	str("S3_ENDPOINT", &c.Store.S3.Endpoint)
	str("S3_REGION", &c.Store.S3.Region)
	str("S3_ACCESS_KEY", &c.Store.S3.AccessKey)
	str("S3_SECRET_KEY", &c.Store.S3.SecretKey)
	str("S3_BUCKET", &c.Store.S3.Bucket)
	str("S3_PREFIX", &c.Store.S3.Prefix)
	var ssl string
	str("S3_USE_SSL", &ssl)
	if ssl != "" {
		v, err := strconv.ParseBool(ssl)
		if err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.ErrCodeInvalidInput, err, "VFXGRAPH_S3_USE_SSL")
		}
		c.Store.S3.UseSSL = v
	}

	str("SERVER_ADDR", &c.Server.Addr)
	num("SERVER_CACHE_SIZE", func(n int64) { c.Server.CacheSize = int(n) })
	num("SERVER_MAX_BODY", func(n int64) { c.Server.MaxBody = n })

	return firstErr
}
