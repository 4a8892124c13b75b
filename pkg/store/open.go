package store

import (
	"context"

	"github.com/matzehuels/vfxgraph/pkg/errors"
)

// Backend names a storage backend.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendMongo Backend = "mongo"
	BackendS3    Backend = "s3"
)

// FileConfig configures a [FileStore].
type FileConfig struct {
	Dir string `toml:"dir"`
}

// Config selects and configures a backend. Only the section matching
// Backend is read.
type Config struct {
	Backend Backend     `toml:"backend"`
	File    FileConfig  `toml:"file"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
	S3      S3Config    `toml:"s3"`
}

// Open creates the store described by cfg. An empty Backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.File.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	case BackendS3:
		return NewS3Store(cfg.S3)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
}
