package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"` // key prefix, default "vfxgraph:asset:"
}

// RedisStore keeps each asset in a Redis hash keyed by prefix+name.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storageErr(err, "connect to redis at %s", cfg.Addr)
	}
	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "vfxgraph:asset:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Get(ctx context.Context, name string) (doc *Document, err error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	start, size := time.Now(), 0
	defer observeLoad(ctx, "redis", name, start, &size, &err)

	var fields map[string]string
	err = withRetry(ctx, func() error {
		var err error
		fields, err = s.client.HGetAll(ctx, s.key(name)).Result()
		return redisTransient(err)
	})
	if err != nil {
		return nil, storageErr(err, "get %q", name)
	}
	if len(fields) == 0 {
		return nil, notFound(name)
	}
	rev, err := revisionFromFields(name, fields)
	if err != nil {
		return nil, storageErr(err, "decode revision of %q", name)
	}
	data := []byte(fields["data"])
	size = len(data)
	return &Document{Revision: rev, Data: data}, nil
}

func (s *RedisStore) Put(ctx context.Context, name string, data []byte) (rev Revision, err error) {
	if err := ValidateName(name); err != nil {
		return Revision{}, err
	}
	defer observeSave(ctx, "redis", name, time.Now(), len(data), &err)

	rev = NewRevision(name, data)
	key := s.key(name)
	err = withRetry(ctx, func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, map[string]any{
				"id":       rev.ID,
				"size":     rev.Size,
				"hash":     rev.Hash,
				"saved_at": rev.SavedAt.Format(time.RFC3339Nano),
				"data":     data,
			})
			return nil
		})
		return redisTransient(err)
	})
	if err != nil {
		return Revision{}, storageErr(err, "put %q", name)
	}
	return rev, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	var n int64
	err := withRetry(ctx, func() error {
		var err error
		n, err = s.client.Del(ctx, s.key(name)).Result()
		return redisTransient(err)
	})
	if err != nil {
		return storageErr(err, "delete %q", name)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Revision, error) {
	var out []Revision
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		name := strings.TrimPrefix(key, s.prefix)
		vals, err := s.client.HMGet(ctx, key, "id", "size", "hash", "saved_at").Result()
		if err != nil {
			return nil, storageErr(err, "list assets")
		}
		fields := make(map[string]string, 4)
		for i, f := range []string{"id", "size", "hash", "saved_at"} {
			if v, ok := vals[i].(string); ok {
				fields[f] = v
			}
		}
		if fields["id"] == "" {
			// deleted between SCAN and HMGET
			continue
		}
		rev, err := revisionFromFields(name, fields)
		if err != nil {
			return nil, storageErr(err, "decode revision of %q", name)
		}
		out = append(out, rev)
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr(err, "list assets")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func revisionFromFields(name string, fields map[string]string) (Revision, error) {
	size, err := strconv.Atoi(fields["size"])
	if err != nil {
		return Revision{}, err
	}
	savedAt, err := time.Parse(time.RFC3339Nano, fields["saved_at"])
	if err != nil {
		return Revision{}, err
	}
	return Revision{
		ID:      fields["id"],
		Name:    name,
		Size:    size,
		Hash:    fields["hash"],
		SavedAt: savedAt,
	}, nil
}

// redisTransient marks connection-level failures as retryable. Context
// errors and redis.Nil are final.
func redisTransient(err error) error {
	switch {
	case err == nil, errors.Is(err, redis.Nil):
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return retryable(err)
}
