package store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/matzehuels/vfxgraph/pkg/errors"
)

// S3Config configures an [S3Store].
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	UseSSL    bool   `toml:"use_ssl"`
}

// S3Store keeps each asset as an object named prefix+name+".vfx". The
// revision lives in the object's user metadata.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	initOnce sync.Once
	initErr  error
}

const (
	metaRevision = "Revision-Id"
	metaHash     = "Content-Hash"
	metaSavedAt  = "Saved-At"
)

// NewS3Store creates an S3 client. The bucket is created on first use.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, storageErr(err, "init s3 client")
	}
	return &S3Store{client: client, bucket: bucket, region: region, prefix: cfg.Prefix}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *S3Store) objectKey(name string) string {
	return s.prefix + name + fileExt
}

func (s *S3Store) Get(ctx context.Context, name string) (doc *Document, err error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	start, size := time.Now(), 0
	defer observeLoad(ctx, "s3", name, start, &size, &err)

	if err := s.ensureBucket(ctx); err != nil {
		return nil, storageErr(err, "ensure bucket")
	}

	var data []byte
	var info minio.ObjectInfo
	err = withRetry(ctx, func() error {
		obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(name), minio.GetObjectOptions{})
		if err != nil {
			return s3Transient(err)
		}
		defer obj.Close()
		if info, err = obj.Stat(); err != nil {
			return s3Transient(err)
		}
		data, err = io.ReadAll(obj)
		return s3Transient(err)
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, notFound(name)
		}
		return nil, storageErr(err, "get %q", name)
	}
	size = len(data)
	return &Document{Revision: revisionFromObject(name, info), Data: data}, nil
}

func (s *S3Store) Put(ctx context.Context, name string, data []byte) (rev Revision, err error) {
	if err := ValidateName(name); err != nil {
		return Revision{}, err
	}
	defer observeSave(ctx, "s3", name, time.Now(), len(data), &err)

	if err := s.ensureBucket(ctx); err != nil {
		return Revision{}, storageErr(err, "ensure bucket")
	}

	rev = NewRevision(name, data)
	opts := minio.PutObjectOptions{
		ContentType: "application/xml",
		UserMetadata: map[string]string{
			metaRevision: rev.ID,
			metaHash:     rev.Hash,
			metaSavedAt:  rev.SavedAt.Format(time.RFC3339Nano),
		},
	}
	err = withRetry(ctx, func() error {
		_, err := s.client.PutObject(ctx, s.bucket, s.objectKey(name), bytes.NewReader(data), int64(len(data)), opts)
		return s3Transient(err)
	})
	if err != nil {
		return Revision{}, storageErr(err, "put %q", name)
	}
	return rev, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return storageErr(err, "ensure bucket")
	}
	key := s.objectKey(name)
	// RemoveObject succeeds for missing keys, so check first.
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return notFound(name)
		}
		return storageErr(err, "delete %q", name)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return storageErr(err, "delete %q", name)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) ([]Revision, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, storageErr(err, "ensure bucket")
	}
	var out []Revision
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, storageErr(obj.Err, "list assets")
		}
		if !strings.HasSuffix(obj.Key, fileExt) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, s.prefix), fileExt)
		info, err := s.client.StatObject(ctx, s.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			if isNoSuchKey(err) {
				continue
			}
			return nil, storageErr(err, "stat %q", name)
		}
		out = append(out, revisionFromObject(name, info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op; the minio client holds no persistent connections.
func (s *S3Store) Close() error { return nil }

func revisionFromObject(name string, info minio.ObjectInfo) Revision {
	rev := Revision{
		ID:      userMeta(info, metaRevision),
		Name:    name,
		Size:    int(info.Size),
		Hash:    userMeta(info, metaHash),
		SavedAt: info.LastModified.UTC(),
	}
	if t, err := time.Parse(time.RFC3339Nano, userMeta(info, metaSavedAt)); err == nil {
		rev.SavedAt = t
	}
	return rev
}

// userMeta looks up a user metadata key. Servers differ in whether they
// keep the X-Amz-Meta- prefix and in key casing.
func userMeta(info minio.ObjectInfo, key string) string {
	if v, ok := info.UserMetadata[key]; ok {
		return v
	}
	for k, v := range info.UserMetadata {
		k = strings.TrimPrefix(http.CanonicalHeaderKey(k), "X-Amz-Meta-")
		if strings.EqualFold(k, key) {
			return v
		}
	}
	if v := info.Metadata.Get("X-Amz-Meta-" + key); v != "" {
		return v
	}
	return ""
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

// s3Transient marks throttling and 5xx responses as retryable.
func s3Transient(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests || resp.Code == "SlowDown" {
		return retryable(err)
	}
	return err
}

