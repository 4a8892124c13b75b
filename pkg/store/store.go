// Package store persists effect graph documents by name.
//
// A [Store] holds opaque document bytes; encoding and decoding happen in
// package serial, and package asset combines the two. Four backends are
// provided:
//   - [FileStore]: one file per asset under a directory (CLI default)
//   - [RedisStore]: one hash per asset, for shared server deployments
//   - [MongoStore]: one document per asset in a collection
//   - [S3Store]: one object per asset in an S3-compatible bucket
//
// Every Put creates a new [Revision] with a fresh ID; backends keep only the
// latest revision of each name. Names are validated with [ValidateName]
// before they reach a backend, since they become paths, keys and object
// names.
//
// # Usage
//
//	st, err := store.Open(ctx, store.Config{Backend: store.BackendFile, File: store.FileConfig{Dir: dir}})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rev, err := st.Put(ctx, "fx/smoke", data)
//	doc, err := st.Get(ctx, "fx/smoke")
//
// Loads and saves are reported to [observability.Store].
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/observability"
)

// ErrNotFound is returned, wrapped, when an asset does not exist.
// Match it with the standard errors.Is or with code NOT_FOUND.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "asset not found")

// Store is the interface for asset storage backends. Implementations must
// be safe for concurrent use.
type Store interface {
	// Get returns the latest revision of name.
	Get(ctx context.Context, name string) (*Document, error)

	// Put stores data as a new revision of name, replacing the previous one.
	Put(ctx context.Context, name string, data []byte) (Revision, error)

	// Delete removes name. Deleting a missing asset returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// List returns the latest revision of every asset, sorted by name.
	List(ctx context.Context) ([]Revision, error)

	Close() error
}

// Revision describes one stored version of an asset.
type Revision struct {
	ID      string    `json:"id" bson:"id"`
	Name    string    `json:"name" bson:"name"`
	Size    int       `json:"size" bson:"size"`
	Hash    string    `json:"hash" bson:"hash"`
	SavedAt time.Time `json:"saved_at" bson:"saved_at"`
}

// Document is an asset's bytes with the revision they belong to.
type Document struct {
	Revision
	Data []byte `json:"-" bson:"data"`
}

// ValidateName checks that name is usable as an asset name.
func ValidateName(name string) error {
	return errors.ValidateAssetName(name)
}

// NewRevision creates the revision record for storing data under name.
func NewRevision(name string, data []byte) Revision {
	return Revision{
		ID:      uuid.NewString(),
		Name:    name,
		Size:    len(data),
		Hash:    ContentHash(data),
		SavedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// ContentHash returns the hex xxhash of data. Equal hashes mean a Put
// stored the same bytes as an earlier one.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func notFound(name string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "asset %q", name)
}

func storageErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

// observeLoad and observeSave report an operation to the global store
// hooks; call them deferred with the start time.
func observeLoad(ctx context.Context, backend, name string, start time.Time, size *int, err *error) {
	observability.Store().OnLoad(ctx, backend, name, *size, time.Since(start), *err)
}

func observeSave(ctx context.Context, backend, name string, start time.Time, size int, err *error) {
	observability.Store().OnSave(ctx, backend, name, size, time.Since(start), *err)
}
