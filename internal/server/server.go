// Package server implements the vfxgraph HTTP API.
//
// Routes:
//
//	POST   /v1/inspect         document body -> JSON view, stats and issues
//	POST   /v1/upgrade         document body -> document at the current version
//	GET    /v1/assets          revisions of all stored assets
//	GET    /v1/assets/{name}   stored document (?format=json for the view)
//	PUT    /v1/assets/{name}   validate and store a document
//	DELETE /v1/assets/{name}   remove an asset
//	GET    /v1/schema          the version policy table
//	GET    /healthz            liveness
//
// Asset names may contain slashes. Errors are returned as
// {"code": "...", "message": "..."} with a status derived from the code.
// Every response carries an X-Request-Id header.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/vfxgraph/pkg/serial"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

// Options tunes a Server. Zero values select the defaults.
type Options struct {
	CacheSize int         // inspect results kept in memory, default 256
	MaxBody   int64       // request body limit in bytes, default 32 MiB
	Logger    *log.Logger // default discards
}

// Server serves the HTTP API over a serializer and an asset store.
type Server struct {
	ser     *serial.Serializer
	store   store.Store
	logger  *log.Logger
	inspect *lru.Cache[string, *inspectResponse]
	maxBody int64
}

// New creates a Server. The store may be nil, in which case the asset
// routes answer 501.
func New(ser *serial.Serializer, st store.Store, opts Options) (*Server, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = 32 << 20
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	cache, err := lru.New[string, *inspectResponse](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Server{
		ser:     ser,
		store:   st,
		logger:  opts.Logger,
		inspect: cache,
		maxBody: opts.MaxBody,
	}, nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
