// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about document encoding, asset storage, and cache use.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so no library package
// depends on a concrete metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCodecHooks(&myCodecHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	res, err := decode(data)
//	observability.Codec().OnDecode(res.Version, res.Graph.Stats(), len(res.Issues), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/vfxgraph/pkg/model"
)

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from the document serializer.
type CodecHooks interface {
	// OnEncode records a finished encode. On failure stats describe the
	// input graph and err is set.
	OnEncode(version int, stats model.Stats, duration time.Duration, err error)

	// OnDecode records a finished decode. issues counts recoverable
	// problems (dropped edges, schema mismatches).
	OnDecode(version int, stats model.Stats, issues int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from asset store operations.
type StoreHooks interface {
	// OnLoad records a document read from a store backend.
	OnLoad(ctx context.Context, backend, name string, size int, duration time.Duration, err error)

	// OnSave records a document write to a store backend.
	OnSave(ctx context.Context, backend, name string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCodecHooks is a no-op implementation of CodecHooks.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnEncode(int, model.Stats, time.Duration, error)      {}
func (NoopCodecHooks) OnDecode(int, model.Stats, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	codecHooks CodecHooks = NoopCodecHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetCodecHooks registers custom codec hooks.
// This should be called once at application startup before any documents are processed.
func SetCodecHooks(h CodecHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		codecHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Codec returns the registered codec hooks.
func Codec() CodecHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return codecHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	codecHooks = NoopCodecHooks{}
	storeHooks = NoopStoreHooks{}
	cacheHooks = NoopCacheHooks{}
}
