// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional and carries no dependency on a particular
// backend. Consumers register hooks at startup and receive events about
// table resolution, rendering, cache traffic and API requests.
//
// # Architecture
//
//   - Hook interfaces per event category
//   - No-op default implementations
//   - A lock-free registry; [Register] swaps in implementations
//
// [LogHooks] is a ready-made implementation that writes every event to a
// charmbracelet logger at debug level; "tablespan --verbose" installs it.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.Register(observability.Hooks{
//	    Pipeline: &myPipelineHooks{},
//	    Cache:    &myCacheHooks{},
//	})
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnResolveStart(ctx, len(table), table.CellCount())
//	// ... resolve ...
//	observability.Pipeline().OnResolveComplete(ctx, g.Rows(), g.Cols(), duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the resolve → render pipeline.
type PipelineHooks interface {
	// Resolve events
	OnResolveStart(ctx context.Context, logicalRows, labels int)
	OnResolveComplete(ctx context.Context, rows, cols int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations. keyType is "layout" or
// "artifact".
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path, requestID string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with a structured error code.
	OnError(ctx context.Context, method, path, code string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnResolveStart(context.Context, int, int)                          {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)             {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)        {}

// =============================================================================
// Registry
// =============================================================================

// Hooks bundles one implementation per event category.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

var registry atomic.Pointer[Hooks]

func init() { Reset() }

// Register installs every non-nil hook set in h, keeping the current
// registration for the others. It is safe to call while events are being
// emitted.
func Register(h Hooks) {
	for {
		cur := registry.Load()
		next := *cur
		if h.Pipeline != nil {
			next.Pipeline = h.Pipeline
		}
		if h.Cache != nil {
			next.Cache = h.Cache
		}
		if h.HTTP != nil {
			next.HTTP = h.HTTP
		}
		if registry.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return registry.Load().Pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return registry.Load().Cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return registry.Load().HTTP }

// Reset restores all hooks to their no-op defaults.
func Reset() {
	registry.Store(&Hooks{
		Pipeline: NoopPipelineHooks{},
		Cache:    NoopCacheHooks{},
		HTTP:     NoopHTTPHooks{},
	})
}
