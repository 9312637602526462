package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablespan/pkg/cache"
	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so the caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different inputs and options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default lifetime of cached values when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → render pipeline with caching.
// Errors from either stage are returned unchanged so callers can inspect
// their codes; no partial result is returned.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Resolve
	resolveStart := time.Now()
	g, err := r.resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	result.Grid = g
	result.Stats.Rows = g.Rows()
	result.Stats.Cols = g.Cols()
	result.Stats.Cells = len(g.Cells())
	result.Stats.ResolveTime = time.Since(resolveStart)

	if result.TableHash, err = TableHash(in); err != nil {
		return nil, err
	}

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, g, result.TableHash, in, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo = info
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered table",
		"rows", g.Rows(),
		"cols", g.Cols(),
		"formats", opts.Formats,
		"cached", info.RenderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) resolve(ctx context.Context, in Input) (*grid.Grid, error) {
	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, len(in.Table), in.Table.CellCount())

	start := time.Now()
	g, err := Resolve(in)
	d := time.Since(start)
	if err != nil {
		hooks.OnResolveComplete(ctx, 0, 0, d, err)
		return nil, err
	}
	hooks.OnResolveComplete(ctx, g.Rows(), g.Cols(), d, nil)

	r.Logger.Debug("resolved grid", "rows", g.Rows(), "cols", g.Cols(), "duration", d)
	return g, nil
}

// RenderWithCacheInfo generates artifacts with caching and reports which
// formats came from the cache. Cache failures are logged and treated as
// misses; they never fail a render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *grid.Grid, tableHash string, in Input, opts Options) (map[string][]byte, CacheInfo, error) {
	var info CacheInfo
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, info, err
	}

	contentHash, err := contentHash(in.Content)
	if err != nil {
		return nil, info, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		if opts.Refresh {
			missing = append(missing, format)
			continue
		}
		key, keyType := r.key(tableHash, contentHash, format, &opts)
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, keyType)
			artifacts[format] = data
			info.Hits = append(info.Hits, format)
			continue
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		info.RenderHit = true
		return artifacts, info, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(g, in, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, info, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key, keyType := r.key(tableHash, contentHash, format, &opts)
		ttl := cache.TTLArtifact
		if format == FormatJSON {
			ttl = cache.TTLLayout
		}
		if r.TTL > 0 {
			ttl = r.TTL
		}
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}

	return artifacts, info, nil
}

// key returns the cache key of one format and its hook key type. The JSON
// layout depends only on the table.
func (r *Runner) key(tableHash, contentHash, format string, opts *Options) (string, string) {
	if format == FormatJSON {
		return r.Keyer.LayoutKey(tableHash), "layout"
	}
	return r.Keyer.ArtifactKey(tableHash, opts.ArtifactKeyOpts(format, contentHash)), "artifact"
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// TableHash returns the content hash of the span map and logical table.
func TableHash(in Input) (string, error) {
	h, err := cache.HashJSON(struct {
		Spans grid.SpanMap      `json:"spans"`
		Table grid.LogicalTable `json:"table"`
	}{in.Spans, in.Table})
	if err != nil {
		return "", fmt.Errorf("hash table: %w", err)
	}
	return h, nil
}

func contentHash(content map[string]string) (string, error) {
	if len(content) == 0 {
		return "", nil
	}
	return cache.HashJSON(content)
}
