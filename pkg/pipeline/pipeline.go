// Package pipeline provides the resolve → render pipeline shared by the CLI
// and the HTTP API.
//
// Both entry points decode the same inputs, apply the same defaults and
// produce the same outputs. Keeping that logic here means a table rendered
// by "tablespan render" and by POST /v1/render is byte-identical.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Resolve: turn the logical table and span map into a grid
//  2. Render: produce each requested format (text, json, xlsx)
//
// Resolution is cheap and always runs. Rendered artifacts are cached by the
// content hash of the table plus every option that affects the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Input{
//	    Spans: grid.SpanMap{"A": {Cols: 2, Rows: 1}},
//	    Table: grid.LogicalTable{{"A", "B"}, {"C", "D"}},
//	}, pipeline.Options{Formats: []string{"text"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(string(result.Artifacts["text"]))
//
// Stateless helpers run a single stage without a runner:
//
//	g, err := pipeline.Resolve(in)
//	artifacts, err := pipeline.Render(g, in, opts)
//	layout, err := pipeline.ResolveJSON(spanJSON, tableJSON)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tablespan/pkg/cache"
	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/render"
	"github.com/matzehuels/tablespan/pkg/render/text"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatText

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatXLSX: true,
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Input, Options and Result
// =============================================================================

// Input is a table description: the logical table, its span map and
// optional display text per label.
type Input struct {
	Spans   grid.SpanMap      `json:"spans"`
	Table   grid.LogicalTable `json:"table"`
	Content map[string]string `json:"content,omitempty"`
}

// Options contains all configuration for rendering.
// This struct supports JSON serialization for API requests.
type Options struct {
	Formats  []string `json:"formats,omitempty"`
	Border   string   `json:"border,omitempty"`
	Align    string   `json:"align,omitempty"`
	MinWidth *int     `json:"min_width,omitempty"`
	Padding  *int     `json:"padding,omitempty"`

	// Strict requires every label to have an entry in Input.Content.
	// Otherwise labels without one display themselves.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses cached artifacts and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the resolved table.
	Grid *grid.Grid

	// TableHash is the content hash of the span map and logical table.
	TableHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows        int
	Cols        int
	Cells       int
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	RenderHit bool     // Whether all artifacts came from cache
	Hits      []string // Formats served from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every option.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills every unset option.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = dedupe(o.Formats)
	if o.Border == "" {
		o.Border = text.DefaultBorder
	}
	if o.Align == "" {
		o.Align = text.DefaultAlign
	}
	if o.MinWidth == nil {
		w := text.DefaultMinWidth
		o.MinWidth = &w
	}
	if o.Padding == nil {
		p := text.DefaultPadding
		o.Padding = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values without changing them.
func (o *Options) Validate() error {
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := text.ValidateBorder(o.Border); err != nil {
		return err
	}
	if err := text.ValidateAlign(o.Align); err != nil {
		return err
	}
	if o.MinWidth != nil && *o.MinWidth < 0 {
		return errs.New(errs.ErrCodeInvalidOption, "min_width must not be negative, got %d", *o.MinWidth)
	}
	if o.Padding != nil && *o.Padding < 0 {
		return errs.New(errs.ErrCodeInvalidOption, "padding must not be negative, got %d", *o.Padding)
	}
	return nil
}

// TextOptions returns the text renderer options matching o.
func (o *Options) TextOptions() []text.Option {
	opts := []text.Option{
		text.WithBorder(o.Border),
		text.WithAlign(o.Align),
	}
	if o.MinWidth != nil {
		opts = append(opts, text.WithMinWidth(*o.MinWidth))
	}
	if o.Padding != nil {
		opts = append(opts, text.WithPadding(*o.Padding))
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for one rendered format.
// Options that do not affect the format are left out so that, for example,
// changing the border does not invalidate a cached workbook.
func (o *Options) ArtifactKeyOpts(format, contentHash string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, ContentHash: contentHash}
	if format == FormatText {
		k.Border = o.Border
		k.Align = o.Align
		if o.MinWidth != nil {
			k.MinWidth = *o.MinWidth
		}
		if o.Padding != nil {
			k.Padding = *o.Padding
		}
	}
	if o.Strict {
		k.ContentHash += ":strict"
	}
	return k
}

// Lookup returns the content lookup for in under o.
func (o *Options) Lookup(in Input) render.ContentLookup {
	if o.Strict {
		return render.ContentMap(in.Content)
	}
	if len(in.Content) == 0 {
		return render.Labels{}
	}
	return render.Fallback{render.ContentMap(in.Content), render.Labels{}}
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
