package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/tablespan/pkg/cache"
	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/render"
	"github.com/matzehuels/tablespan/pkg/render/text"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"xlsx", false},
		{"svg", true},
		{"TEXT", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"text", "xlsx"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"text", "svg"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetDefaults(t *testing.T) {
	opts := Options{}
	opts.SetDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats should be [text], got %v", opts.Formats)
	}
	if opts.Border != "normal" || opts.Align != "left" {
		t.Errorf("Border/Align = %q/%q, want normal/left", opts.Border, opts.Align)
	}
	if opts.MinWidth == nil || *opts.MinWidth != 1 {
		t.Errorf("MinWidth = %v, want 1", opts.MinWidth)
	}
	if opts.Padding == nil || *opts.Padding != 1 {
		t.Errorf("Padding = %v, want 1", opts.Padding)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	zero := 0
	opts = Options{Padding: &zero, MinWidth: &zero, Formats: []string{"json", "text", "json"}}
	opts.SetDefaults()
	if *opts.Padding != 0 {
		t.Error("explicit zero padding should be kept")
	}
	if *opts.MinWidth != 0 {
		t.Error("explicit zero min width should be kept")
	}
	if strings.Join(opts.Formats, ",") != "json,text" {
		t.Errorf("Formats should be deduplicated, got %v", opts.Formats)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	neg, neg2 := -1, -2
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"defaults", Options{}, ""},
		{"bad format", Options{Formats: []string{"pdf"}}, errs.ErrCodeInvalidFormat},
		{"bad border", Options{Border: "dotted"}, errs.ErrCodeInvalidBorder},
		{"bad align", Options{Align: "justify"}, errs.ErrCodeInvalidAlign},
		{"negative min width", Options{MinWidth: &neg2}, errs.ErrCodeInvalidOption},
		{"negative padding", Options{Padding: &neg}, errs.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Border: "rounded"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	before := opts.Formats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Border != "rounded" || len(opts.Formats) != len(before) {
		t.Error("second call changed options")
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{}
	opts.SetDefaults()

	tk := opts.ArtifactKeyOpts(FormatText, "c")
	if tk.Border != "normal" || tk.Padding != 1 || tk.MinWidth != 1 || tk.ContentHash != "c" {
		t.Errorf("text key opts = %+v", tk)
	}
	x := opts.ArtifactKeyOpts(FormatXLSX, "c")
	if x.Border != "" || x.Align != "" {
		t.Errorf("xlsx key should ignore text options, got %+v", x)
	}

	opts.Strict = true
	if opts.ArtifactKeyOpts(FormatXLSX, "c") == x {
		t.Error("strict mode should change the key")
	}
}

func TestResolveJSON(t *testing.T) {
	out, err := ResolveJSON(
		[]byte(`{"B": [2, 2], "H": [2, 1]}`),
		[]byte(`[["A", "B", "C"], ["D", "E"], ["F", "G", "H"]]`),
	)
	if err != nil {
		t.Fatal(err)
	}
	want := `[["A","B",null,"C"],["D",null,null,"E"],["F","G","H",null]]`
	if string(out) != want {
		t.Errorf("ResolveJSON = %s, want %s", out, want)
	}
}

func TestResolveJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		spans string
		table string
		code  errs.Code
	}{
		{"malformed spans", `{"A": [1]}`, `[["A"]]`, errs.ErrCodeMalformedInput},
		{"null label", `{}`, `[[null]]`, errs.ErrCodeMalformedInput},
		{"zero span", `{"A": [0, 1]}`, `[["A"]]`, errs.ErrCodeInvalidSpan},
		{"duplicate", `{}`, `[["A", "A"]]`, errs.ErrCodeDuplicateAnchor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveJSON([]byte(tt.spans), []byte(tt.table))
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

var example = Input{
	Spans:   grid.SpanMap{"A": {Cols: 2, Rows: 1}},
	Table:   grid.LogicalTable{{"A", "B"}, {"C", "D"}},
	Content: map[string]string{"A": "Totals"},
}

func TestRender(t *testing.T) {
	g, err := Resolve(example)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{"text", "json", "xlsx"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(g, example, opts)
	if err != nil {
		t.Fatal(err)
	}

	wantText := strings.Join([]string{
		"┌────────┬───┐",
		"│ Totals │ B │",
		"├────┬───┼───┤",
		"│ C  │ D │   │",
		"└────┴───┴───┘",
		"",
	}, "\n")
	if string(artifacts["text"]) != wantText {
		t.Errorf("text artifact =\n%s\nwant\n%s", artifacts["text"], wantText)
	}
	if string(artifacts["json"]) != `[["A",null,"B"],["C","D",null]]` {
		t.Errorf("json artifact = %s", artifacts["json"])
	}
	if len(artifacts["xlsx"]) == 0 {
		t.Error("xlsx artifact is empty")
	}
}

func TestRenderZeroMinWidth(t *testing.T) {
	in := Input{
		Table:   grid.LogicalTable{{"A", "B"}},
		Content: map[string]string{"A": "", "B": ""},
	}
	g, err := Resolve(in)
	if err != nil {
		t.Fatal(err)
	}
	zero := 0
	opts := Options{MinWidth: &zero, Padding: &zero}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(g, in, opts)
	if err != nil {
		t.Fatal(err)
	}
	want, err := text.Render(g, render.ContentMap(in.Content), text.WithMinWidth(0), text.WithPadding(0))
	if err != nil {
		t.Fatal(err)
	}
	if string(artifacts["text"]) != want {
		t.Errorf("text artifact =\n%s\nwant\n%s", artifacts["text"], want)
	}
	if first := strings.SplitN(want, "\n", 2)[0]; first != "┌┬┐" {
		t.Errorf("top border = %q, want zero-width columns", first)
	}
}

func TestRenderStrictContent(t *testing.T) {
	g, err := Resolve(example)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Strict: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	_, err = Render(g, example, opts)
	if !errs.Is(err, errs.ErrCodeMissingContent) {
		t.Errorf("strict render error = %v, want MISSING_CONTENT", err)
	}
}

// memCache is an in-memory cache that counts operations.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	opts := Options{Formats: []string{"text", "json"}}
	first, err := r.Execute(ctx, example, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}
	if first.Stats.Rows != 2 || first.Stats.Cols != 3 || first.Stats.Cells != 4 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if first.TableHash == "" || len(first.TableHash) != 64 {
		t.Errorf("TableHash = %q", first.TableHash)
	}
	if mc.sets != 2 {
		t.Errorf("sets = %d, want 2", mc.sets)
	}

	second, err := r.Execute(ctx, example, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit")
	}
	if string(second.Artifacts["text"]) != string(first.Artifacts["text"]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// A different border only invalidates the text artifact.
	third, err := r.Execute(ctx, example, Options{Formats: []string{"text", "json"}, Border: "rounded"})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit || strings.Join(third.CacheInfo.Hits, ",") != "json" {
		t.Errorf("CacheInfo = %+v, want only json from cache", third.CacheInfo)
	}
	if !strings.HasPrefix(string(third.Artifacts["text"]), "╭") {
		t.Errorf("rounded border not applied:\n%s", third.Artifacts["text"])
	}

	// Refresh re-renders and rewrites.
	sets := mc.sets
	if _, err := r.Execute(ctx, example, Options{Formats: []string{"text"}, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if mc.sets != sets+1 {
		t.Errorf("refresh should rewrite the cache entry")
	}
}

func TestRunnerContentChangesKey(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)

	if _, err := r.Execute(ctx, example, Options{}); err != nil {
		t.Fatal(err)
	}
	changed := example
	changed.Content = map[string]string{"A": "Sum"}
	res, err := r.Execute(ctx, changed, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("changed content must not be served from cache")
	}
	if !strings.Contains(string(res.Artifacts["text"]), "Sum") {
		t.Errorf("text artifact = %s", res.Artifacts["text"])
	}
}

func TestRunnerErrors(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	_, err := r.Execute(ctx, Input{Table: grid.LogicalTable{{"A", "A"}}}, Options{})
	if !errs.Is(err, errs.ErrCodeDuplicateAnchor) {
		t.Errorf("error = %v, want DUPLICATE_ANCHOR", err)
	}
	_, err = r.Execute(ctx, example, Options{Formats: []string{"svg"}})
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	if mc.sets != 0 {
		t.Error("failed runs must not write to the cache")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.Execute(cancelled, example, Options{}); err != context.Canceled {
		t.Errorf("cancelled run error = %v", err)
	}
}
