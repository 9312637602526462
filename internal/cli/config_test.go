package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[render]
border = "rounded"
align = "center"
min_width = 0
padding = 0
formats = ["text", "xlsx"]

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "2h"

[server]
addr = ":9000"
`)

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Render.Border != "rounded" || cfg.Render.Align != "center" {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Render.MinWidth == nil || *cfg.Render.MinWidth != 0 {
		t.Errorf("min width = %v, want explicit 0", cfg.Render.MinWidth)
	}
	if cfg.Render.Padding == nil || *cfg.Render.Padding != 0 {
		t.Errorf("padding = %v, want explicit 0", cfg.Render.Padding)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := loadConfig(path, false)
	if err != nil {
		t.Fatalf("optional config: %v", err)
	}
	if cfg.Cache.Backend != backendFile {
		t.Errorf("backend = %q, want default %q", cfg.Cache.Backend, backendFile)
	}

	if _, err := loadConfig(path, true); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("required config error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errs.Code
	}{
		{"syntax", `[render`, errs.ErrCodeInvalidOption},
		{"unknown key", "[render]\ncolour = \"red\"\n", errs.ErrCodeInvalidOption},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", errs.ErrCodeInvalidOption},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errs.ErrCodeInvalidOption},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", errs.ErrCodeInvalidOption},
		{"bad border", "[render]\nborder = \"wavy\"\n", errs.ErrCodeInvalidBorder},
		{"bad align", "[render]\nalign = \"justify\"\n", errs.ErrCodeInvalidAlign},
		{"bad format", "[render]\nformats = [\"svg\"]\n", errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderConfigApply(t *testing.T) {
	zero, four := 0, 4
	cfg := RenderConfig{Border: "double", Align: "right", MinWidth: &four, Padding: &zero, Formats: []string{"json"}}

	flags := pflag.NewFlagSet("render", pflag.ContinueOnError)
	border := flags.String("border", "normal", "")
	flags.String("align", "left", "")
	flags.Int("padding", 1, "")
	if err := flags.Parse([]string{"--border", "ascii"}); err != nil {
		t.Fatal(err)
	}

	one := 1
	opts := pipeline.Options{Border: *border, Align: "left", Padding: &one}
	cfg.apply(&opts, flags)

	if opts.Border != "ascii" {
		t.Errorf("border = %q, explicit flag should win", opts.Border)
	}
	if opts.Align != "right" || opts.MinWidth == nil || *opts.MinWidth != 4 {
		t.Errorf("align/min width = %q/%v, want config values", opts.Align, opts.MinWidth)
	}
	if *opts.Padding != 0 {
		t.Errorf("padding = %d, want config value 0", *opts.Padding)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "json" {
		t.Errorf("formats = %v", opts.Formats)
	}
}
