package cli

import (
	"errors"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/pipeline"
	"github.com/matzehuels/tablespan/pkg/render/text"
)

// Cache backends accepted in [cache] backend.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the contents of config.toml.
//
//	[render]
//	border = "rounded"
//	align = "left"
//	min_width = 1
//	padding = 1
//	formats = ["text"]
//
//	[cache]
//	backend = "file"   # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[server]
//	addr = "127.0.0.1:8080"
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds defaults for rendering flags.
type RenderConfig struct {
	Border   string   `toml:"border"`
	Align    string   `toml:"align"`
	MinWidth *int     `toml:"min_width"`
	Padding  *int     `toml:"padding"`
	Formats  []string `toml:"formats"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures "tablespan serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "24h" into a time.Duration.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: backendFile},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// loadConfig reads the config file at path on top of the defaults. A
// missing file is an error only when required is set.
func loadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s does not exist", path)
		}
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidOption, err, "config file %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errs.New(errs.ErrCodeInvalidOption, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidOption, "cache backend %q needs redis_url", backendRedis)
		}
	default:
		return errs.New(errs.ErrCodeInvalidOption, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Render.Border != "" {
		if err := text.ValidateBorder(c.Render.Border); err != nil {
			return err
		}
	}
	if c.Render.Align != "" {
		if err := text.ValidateAlign(c.Render.Align); err != nil {
			return err
		}
	}
	return pipeline.ValidateFormats(c.Render.Formats)
}

// apply copies config defaults into opts for every option whose flag was
// not set explicitly.
func (r RenderConfig) apply(opts *pipeline.Options, flags *pflag.FlagSet) {
	if !flags.Changed("border") && r.Border != "" {
		opts.Border = r.Border
	}
	if !flags.Changed("align") && r.Align != "" {
		opts.Align = r.Align
	}
	if !flags.Changed("min-width") && r.MinWidth != nil {
		w := *r.MinWidth
		opts.MinWidth = &w
	}
	if !flags.Changed("padding") && r.Padding != nil {
		p := *r.Padding
		opts.Padding = &p
	}
	if !flags.Changed("format") && len(r.Formats) > 0 {
		opts.Formats = append([]string(nil), r.Formats...)
	}
}
