// Package config loads pageprint settings from a TOML or YAML file.
//
// The format is chosen by file extension (.toml, .yaml, .yml). A missing
// file is not an error: every field has a default, so an empty Config is
// usable after [Config.SetDefaults].
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pageprint/pkg/errors"
	"github.com/matzehuels/pageprint/pkg/merge"
	"github.com/matzehuels/pageprint/pkg/source"
)

// Config is the top-level configuration.
type Config struct {
	Capture     CaptureConfig     `toml:"capture" yaml:"capture"`
	Merge       MergeConfig       `toml:"merge" yaml:"merge"`
	Reconstruct ReconstructConfig `toml:"reconstruct" yaml:"reconstruct"`
	Compact     CompactConfig     `toml:"compact" yaml:"compact"`
	Fetch       FetchConfig       `toml:"fetch" yaml:"fetch"`
	Cache       CacheConfig       `toml:"cache" yaml:"cache"`
	Store       StoreConfig       `toml:"store" yaml:"store"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
}

// CaptureConfig controls the browser and the observation states.
type CaptureConfig struct {
	// ControlURL connects to a running Chrome; empty launches one.
	ControlURL      string             `toml:"control_url" yaml:"control_url"`
	Headful         bool               `toml:"headful" yaml:"headful"`
	Stealth         bool               `toml:"stealth" yaml:"stealth"`
	ViewportWidth   float64            `toml:"viewport_width" yaml:"viewport_width"`
	ViewportHeight  float64            `toml:"viewport_height" yaml:"viewport_height"`
	NavigateTimeout time.Duration      `toml:"navigate_timeout" yaml:"navigate_timeout"`
	Settle          time.Duration      `toml:"settle" yaml:"settle"`
	JobTimeout      time.Duration      `toml:"job_timeout" yaml:"job_timeout"`
	States          []source.StateSpec `toml:"states" yaml:"states"`
	AllowUnready    bool               `toml:"allow_unready" yaml:"allow_unready"`
	KeepDebug       bool               `toml:"keep_debug" yaml:"keep_debug"`
	IdentityAttrs   []string           `toml:"identity_attrs" yaml:"identity_attrs"`
	SemanticAttrs   []string           `toml:"semantic_attrs" yaml:"semantic_attrs"`
}

// MergeConfig controls state merging.
type MergeConfig struct {
	BaseState string `toml:"base_state" yaml:"base_state"`
	// Tolerance in px; 0 makes the merge exact. Unset means
	// merge.DefaultTolerance.
	Tolerance *float64 `toml:"tolerance" yaml:"tolerance"`
}

// TolerancePx returns the effective tolerance.
func (m MergeConfig) TolerancePx() float64 {
	if m.Tolerance == nil {
		return merge.DefaultTolerance
	}
	return *m.Tolerance
}

// Options returns merge options with the configured base and tolerance.
func (m MergeConfig) Options() merge.Options {
	opts := merge.Options{Base: m.BaseState}
	opts.SetTolerance(m.TolerancePx())
	return opts
}

// ReconstructConfig controls font resolution.
type ReconstructConfig struct {
	// FontAliases maps a declared family to replacement families.
	FontAliases map[string][]string `toml:"font_aliases" yaml:"font_aliases"`
	// FontDir is scanned for installed fonts; empty accepts any family.
	FontDir string `toml:"font_dir" yaml:"font_dir"`
}

// CompactConfig controls payload compaction. Enabled turns it on for
// capture jobs.
type CompactConfig struct {
	Enabled       bool  `toml:"enabled" yaml:"enabled"`
	Aggressive    bool  `toml:"aggressive" yaml:"aggressive"`
	StripDebug    bool  `toml:"strip_debug" yaml:"strip_debug"`
	MaxDepth      int   `toml:"max_depth" yaml:"max_depth"`
	MaxImageBytes int64 `toml:"max_image_bytes" yaml:"max_image_bytes"`
	MaxSVGBytes   int64 `toml:"max_svg_bytes" yaml:"max_svg_bytes"`
}

// FetchConfig controls asset fetching.
type FetchConfig struct {
	Concurrency int           `toml:"concurrency" yaml:"concurrency"`
	Timeout     time.Duration `toml:"timeout" yaml:"timeout"`
	MaxBytes    int64         `toml:"max_bytes" yaml:"max_bytes"`
	Attempts    int           `toml:"attempts" yaml:"attempts"`
	TTL         time.Duration `toml:"ttl" yaml:"ttl"`
}

// Cache backends.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheSQLite = "sqlite"
	CacheNone   = "none"
)

// CacheConfig selects the byte cache.
type CacheConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
	// Dir is the file cache directory; DSN is the redis URL or sqlite path.
	Dir string `toml:"dir" yaml:"dir"`
	DSN string `toml:"dsn" yaml:"dsn"`
}

// Document store backends.
const (
	StoreCache = "cache"
	StoreMongo = "mongo"
)

// StoreConfig selects the document store.
type StoreConfig struct {
	Backend    string        `toml:"backend" yaml:"backend"`
	URI        string        `toml:"uri" yaml:"uri"`
	Database   string        `toml:"database" yaml:"database"`
	Collection string        `toml:"collection" yaml:"collection"`
	TTL        time.Duration `toml:"ttl" yaml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// Load reads path. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes data in the format named by ext (".toml", ".yaml" or
// ".yml"), applies defaults and validates the result.
func Parse(data []byte, ext string) (*Config, error) {
	var c Config
	switch strings.ToLower(ext) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML config")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML config")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Capture.ViewportWidth <= 0 {
		c.Capture.ViewportWidth = 1440
	}
	if c.Capture.ViewportHeight <= 0 {
		c.Capture.ViewportHeight = 900
	}
	if c.Capture.NavigateTimeout <= 0 {
		c.Capture.NavigateTimeout = 30 * time.Second
	}
	if c.Capture.Settle <= 0 {
		c.Capture.Settle = 500 * time.Millisecond
	}
	if c.Capture.JobTimeout <= 0 {
		c.Capture.JobTimeout = 2 * time.Minute
	}
	if len(c.Capture.States) == 0 {
		c.Capture.States = []source.StateSpec{{Name: source.DefaultState}}
	}
	if c.Merge.Tolerance == nil {
		tol := merge.DefaultTolerance
		c.Merge.Tolerance = &tol
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = 8
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.Attempts <= 0 {
		c.Fetch.Attempts = 3
	}
	if c.Fetch.TTL <= 0 {
		c.Fetch.TTL = 24 * time.Hour
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreCache
	}
	if c.Store.TTL <= 0 {
		c.Store.TTL = 7 * 24 * time.Hour
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 64 << 20
	}
}

// Validate checks enumerations and cross-field constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis, CacheSQLite:
		if c.Cache.DSN == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend %q needs a dsn", c.Cache.Backend)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case StoreCache:
	case StoreMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "mongo store needs a uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	seen := make(map[string]bool)
	for _, s := range c.Capture.States {
		if err := errors.ValidateStateName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "state %q listed twice", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Merge.BaseState != "" && !seen[c.Merge.BaseState] {
		return errors.New(errors.ErrCodeInvalidInput, "base state %q is not a configured state", c.Merge.BaseState)
	}
	if c.Compact.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "compact.max_depth must not be negative")
	}
	return nil
}
