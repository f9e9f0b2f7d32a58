// Package config loads client configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/shoalstore/shoal-go/internal/errs"
)

// Config holds all settings for a shoal client instance.
type Config struct {
	// ConnString is the address of the document store,
	// e.g. "shoal://node1.example.com,node2.example.com".
	ConnString string `yaml:"conn_string"`

	// Bucket is the default bucket documents are read from and written to.
	Bucket string `yaml:"bucket"`

	// Transcoder selects the default value codec: json, rawjson,
	// rawstring, rawbinary, or legacy.
	Transcoder string `yaml:"transcoder"`

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	KVTimeout      time.Duration `yaml:"kv_timeout"`

	// Stream tuning
	Stream StreamConfig `yaml:"stream"`

	// Logging
	Log LogConfig `yaml:"log"`
}

// StreamConfig tunes the streaming result iterator.
type StreamConfig struct {
	// QueueCapacity is the size of the row delivery queue. Minimum 1.
	QueueCapacity int `yaml:"queue_capacity"`
}

// LogConfig mirrors logger.Config for the YAML surface.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var validTranscoders = map[string]bool{
	"json":      true,
	"rawjson":   true,
	"rawstring": true,
	"rawbinary": true,
	"legacy":    true,
}

// Default returns production-ready settings for the given connection string.
func Default(connString string) *Config {
	return &Config{
		ConnString:     connString,
		Bucket:         "default",
		Transcoder:     "json",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   75 * time.Second,
		KVTimeout:      2500 * time.Millisecond,
		Stream:         StreamConfig{QueueCapacity: 1},
		Log:            LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads a YAML config file, fills unset fields from Default, and
// validates the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot read config file", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot parse config file", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default(c.ConnString)
	if c.Bucket == "" {
		c.Bucket = def.Bucket
	}
	if c.Transcoder == "" {
		c.Transcoder = def.Transcoder
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = def.QueryTimeout
	}
	if c.KVTimeout == 0 {
		c.KVTimeout = def.KVTimeout
	}
	if c.Stream.QueueCapacity == 0 {
		c.Stream.QueueCapacity = def.Stream.QueueCapacity
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks the config for values no client can run with.
func (c *Config) Validate() error {
	if c.ConnString == "" {
		return errs.New(errs.ErrKindInvalidInput, "conn_string is required")
	}
	if !validTranscoders[c.Transcoder] {
		return errs.Newf(errs.ErrKindInvalidInput,
			"unknown transcoder %q", c.Transcoder)
	}
	if c.Stream.QueueCapacity < 1 {
		return errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("stream queue_capacity must be >= 1, got %d", c.Stream.QueueCapacity))
	}
	return nil
}
