// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/vitaly-z/brainy-sub013/lib/blobstore"
	"github.com/vitaly-z/brainy-sub013/lib/compress"
	"github.com/vitaly-z/brainy-sub013/lib/kv"
)

// EnvVar names the environment variable Load reads the config path
// from.
const EnvVar = "OBJECTSTORE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Format is a configuration file syntax.
type Format string

const (
	// FormatYAML is YAML. Plain JSON is also valid YAML.
	FormatYAML Format = "yaml"

	// FormatJSONC is JSON with // and /* */ comments and trailing
	// commas.
	FormatJSONC Format = "jsonc"
)

// Config is the object store configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	Cache       CacheConfig       `yaml:"cache"`
	Compression CompressionConfig `yaml:"compression"`
	Storage     StorageConfig     `yaml:"storage"`
	Encryption  EncryptionConfig  `yaml:"encryption"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment. Only non-zero fields override.
type ConfigOverrides struct {
	Cache       *CacheConfig       `yaml:"cache,omitempty"`
	Compression *CompressionConfig `yaml:"compression,omitempty"`
	Storage     *StorageConfig     `yaml:"storage,omitempty"`
	Encryption  *EncryptionConfig  `yaml:"encryption,omitempty"`
}

// CacheConfig configures the blob store's LRU cache.
type CacheConfig struct {
	// MaxSize is the cache budget. Default: 64MiB.
	MaxSize ByteSize `yaml:"max_size"`

	// Disabled turns the cache off entirely.
	Disabled bool `yaml:"disabled"`
}

// CompressionConfig configures which compressors are available and how
// auto selection picks among them.
type CompressionConfig struct {
	// Algorithms lists the compressors to register. "none" is always
	// available and need not be listed. Default: [zstd, lz4].
	Algorithms []string `yaml:"algorithms"`

	// Preferred is the algorithm auto selection uses. Default: zstd.
	Preferred string `yaml:"preferred"`

	// MinSize is the smallest payload auto selection compresses.
	// Default: 1KiB.
	MinSize ByteSize `yaml:"min_size"`
}

// StorageConfig configures the key layout and write path.
type StorageConfig struct {
	// Prefixes maps object types (vector, metadata, raw, tree,
	// commit) to storage prefixes other than the built-in ones.
	Prefixes map[string]string `yaml:"prefixes"`

	// LargeObjectThreshold is the stored size at which payloads go
	// through the large-object writer. Default: 5MiB.
	LargeObjectThreshold ByteSize `yaml:"large_object_threshold"`

	// BatchConcurrency bounds in-flight operations per batch call.
	// Default: 16.
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// EncryptionConfig configures at-rest value encryption.
type EncryptionConfig struct {
	// KeyFile holds the 32-byte master key, raw or hex encoded.
	// Empty disables encryption. ${HOME} and ${VAR:-default} are
	// expanded.
	KeyFile string `yaml:"key_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Cache: CacheConfig{
			MaxSize: blobstore.DefaultCacheBytes,
		},
		Compression: CompressionConfig{
			Algorithms: []string{string(compress.AlgorithmZstd), string(compress.AlgorithmLZ4)},
			Preferred:  string(compress.AlgorithmZstd),
			MinSize:    blobstore.DefaultMinCompressSize,
		},
		Storage: StorageConfig{
			LargeObjectThreshold: blobstore.DefaultLargeObjectThreshold,
			BatchConcurrency:     blobstore.DefaultBatchConcurrency,
		},
	}
}

// Load loads configuration from the file named by OBJECTSTORE_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of the object store config file", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. Files ending in .json or
// .jsonc are read as JSONC; everything else as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	format := FormatYAML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		format = FormatJSONC
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default(), then applies the environment
// overrides and variable expansion.
func Parse(data []byte, format Format) (*Config, error) {
	switch format {
	case FormatYAML:
	case FormatJSONC:
		data = jsonc.ToJSON(data)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Cache != nil {
		if overrides.Cache.MaxSize != 0 {
			c.Cache.MaxSize = overrides.Cache.MaxSize
		}
		// Disabled is a bool, so it always applies when the section
		// is present.
		c.Cache.Disabled = overrides.Cache.Disabled
	}

	if overrides.Compression != nil {
		if overrides.Compression.Algorithms != nil {
			c.Compression.Algorithms = overrides.Compression.Algorithms
		}
		if overrides.Compression.Preferred != "" {
			c.Compression.Preferred = overrides.Compression.Preferred
		}
		if overrides.Compression.MinSize != 0 {
			c.Compression.MinSize = overrides.Compression.MinSize
		}
	}

	if overrides.Storage != nil {
		if overrides.Storage.Prefixes != nil {
			c.Storage.Prefixes = overrides.Storage.Prefixes
		}
		if overrides.Storage.LargeObjectThreshold != 0 {
			c.Storage.LargeObjectThreshold = overrides.Storage.LargeObjectThreshold
		}
		if overrides.Storage.BatchConcurrency != 0 {
			c.Storage.BatchConcurrency = overrides.Storage.BatchConcurrency
		}
	}

	if overrides.Encryption != nil && overrides.Encryption.KeyFile != "" {
		c.Encryption.KeyFile = overrides.Encryption.KeyFile
	}
}

func (c *Config) expandVariables() {
	c.Encryption.KeyFile = expandVars(c.Encryption.KeyFile, map[string]string{
		"HOME": os.Getenv("HOME"),
	})
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. Every problem found is
// reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	for _, name := range c.Compression.Algorithms {
		if _, err := compress.ParseAlgorithm(name); err != nil {
			errs = append(errs, fmt.Errorf("compression.algorithms: %w", err))
		}
	}
	if c.Compression.Preferred != "" {
		if _, err := compress.ParseAlgorithm(c.Compression.Preferred); err != nil {
			errs = append(errs, fmt.Errorf("compression.preferred: %w", err))
		}
	}

	for typeName, prefix := range c.Storage.Prefixes {
		if _, err := blobstore.ParseObjectType(typeName); err != nil {
			errs = append(errs, fmt.Errorf("storage.prefixes: %w", err))
		}
		if prefix == "" {
			errs = append(errs, fmt.Errorf("storage.prefixes.%s must not be empty", typeName))
		}
	}
	if c.Storage.BatchConcurrency < 0 {
		errs = append(errs, fmt.Errorf("storage.batch_concurrency must not be negative"))
	}

	return errors.Join(errs...)
}

// Compressors builds the compressor registry the config names.
func (c *Config) Compressors() (*compress.Registry, error) {
	var strategies []compress.Strategy
	for _, name := range c.Compression.Algorithms {
		algorithm, err := compress.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		switch algorithm {
		case compress.AlgorithmZstd:
			zstd, err := compress.NewZstd()
			if err != nil {
				return nil, err
			}
			strategies = append(strategies, zstd)
		case compress.AlgorithmLZ4:
			strategies = append(strategies, compress.NewLZ4())
		}
	}
	return compress.NewRegistry(strategies...), nil
}

// StoreOptions validates the config and converts it to blobstore
// options. logger may be nil.
func (c *Config) StoreOptions(logger *slog.Logger) (blobstore.Options, error) {
	if err := c.Validate(); err != nil {
		return blobstore.Options{}, err
	}
	registry, err := c.Compressors()
	if err != nil {
		return blobstore.Options{}, err
	}

	cacheBytes := int64(c.Cache.MaxSize)
	if c.Cache.Disabled {
		cacheBytes = -1
	}

	var prefixes map[blobstore.ObjectType]string
	if len(c.Storage.Prefixes) > 0 {
		prefixes = make(map[blobstore.ObjectType]string, len(c.Storage.Prefixes))
		for typeName, prefix := range c.Storage.Prefixes {
			prefixes[blobstore.ObjectType(typeName)] = prefix
		}
	}

	return blobstore.Options{
		Logger:      logger,
		Compressors: registry,
		Policy: blobstore.CompressionPolicy{
			MinSize:   int(c.Compression.MinSize),
			Preferred: compress.Algorithm(c.Compression.Preferred),
		},
		CacheBytes:           cacheBytes,
		Prefixes:             prefixes,
		LargeObjectThreshold: int64(c.Storage.LargeObjectThreshold),
		BatchConcurrency:     c.Storage.BatchConcurrency,
	}, nil
}

// WrapAdapter returns inner wrapped in value encryption when a key file
// is configured, and inner unchanged otherwise.
func (c *Config) WrapAdapter(inner kv.Adapter) (kv.Adapter, error) {
	if c.Encryption.KeyFile == "" {
		return inner, nil
	}
	key, err := readKeyFile(c.Encryption.KeyFile)
	if err != nil {
		return nil, err
	}
	return kv.Seal(inner, key)
}

// readKeyFile accepts a raw 32-byte key or its hex encoding with
// optional surrounding whitespace.
func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading encryption key: %w", err)
	}
	if len(data) == kv.KeySize {
		return data, nil
	}
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == hex.EncodedLen(kv.KeySize) {
		key, err := hex.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("decoding encryption key %s: %w", path, err)
		}
		return key, nil
	}
	return nil, fmt.Errorf("encryption key %s must be %d raw bytes or %d hex characters", path, kv.KeySize, hex.EncodedLen(kv.KeySize))
}
