// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vitaly-z/brainy-sub013/lib/blobstore"
	"github.com/vitaly-z/brainy-sub013/lib/compress"
	"github.com/vitaly-z/brainy-sub013/lib/kv"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Cache.MaxSize != 64<<20 {
		t.Errorf("expected cache.max_size=64MiB, got %s", cfg.Cache.MaxSize)
	}
	if cfg.Compression.Preferred != "zstd" {
		t.Errorf("expected compression.preferred=zstd, got %s", cfg.Compression.Preferred)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() failed: %v", err)
	}
}

func TestLoad_RequiresEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when OBJECTSTORE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), EnvVar+" environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvVar(t *testing.T) {
	path := writeConfig(t, "objectstore.yaml", `
environment: staging
cache:
  max_size: 8MiB
`)
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Cache.MaxSize != 8<<20 {
		t.Errorf("expected cache.max_size=8MiB, got %d", cfg.Cache.MaxSize)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, "objectstore.yaml", `
cache:
  max_size: 1048576
compression:
  algorithms: [lz4]
  preferred: lz4
  min_size: 2 KiB
storage:
  prefixes:
    vector: vectors
  large_object_threshold: 16MiB
  batch_concurrency: 4
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Cache.MaxSize != 1<<20 {
		t.Errorf("expected cache.max_size=1MiB, got %d", cfg.Cache.MaxSize)
	}
	if len(cfg.Compression.Algorithms) != 1 || cfg.Compression.Algorithms[0] != "lz4" {
		t.Errorf("expected algorithms=[lz4], got %v", cfg.Compression.Algorithms)
	}
	if cfg.Compression.MinSize != 2048 {
		t.Errorf("expected min_size=2048, got %d", cfg.Compression.MinSize)
	}
	if cfg.Storage.Prefixes["vector"] != "vectors" {
		t.Errorf("expected vector prefix=vectors, got %v", cfg.Storage.Prefixes)
	}
	if cfg.Storage.LargeObjectThreshold != 16<<20 {
		t.Errorf("expected large_object_threshold=16MiB, got %d", cfg.Storage.LargeObjectThreshold)
	}
	if cfg.Storage.BatchConcurrency != 4 {
		t.Errorf("expected batch_concurrency=4, got %d", cfg.Storage.BatchConcurrency)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "objectstore.jsonc", `{
  // Production box with a small cache.
  "environment": "production",
  "cache": {"max_size": "512KiB"},
  /* lz4 only */
  "compression": {"algorithms": ["lz4"], "preferred": "lz4",},
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Environment != Production {
		t.Errorf("expected environment=production, got %s", cfg.Environment)
	}
	if cfg.Cache.MaxSize != 512<<10 {
		t.Errorf("expected cache.max_size=512KiB, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Compression.Preferred != "lz4" {
		t.Errorf("expected preferred=lz4, got %s", cfg.Compression.Preferred)
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	if _, err := Parse([]byte("{}"), "toml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParse_BadByteSize(t *testing.T) {
	for _, value := range []string{"lots", "-5", "[1, 2]"} {
		if _, err := Parse([]byte("cache:\n  max_size: "+value+"\n"), FormatYAML); err == nil {
			t.Errorf("expected error for max_size %s", value)
		}
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "objectstore.yaml", `
environment: production

cache:
  max_size: 64MiB

compression:
  preferred: zstd

production:
  cache:
    max_size: 1GiB
    disabled: true
  compression:
    preferred: lz4
  storage:
    batch_concurrency: 64

staging:
  cache:
    max_size: 1MiB
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Cache.MaxSize != 1<<30 {
		t.Errorf("expected max_size=1GiB from production override, got %s", cfg.Cache.MaxSize)
	}
	if !cfg.Cache.Disabled {
		t.Error("expected cache disabled from production override")
	}
	if cfg.Compression.Preferred != "lz4" {
		t.Errorf("expected preferred=lz4, got %s", cfg.Compression.Preferred)
	}
	if cfg.Storage.BatchConcurrency != 64 {
		t.Errorf("expected batch_concurrency=64, got %d", cfg.Storage.BatchConcurrency)
	}
	if len(cfg.Compression.Algorithms) != 2 {
		t.Errorf("expected default algorithms untouched, got %v", cfg.Compression.Algorithms)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("OBJECTSTORE_TEST_DIR", "/secrets")
	t.Setenv("HOME", "/home/test")

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/.objectstore/key", "/home/test/.objectstore/key"},
		{"${OBJECTSTORE_TEST_DIR}/key", "/secrets/key"},
		{"${OBJECTSTORE_UNSET_VAR:-/fallback}/key", "/fallback/key"},
		{"/absolute/key", "/absolute/key"},
	}

	for _, tt := range tests {
		got := expandVars(tt.input, map[string]string{"HOME": os.Getenv("HOME")})
		if got != tt.want {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"bad algorithm", func(c *Config) { c.Compression.Algorithms = []string{"gzip"} }, "compression.algorithms"},
		{"bad preferred", func(c *Config) { c.Compression.Preferred = "brotli" }, "compression.preferred"},
		{"bad prefix type", func(c *Config) { c.Storage.Prefixes = map[string]string{"embedding": "e"} }, "storage.prefixes"},
		{"empty prefix", func(c *Config) { c.Storage.Prefixes = map[string]string{"vector": ""} }, "must not be empty"},
		{"negative concurrency", func(c *Config) { c.Storage.BatchConcurrency = -1 }, "batch_concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BadAlgorithmIsUnknownAlgorithm(t *testing.T) {
	cfg := Default()
	cfg.Compression.Algorithms = []string{"gzip"}
	if err := cfg.Validate(); !errors.Is(err, compress.ErrUnknownAlgorithm) {
		t.Errorf("Validate() error = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestStoreOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
cache:
  disabled: true
compression:
  algorithms: [lz4]
  preferred: lz4
  min_size: 16
storage:
  prefixes:
    vector: vectors
`), FormatYAML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	options, err := cfg.StoreOptions(nil)
	if err != nil {
		t.Fatalf("StoreOptions failed: %v", err)
	}
	if options.CacheBytes != -1 {
		t.Errorf("CacheBytes = %d, want -1 for a disabled cache", options.CacheBytes)
	}
	if _, ok := options.Compressors.Lookup(compress.AlgorithmLZ4); !ok {
		t.Error("lz4 not registered")
	}
	if _, ok := options.Compressors.Lookup(compress.AlgorithmZstd); ok {
		t.Error("zstd registered but not configured")
	}
	if options.Prefixes[blobstore.TypeVector] != "vectors" {
		t.Errorf("Prefixes = %v, want vector -> vectors", options.Prefixes)
	}

	ctx := context.Background()
	memory := kv.NewMemory()
	store, err := blobstore.New(memory, options)
	if err != nil {
		t.Fatalf("blobstore.New failed: %v", err)
	}
	hash, err := store.Write(ctx, bytes.Repeat([]byte("abcd"), 64), blobstore.WriteOptions{Type: blobstore.TypeMetadata})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	metadata, err := store.Metadata(ctx, hash)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if metadata.Compression != compress.AlgorithmLZ4 {
		t.Errorf("Compression = %s, want lz4", metadata.Compression)
	}

	vectorHash, err := store.Write(ctx, []byte("vector"), blobstore.WriteOptions{Type: blobstore.TypeVector})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := memory.Get(ctx, "vectors:"+vectorHash.String()); err != nil {
		t.Errorf("vector payload not under configured prefix: %v", err)
	}
}

func TestStoreOptions_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Compression.Algorithms = []string{"gzip"}
	if _, err := cfg.StoreOptions(nil); err == nil {
		t.Error("expected StoreOptions to fail for an invalid config")
	}
}

func TestWrapAdapter(t *testing.T) {
	ctx := context.Background()
	key := bytes.Repeat([]byte{0x42}, kv.KeySize)

	t.Run("no key file", func(t *testing.T) {
		inner := kv.NewMemory()
		adapter, err := Default().WrapAdapter(inner)
		if err != nil {
			t.Fatalf("WrapAdapter failed: %v", err)
		}
		if adapter != kv.Adapter(inner) {
			t.Error("expected the inner adapter back unchanged")
		}
	})

	for name, content := range map[string][]byte{
		"raw": key,
		"hex": []byte(hex.EncodeToString(key) + "\n"),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Encryption.KeyFile = writeConfig(t, "master.key", string(content))

			inner := kv.NewMemory()
			adapter, err := cfg.WrapAdapter(inner)
			if err != nil {
				t.Fatalf("WrapAdapter failed: %v", err)
			}
			if err := adapter.Put(ctx, "k", []byte("secret")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			stored, err := inner.Get(ctx, "k")
			if err != nil {
				t.Fatalf("inner Get failed: %v", err)
			}
			if bytes.Contains(stored, []byte("secret")) {
				t.Error("value stored in plaintext")
			}
			value, err := adapter.Get(ctx, "k")
			if err != nil || string(value) != "secret" {
				t.Errorf("Get = (%q, %v), want secret", value, err)
			}
		})
	}

	t.Run("malformed key", func(t *testing.T) {
		cfg := Default()
		cfg.Encryption.KeyFile = writeConfig(t, "master.key", "too short")
		if _, err := cfg.WrapAdapter(kv.NewMemory()); err == nil {
			t.Error("expected error for a malformed key file")
		}
	})
}

func TestByteSizeMarshalRoundTrip(t *testing.T) {
	data, err := yaml.Marshal(struct {
		Size ByteSize `yaml:"size"`
	}{Size: 3 << 20})
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "3.0 MiB") {
		t.Errorf("marshaled = %q, want a human-readable size", data)
	}

	var decoded struct {
		Size ByteSize `yaml:"size"`
	}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if decoded.Size != 3<<20 {
		t.Errorf("round trip = %d, want %d", decoded.Size, 3<<20)
	}
}
