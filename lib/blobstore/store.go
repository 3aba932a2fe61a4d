// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitaly-z/brainy-sub013/lib/clock"
	"github.com/vitaly-z/brainy-sub013/lib/codec"
	"github.com/vitaly-z/brainy-sub013/lib/compress"
	"github.com/vitaly-z/brainy-sub013/lib/kv"
	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// Defaults applied by New.
const (
	DefaultCacheBytes       = 64 * 1024 * 1024
	DefaultMinCompressSize  = 1024
	DefaultBatchConcurrency = 16
)

// Options configures a Store. The zero value is usable: no compressors
// beyond none, a 64 MiB cache, a real clock, and a discarding logger.
type Options struct {
	// Logger receives per-object debug events and GC summaries. If
	// nil, a no-op logger is used.
	Logger *slog.Logger

	// Clock stamps CreatedAt and cache access times. Defaults to the
	// real clock.
	Clock clock.Clock

	// Compressors is the set of available codecs. None is always
	// present. If nil, only None is available.
	Compressors *compress.Registry

	// Policy tunes auto compression.
	Policy CompressionPolicy

	// CacheBytes bounds the LRU cache. Zero means
	// DefaultCacheBytes; negative disables the cache.
	CacheBytes int64

	// Prefixes redirects object types to non-default storage
	// prefixes.
	Prefixes map[ObjectType]string

	// LargeObjectThreshold is the stored size at which payloads go
	// through LargeObjectWriter. Zero means
	// DefaultLargeObjectThreshold.
	LargeObjectThreshold int64

	// LargeObjectWriter handles large payloads. Defaults to
	// SingleShotWriter.
	LargeObjectWriter LargeObjectWriter

	// BatchConcurrency bounds in-flight operations per batch call.
	// Zero means DefaultBatchConcurrency.
	BatchConcurrency int
}

// Store is the content-addressable blob store. It is safe for
// concurrent use; see the package documentation for the limits of its
// reference-count serialization.
type Store struct {
	adapter     kv.Adapter
	logger      *slog.Logger
	clock       clock.Clock
	compressors *compress.Registry
	policy      CompressionPolicy
	keys        *keySpace
	cache       *lruCache
	locks       hashLocks
	counters    counters

	largeThreshold   int64
	largeWriter      LargeObjectWriter
	batchConcurrency int
}

// New creates a Store persisting through adapter.
func New(adapter kv.Adapter, options Options) (*Store, error) {
	if adapter == nil {
		return nil, fmt.Errorf("blobstore: adapter is required")
	}

	keys, err := newKeySpace(options.Prefixes)
	if err != nil {
		return nil, fmt.Errorf("blobstore: %w", err)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	compressors := options.Compressors
	if compressors == nil {
		compressors = compress.NewRegistry()
	}

	policy := options.Policy
	if policy.MinSize <= 0 {
		policy.MinSize = DefaultMinCompressSize
	}
	if policy.Preferred == "" {
		policy.Preferred = compress.AlgorithmZstd
	}

	cacheBytes := options.CacheBytes
	if cacheBytes == 0 {
		cacheBytes = DefaultCacheBytes
	}
	largeThreshold := options.LargeObjectThreshold
	if largeThreshold <= 0 {
		largeThreshold = DefaultLargeObjectThreshold
	}
	largeWriter := options.LargeObjectWriter
	if largeWriter == nil {
		largeWriter = SingleShotWriter{}
	}
	batchConcurrency := options.BatchConcurrency
	if batchConcurrency <= 0 {
		batchConcurrency = DefaultBatchConcurrency
	}

	c := clock.OrReal(options.Clock)
	return &Store{
		adapter:          adapter,
		logger:           logger,
		clock:            c,
		compressors:      compressors,
		policy:           policy,
		keys:             keys,
		cache:            newLRUCache(cacheBytes, c),
		largeThreshold:   largeThreshold,
		largeWriter:      largeWriter,
		batchConcurrency: batchConcurrency,
	}, nil
}

// located is metadata plus the prefix it was found under.
type located struct {
	prefix   string
	metadata *Metadata
}

// Write stores data and returns its hash. If the content is already
// stored, Write increments its reference count instead of rewriting
// it, regardless of the type or compression requested.
func (s *Store) Write(ctx context.Context, data []byte, options WriteOptions) (objecthash.Hash, error) {
	objectType := options.Type
	if objectType == "" {
		objectType = TypeRaw
	}
	if _, err := ParseObjectType(string(objectType)); err != nil {
		return objecthash.Hash{}, err
	}

	hash := objecthash.Sum(data)

	unlock := s.locks.lock(hash)
	defer unlock()

	existing, err := s.locate(ctx, hash)
	switch {
	case err == nil:
		existing.metadata.RefCount++
		if err := s.putMetadata(ctx, existing.prefix, existing.metadata); err != nil {
			return objecthash.Hash{}, fmt.Errorf("recording duplicate write of %s: %w", hash.Short(), err)
		}
		s.cache.updateMetadata(hash, *existing.metadata)
		s.counters.recordDedup(int64(len(data)))
		s.logger.Debug("blob deduplicated",
			"hash", hash.Short(),
			"ref_count", existing.metadata.RefCount,
			"saved_bytes", len(data),
		)
		return hash, nil
	case !errors.Is(err, ErrMetadataNotFound):
		return objecthash.Hash{}, err
	}

	payload, algorithm := s.compressPayload(data, objectType, options.Compression)

	metadata := &Metadata{
		Hash:           hash,
		Size:           int64(len(data)),
		CompressedSize: int64(len(payload)),
		Compression:    algorithm,
		Type:           objectType,
		CreatedAt:      s.clock.Now().UTC(),
		RefCount:       1,
		Checksum:       objecthash.Checksum(payload),
	}

	prefix := s.keys.prefixFor(objectType)
	key := objectKey(prefix, hash)
	if int64(len(payload)) >= s.largeThreshold {
		err = s.largeWriter.WriteLarge(ctx, s.adapter, key, payload)
	} else {
		err = s.adapter.Put(ctx, key, payload)
	}
	if err != nil {
		return objecthash.Hash{}, fmt.Errorf("writing blob %s: %w", hash.Short(), err)
	}

	// Payload before metadata: metadata is what makes the object
	// visible, so it must never point at bytes that are not there.
	if err := s.putMetadata(ctx, prefix, metadata); err != nil {
		return objecthash.Hash{}, fmt.Errorf("writing metadata for %s: %w", hash.Short(), err)
	}

	if evicted := s.cache.put(hash, data, *metadata); evicted > 0 {
		s.logger.Debug("cache evicted entries", "count", evicted)
	}
	s.counters.recordWrite(metadata.Size, metadata.CompressedSize)
	return hash, nil
}

// Read returns the uncompressed content for hash.
func (s *Store) Read(ctx context.Context, hash objecthash.Hash, options ReadOptions) ([]byte, error) {
	if !options.SkipCache {
		if data, ok := s.cache.get(hash); ok {
			s.counters.recordCacheHit()
			return data, nil
		}
		s.counters.recordCacheMiss()
	}

	data, location, err := s.load(ctx, hash, !options.SkipVerification)
	if err != nil {
		return nil, err
	}

	s.cache.put(hash, data, *location.metadata)
	return data, nil
}

// Verify reads hash from storage, bypassing and not filling the cache,
// and checks its checksum and content hash.
func (s *Store) Verify(ctx context.Context, hash objecthash.Hash) error {
	_, _, err := s.load(ctx, hash, true)
	return err
}

// load reads and decodes a payload from the adapter.
func (s *Store) load(ctx context.Context, hash objecthash.Hash, verify bool) ([]byte, *located, error) {
	location, err := s.locate(ctx, hash)
	if err != nil {
		return nil, nil, err
	}
	metadata := location.metadata

	payload, err := s.adapter.Get(ctx, objectKey(location.prefix, hash))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil, fmt.Errorf("reading %s: %w", hash.Short(), ErrBlobNotFound)
		}
		if errors.Is(err, kv.ErrTampered) {
			return nil, nil, fmt.Errorf("reading blob %s: %v: %w", hash.Short(), err, ErrHashMismatch)
		}
		return nil, nil, fmt.Errorf("reading blob %s: %w", hash.Short(), err)
	}

	if verify && metadata.Checksum != ([32]byte{}) && objecthash.Checksum(payload) != metadata.Checksum {
		return nil, nil, fmt.Errorf("stored payload of %s does not match its checksum: %w", hash.Short(), ErrHashMismatch)
	}

	data := payload
	if metadata.Compression != compress.AlgorithmNone && metadata.Compression != "" {
		strategy, ok := s.compressors.Lookup(metadata.Compression)
		if !ok {
			return nil, nil, fmt.Errorf("reading %s compressed with %s: %w", hash.Short(), metadata.Compression, ErrDecompressionUnavailable)
		}
		data, err = strategy.Decompress(payload, int(metadata.Size))
		if err != nil {
			if verify {
				return nil, nil, fmt.Errorf("decompressing %s: %v: %w", hash.Short(), err, ErrHashMismatch)
			}
			return nil, nil, fmt.Errorf("decompressing %s: %w", hash.Short(), err)
		}
	}

	if verify && objecthash.Sum(data) != hash {
		return nil, nil, fmt.Errorf("content of %s hashes to %s: %w", hash.Short(), objecthash.Sum(data).Short(), ErrHashMismatch)
	}
	return data, location, nil
}

// Has reports whether hash is cached or stored under any prefix. It
// does not read or verify the payload.
func (s *Store) Has(ctx context.Context, hash objecthash.Hash) (bool, error) {
	if s.cache.contains(hash) {
		return true, nil
	}
	_, err := s.locate(ctx, hash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrMetadataNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Metadata returns the stored metadata for hash without reading the
// payload. An unknown hash yields ErrMetadataNotFound.
func (s *Store) Metadata(ctx context.Context, hash objecthash.Hash) (*Metadata, error) {
	location, err := s.locate(ctx, hash)
	if err != nil {
		return nil, err
	}
	return location.metadata, nil
}

// CachedMetadata returns the metadata snapshot held by the cache, with
// no adapter I/O. The snapshot reflects this Store's own writes only.
func (s *Store) CachedMetadata(hash objecthash.Hash) (Metadata, bool) {
	return s.cache.metadata(hash)
}

// Delete releases one reference to hash. The object is removed from
// storage and cache only when its reference count reaches zero.
func (s *Store) Delete(ctx context.Context, hash objecthash.Hash) error {
	unlock := s.locks.lock(hash)
	defer unlock()

	location, err := s.locate(ctx, hash)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", hash.Short(), err)
	}

	metadata := location.metadata
	if metadata.RefCount > 0 {
		metadata.RefCount--
	}
	if metadata.RefCount > 0 {
		if err := s.putMetadata(ctx, location.prefix, metadata); err != nil {
			return fmt.Errorf("decrementing ref count of %s: %w", hash.Short(), err)
		}
		s.cache.updateMetadata(hash, *metadata)
		return nil
	}
	return s.remove(ctx, location)
}

// IncrementRef adds one reference to an existing object.
func (s *Store) IncrementRef(ctx context.Context, hash objecthash.Hash) (int64, error) {
	unlock := s.locks.lock(hash)
	defer unlock()

	location, err := s.locate(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrMetadataNotFound) {
			return 0, fmt.Errorf("%s: %w", hash.Short(), ErrRefCountNotFound)
		}
		return 0, err
	}
	location.metadata.RefCount++
	if err := s.putMetadata(ctx, location.prefix, location.metadata); err != nil {
		return 0, fmt.Errorf("incrementing ref count of %s: %w", hash.Short(), err)
	}
	s.cache.updateMetadata(hash, *location.metadata)
	return location.metadata.RefCount, nil
}

// DecrementRef removes one reference without deleting the object, even
// when the count reaches zero. The count never goes below zero.
func (s *Store) DecrementRef(ctx context.Context, hash objecthash.Hash) (int64, error) {
	unlock := s.locks.lock(hash)
	defer unlock()

	location, err := s.locate(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrMetadataNotFound) {
			return 0, fmt.Errorf("%s: %w", hash.Short(), ErrRefCountNotFound)
		}
		return 0, err
	}
	if location.metadata.RefCount == 0 {
		return 0, nil
	}
	location.metadata.RefCount--
	if err := s.putMetadata(ctx, location.prefix, location.metadata); err != nil {
		return 0, fmt.Errorf("decrementing ref count of %s: %w", hash.Short(), err)
	}
	s.cache.updateMetadata(hash, *location.metadata)
	return location.metadata.RefCount, nil
}

// ClearCache drops every cached object. Persisted data is untouched.
func (s *Store) ClearCache() {
	s.cache.clear()
}

// Stats returns a snapshot of the running counters.
func (s *Store) Stats() Stats {
	stats := s.counters.snapshot()
	stats.CacheEntries, stats.CacheBytes = s.cache.usage()
	return stats
}

// RecomputeStats rebuilds the object totals from stored metadata.
// Counters start at zero in a new Store; call this after opening an
// existing store when accurate totals matter.
func (s *Store) RecomputeStats(ctx context.Context) error {
	hashes, err := s.List(ctx)
	if err != nil {
		return err
	}
	var blobs, size, storedSize int64
	for _, hash := range hashes {
		metadata, err := s.Metadata(ctx, hash)
		if err != nil {
			return fmt.Errorf("recomputing stats: %w", err)
		}
		blobs++
		size += metadata.Size
		storedSize += metadata.CompressedSize
	}
	s.counters.reset(blobs, size, storedSize)
	return nil
}

// remove deletes payload, metadata, and cache entry. Caller holds the
// hash lock.
func (s *Store) remove(ctx context.Context, location *located) error {
	hash := location.metadata.Hash
	if err := s.adapter.Delete(ctx, objectKey(location.prefix, hash)); err != nil {
		return fmt.Errorf("deleting blob %s: %w", hash.Short(), err)
	}
	if err := s.adapter.Delete(ctx, metadataKey(location.prefix, hash)); err != nil {
		return fmt.Errorf("deleting metadata of %s: %w", hash.Short(), err)
	}
	s.cache.remove(hash)
	s.counters.recordDelete(location.metadata.Size, location.metadata.CompressedSize)
	s.logger.Debug("blob removed", "hash", hash.Short(), "type", location.metadata.Type)
	return nil
}

// locate finds metadata for hash by probing prefixes in order.
func (s *Store) locate(ctx context.Context, hash objecthash.Hash) (*located, error) {
	for _, prefix := range s.keys.probe {
		data, err := s.adapter.Get(ctx, metadataKey(prefix, hash))
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if errors.Is(err, kv.ErrTampered) {
			return nil, fmt.Errorf("reading metadata of %s: %v: %w", hash.Short(), err, ErrHashMismatch)
		}
		if err != nil {
			return nil, fmt.Errorf("reading metadata of %s: %w", hash.Short(), err)
		}

		var metadata Metadata
		if err := codec.Unmarshal(data, &metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of %s under %q: %v: %w", hash.Short(), prefix, err, ErrHashMismatch)
		}
		if metadata.Hash != hash {
			return nil, fmt.Errorf("metadata under %q for %s names %s: %w", prefix, hash.Short(), metadata.Hash.Short(), ErrHashMismatch)
		}
		return &located{prefix: prefix, metadata: &metadata}, nil
	}
	return nil, fmt.Errorf("%s: %w", hash.Short(), ErrMetadataNotFound)
}

func (s *Store) putMetadata(ctx context.Context, prefix string, metadata *Metadata) error {
	data, err := codec.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return s.adapter.Put(ctx, metadataKey(prefix, metadata.Hash), data)
}

// compressPayload applies the compression decision for one write and
// returns the bytes to store with the algorithm actually used.
func (s *Store) compressPayload(data []byte, objectType ObjectType, requested compress.Algorithm) ([]byte, compress.Algorithm) {
	strategy := s.selectStrategy(len(data), objectType, requested)
	if strategy == nil || strategy.Algorithm() == compress.AlgorithmNone {
		return data, compress.AlgorithmNone
	}

	compressed, err := strategy.Compress(data)
	if err != nil {
		if !errors.Is(err, compress.ErrIncompressible) {
			s.logger.Warn("compression failed, storing uncompressed",
				"algorithm", strategy.Algorithm(),
				"size", len(data),
				"error", err,
			)
		}
		return data, compress.AlgorithmNone
	}
	return compressed, strategy.Algorithm()
}

// selectStrategy implements the compression policy. nil means store
// uncompressed.
func (s *Store) selectStrategy(size int, objectType ObjectType, requested compress.Algorithm) compress.Strategy {
	switch requested {
	case "", CompressionAuto:
	case compress.AlgorithmNone:
		return nil
	default:
		strategy, ok := s.compressors.Lookup(requested)
		if !ok {
			s.logger.Debug("requested compressor not registered, storing uncompressed", "algorithm", requested)
			return nil
		}
		return strategy
	}

	if size < s.policy.MinSize || objectType == TypeVector {
		return nil
	}
	if strategy, ok := s.compressors.Lookup(s.policy.Preferred); ok && strategy.Algorithm() != compress.AlgorithmNone {
		return strategy
	}
	for _, algorithm := range s.compressors.Algorithms() {
		if algorithm != compress.AlgorithmNone {
			strategy, _ := s.compressors.Lookup(algorithm)
			return strategy
		}
	}
	return nil
}
