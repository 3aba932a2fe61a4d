// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
)

// Stats is a snapshot of a store's running counters. The counters are
// observability only; nothing in the store reads them for correctness.
type Stats struct {
	TotalBlobs       int64   `json:"total_blobs"`
	TotalSize        int64   `json:"total_size"`
	CompressedSize   int64   `json:"compressed_size"`
	CacheHits        int64   `json:"cache_hits"`
	CacheMisses      int64   `json:"cache_misses"`
	CompressionRatio float64 `json:"compression_ratio"`
	AverageBlobSize  float64 `json:"average_blob_size"`
	DedupSavings     int64   `json:"dedup_savings"`
	CacheEntries     int     `json:"cache_entries"`
	CacheBytes       int64   `json:"cache_bytes"`
}

// String renders the snapshot for logs.
func (s Stats) String() string {
	return fmt.Sprintf("%d blobs, %s (%s stored, ratio %.2f), dedup saved %s, cache %d/%d hits, %d entries (%s)",
		s.TotalBlobs,
		humanize.IBytes(uint64(max(s.TotalSize, 0))),
		humanize.IBytes(uint64(max(s.CompressedSize, 0))),
		s.CompressionRatio,
		humanize.IBytes(uint64(max(s.DedupSavings, 0))),
		s.CacheHits, s.CacheHits+s.CacheMisses,
		s.CacheEntries,
		humanize.IBytes(uint64(max(s.CacheBytes, 0))),
	)
}

// counters holds the mutable totals behind Stats.
type counters struct {
	mu             sync.Mutex
	totalBlobs     int64
	totalSize      int64
	compressedSize int64
	cacheHits      int64
	cacheMisses    int64
	dedupSavings   int64
}

func (c *counters) recordWrite(size, storedSize int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalBlobs++
	c.totalSize += size
	c.compressedSize += storedSize
}

func (c *counters) recordDelete(size, storedSize int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalBlobs--
	c.totalSize -= size
	c.compressedSize -= storedSize
}

func (c *counters) recordDedup(saved int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dedupSavings += saved
}

func (c *counters) recordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheHits++
}

func (c *counters) recordCacheMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheMisses++
}

// reset replaces the object totals, leaving cache and dedup counters
// alone. Used by RecomputeStats.
func (c *counters) reset(blobs, size, storedSize int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalBlobs = blobs
	c.totalSize = size
	c.compressedSize = storedSize
}

func (c *counters) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalBlobs:       c.totalBlobs,
		TotalSize:        c.totalSize,
		CompressedSize:   c.compressedSize,
		CacheHits:        c.cacheHits,
		CacheMisses:      c.cacheMisses,
		DedupSavings:     c.dedupSavings,
		CompressionRatio: 1,
	}
	if c.compressedSize > 0 {
		stats.CompressionRatio = float64(c.totalSize) / float64(c.compressedSize)
	}
	if c.totalBlobs > 0 {
		stats.AverageBlobSize = float64(c.totalSize) / float64(c.totalBlobs)
	}
	return stats
}
