// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"bytes"
	"testing"
	"time"

	"github.com/vitaly-z/brainy-sub013/lib/clock"
	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

func cacheItem(label string, size int) (objecthash.Hash, []byte) {
	data := bytes.Repeat([]byte(label[:1]), size)
	data = append(data, label...)
	return objecthash.Sum(data), data
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	fake := clock.Fake(testEpoch)
	cache := newLRUCache(300, fake)

	hashA, dataA := cacheItem("a", 96)
	hashB, dataB := cacheItem("b", 96)
	hashC, dataC := cacheItem("c", 96)
	hashD, dataD := cacheItem("d", 96)

	for _, item := range []struct {
		hash objecthash.Hash
		data []byte
	}{{hashA, dataA}, {hashB, dataB}, {hashC, dataC}} {
		if evicted := cache.put(item.hash, item.data, Metadata{Hash: item.hash}); evicted != 0 {
			t.Fatalf("put evicted %d entries while under budget", evicted)
		}
		fake.Advance(time.Second)
	}

	// Touch A so B becomes the oldest.
	if _, ok := cache.get(hashA); !ok {
		t.Fatal("A missing before eviction")
	}

	if evicted := cache.put(hashD, dataD, Metadata{Hash: hashD}); evicted != 1 {
		t.Fatalf("put(D) evicted %d entries, want 1", evicted)
	}
	if cache.contains(hashB) {
		t.Error("B survived eviction, want it evicted as least recently used")
	}
	for name, hash := range map[string]objecthash.Hash{"A": hashA, "C": hashC, "D": hashD} {
		if !cache.contains(hash) {
			t.Errorf("%s was evicted, want only B evicted", name)
		}
	}

	entries, used := cache.usage()
	if entries != 3 || used != int64(len(dataA)+len(dataC)+len(dataD)) {
		t.Errorf("usage = (%d, %d), want (3, %d)", entries, used, len(dataA)+len(dataC)+len(dataD))
	}
}

func TestLRUCacheEvictsSeveralForLargeEntry(t *testing.T) {
	cache := newLRUCache(300, clock.Fake(testEpoch))
	for _, label := range []string{"a", "b", "c"} {
		hash, data := cacheItem(label, 90)
		cache.put(hash, data, Metadata{})
	}

	hash, data := cacheItem("big", 250)
	if evicted := cache.put(hash, data, Metadata{}); evicted != 3 {
		t.Errorf("put(big) evicted %d entries, want 3", evicted)
	}
	if entries, _ := cache.usage(); entries != 1 {
		t.Errorf("entries = %d, want 1", entries)
	}
}

func TestLRUCacheSkipsOversizedEntry(t *testing.T) {
	cache := newLRUCache(100, clock.Fake(testEpoch))
	small, smallData := cacheItem("small", 10)
	cache.put(small, smallData, Metadata{})

	huge, hugeData := cacheItem("huge", 200)
	if evicted := cache.put(huge, hugeData, Metadata{}); evicted != 0 {
		t.Errorf("oversized put evicted %d entries, want 0", evicted)
	}
	if cache.contains(huge) {
		t.Error("oversized entry was cached")
	}
	if !cache.contains(small) {
		t.Error("existing entry was dropped by an oversized put")
	}
}

func TestLRUCacheReplaceAndRemove(t *testing.T) {
	cache := newLRUCache(1000, clock.Fake(testEpoch))
	hash, data := cacheItem("x", 50)

	cache.put(hash, data, Metadata{RefCount: 1})
	cache.put(hash, data, Metadata{RefCount: 2})
	entries, used := cache.usage()
	if entries != 1 || used != int64(len(data)) {
		t.Errorf("usage after replace = (%d, %d), want (1, %d)", entries, used, len(data))
	}

	cache.updateMetadata(hash, Metadata{RefCount: 5})
	if metadata, ok := cache.metadata(hash); !ok || metadata.RefCount != 5 {
		t.Errorf("metadata = (%+v, %v), want RefCount 5", metadata, ok)
	}

	cache.remove(hash)
	if cache.contains(hash) {
		t.Error("entry still present after remove")
	}
	if _, used := cache.usage(); used != 0 {
		t.Errorf("used = %d after remove, want 0", used)
	}
}

func TestLRUCacheReturnsCopies(t *testing.T) {
	cache := newLRUCache(1000, clock.Fake(testEpoch))
	hash, data := cacheItem("copy", 20)
	cache.put(hash, data, Metadata{})

	data[0] = 'X'
	got, _ := cache.get(hash)
	if got[0] == 'X' {
		t.Fatal("cache aliases the caller's slice passed to put")
	}

	got[1] = 'Y'
	again, _ := cache.get(hash)
	if again[1] == 'Y' {
		t.Error("cache aliases the slice returned by get")
	}
}

func TestLRUCacheClear(t *testing.T) {
	cache := newLRUCache(1000, clock.Fake(testEpoch))
	for _, label := range []string{"a", "b"} {
		hash, data := cacheItem(label, 10)
		cache.put(hash, data, Metadata{})
	}
	cache.clear()
	if entries, used := cache.usage(); entries != 0 || used != 0 {
		t.Errorf("usage after clear = (%d, %d), want (0, 0)", entries, used)
	}
}
