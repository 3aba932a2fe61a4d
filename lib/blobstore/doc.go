// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore implements the content-addressable object layer of
// the versioned store.
//
// Every object is identified by the SHA-256 hash of its uncompressed
// bytes (see lib/objecthash). Writing content that already exists does
// not rewrite it: the store increments the object's reference count
// and records the avoided bytes as a deduplication saving.
//
// # Storage layout
//
// Objects live in a [kv.Adapter] supplied by the host under two keys:
//
//	{prefix}:{hash}        payload, possibly compressed
//	{prefix}-meta:{hash}   CBOR-encoded [Metadata]
//
// The prefix is "commit" for commits, "tree" for trees, and "blob" for
// everything else (raw, vector, metadata), unless [Options].Prefixes
// maps a type elsewhere. Reads that only know the hash probe commit,
// tree, blob, then any configured extra prefixes, in that order.
//
// # Compression
//
// Under the default auto policy, payloads smaller than
// [CompressionPolicy].MinSize are stored as-is, vector payloads are
// never compressed, and every other type is compressed with the
// preferred algorithm when it is registered. A missing or ineffective
// compressor silently degrades to uncompressed storage on write. A
// missing decompressor on read is an error: returning compressed bytes
// as if they were the object would corrupt every consumer downstream.
//
// # Reference counts
//
// Each object's metadata carries a reference count. [Store.Delete]
// decrements it and physically removes the object only when it reaches
// zero. [Store.DecrementRef] lowers the count without removing
// anything; [Store.GarbageCollect] later sweeps objects whose count is
// already zero and that the caller does not list as live.
//
// Every read-modify-write of an object's metadata runs under a per-hash
// lock inside one Store. Two Store instances over the same adapter do
// not share those locks: callers running more than one instance must
// serialize reference-count changes per hash themselves.
//
// # Cache
//
// A Store owns an in-memory LRU cache bounded by bytes, filled
// write-through with uncompressed content. The cache is never a source
// of truth and [Store.ClearCache] may be called at any time.
package blobstore
