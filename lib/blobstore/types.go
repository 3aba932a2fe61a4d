// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"fmt"
	"time"

	"github.com/vitaly-z/brainy-sub013/lib/compress"
	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// ObjectType classifies a stored object. It drives the compression
// policy and the storage key prefix.
type ObjectType string

const (
	// TypeVector is a dense numeric payload (embeddings). Never
	// compressed: the bytes are already high-entropy.
	TypeVector ObjectType = "vector"

	// TypeMetadata is structured entity metadata.
	TypeMetadata ObjectType = "metadata"

	// TypeTree is a serialized snapshot tree.
	TypeTree ObjectType = "tree"

	// TypeCommit is a serialized commit.
	TypeCommit ObjectType = "commit"

	// TypeRaw is anything else. The default type for Write.
	TypeRaw ObjectType = "raw"
)

// ParseObjectType validates an object type name.
func ParseObjectType(name string) (ObjectType, error) {
	switch ObjectType(name) {
	case TypeVector, TypeMetadata, TypeTree, TypeCommit, TypeRaw:
		return ObjectType(name), nil
	default:
		return "", fmt.Errorf("unknown object type %q", name)
	}
}

// CompressionAuto selects compression by object type and size. It is
// also what the zero value of WriteOptions.Compression means.
const CompressionAuto compress.Algorithm = "auto"

// Metadata describes one stored object. It is persisted next to the
// payload and is the authority on whether the object exists.
type Metadata struct {
	// Hash is the SHA-256 of the uncompressed payload.
	Hash objecthash.Hash `json:"hash"`

	// Size is the uncompressed length in bytes.
	Size int64 `json:"size"`

	// CompressedSize is the stored length. Equals Size when
	// Compression is none.
	CompressedSize int64 `json:"compressed_size"`

	// Compression is the algorithm applied to the stored payload.
	Compression compress.Algorithm `json:"compression"`

	// Type is the object type given at first write.
	Type ObjectType `json:"type"`

	// CreatedAt is when the object was first written.
	CreatedAt time.Time `json:"created_at"`

	// RefCount is the number of logical owners. Never negative.
	RefCount int64 `json:"ref_count"`

	// Checksum is the BLAKE3 digest of the stored (possibly
	// compressed) payload, checked before decompression.
	Checksum [32]byte `json:"checksum"`
}

// WriteOptions controls a single Write.
type WriteOptions struct {
	// Type defaults to TypeRaw.
	Type ObjectType

	// Compression is CompressionAuto (or empty) for policy-driven
	// selection, compress.AlgorithmNone to force raw storage, or a
	// named algorithm. A named algorithm that is not registered, or
	// that cannot shrink the payload, falls back to none.
	Compression compress.Algorithm
}

// ReadOptions controls a single Read.
type ReadOptions struct {
	// SkipCache bypasses the cache lookup. The result still
	// repopulates the cache.
	SkipCache bool

	// SkipVerification skips the stored checksum and the SHA-256
	// re-check of the decompressed bytes.
	SkipVerification bool
}

// BatchItem is one entry for WriteBatch.
type BatchItem struct {
	Data    []byte
	Options WriteOptions
}

// CompressionPolicy tunes auto compression.
type CompressionPolicy struct {
	// MinSize is the smallest payload worth compressing. Below it,
	// codec framing overhead dominates. Defaults to
	// DefaultMinCompressSize.
	MinSize int

	// Preferred is the algorithm auto selection uses. Defaults to
	// zstd. If it is not registered, any other registered
	// compressor is used; if none is, objects are stored raw.
	Preferred compress.Algorithm
}

// GCResult summarizes a garbage-collection sweep.
type GCResult struct {
	// Scanned is the number of stored hashes examined.
	Scanned int

	// Removed is the number of objects deleted.
	Removed int

	// Failed is the number of objects whose check or deletion
	// returned an error. The sweep continues past them.
	Failed int
}
