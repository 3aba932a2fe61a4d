// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import "errors"

// Error categories. Match with errors.Is: every specific error below
// unwraps to exactly one of these.
var (
	// ErrNotFound covers every "object is not there" condition.
	ErrNotFound = errors.New("blobstore: not found")

	// ErrIntegrity means stored bytes do not match their identity.
	ErrIntegrity = errors.New("blobstore: integrity check failed")

	// ErrUnsupported means the store lacks a capability the object
	// needs, such as a decompressor.
	ErrUnsupported = errors.New("blobstore: unsupported operation")
)

// Specific failures.
var (
	// ErrBlobNotFound: metadata exists but the payload is missing. This
	// is a storage inconsistency, not an unknown hash.
	ErrBlobNotFound = &kindError{message: "blob not found", kind: ErrNotFound}

	// ErrMetadataNotFound: no prefix holds metadata for the hash.
	ErrMetadataNotFound = &kindError{message: "blob metadata not found", kind: ErrNotFound}

	// ErrRefCountNotFound: reference-count maintenance on an unknown
	// hash.
	ErrRefCountNotFound = &kindError{message: "cannot increment ref count: blob not found", kind: ErrNotFound}

	// ErrHashMismatch: the decompressed payload or its stored checksum
	// does not match the requested hash.
	ErrHashMismatch = &kindError{message: "integrity check failed", kind: ErrIntegrity}

	// ErrDecompressionUnavailable: the object was stored compressed and
	// no decompressor for its algorithm is registered.
	ErrDecompressionUnavailable = &kindError{message: "decompression not available", kind: ErrUnsupported}
)

type kindError struct {
	message string
	kind    error
}

func (e *kindError) Error() string { return e.message }

func (e *kindError) Unwrap() error { return e.kind }
