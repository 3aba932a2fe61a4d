// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used for persisted blob
// metadata.
//
// The object store uses two serialization formats with a clear
// boundary:
//
//   - JSON for commits. Commit bytes are hashed, so their encoding is
//     part of their identity and is defined by package commit.
//   - CBOR for blob metadata records ("{prefix}-meta:{hash}"). These
//     are never hashed; CBOR keeps them compact.
//
// The encoder uses Core Deterministic Encoding so the same metadata
// always produces the same bytes:
//
//	data, err := codec.Marshal(metadata)
//	err = codec.Unmarshal(data, &metadata)
//
// Struct types use `cbor` tags when they are only ever CBOR, and
// `json` tags when they are also exposed as JSON (fxamacker/cbor falls
// back to json tags).
package codec
