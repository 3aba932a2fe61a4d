// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package kv defines the byte-oriented key/value contract the object
// store persists through.
//
// The host application supplies an [Adapter] (local disk, object
// storage, a cloud bucket). This package ships two pieces that sit on
// either side of that boundary:
//
//   - [Memory] is a process-local adapter backed by a map. Tests use
//     it, and it is a usable store for ephemeral databases.
//   - [Sealed] wraps any adapter and encrypts values at rest with
//     XChaCha20-Poly1305. Keys pass through in the clear so prefix
//     listing keeps working.
//
// Adapters must be safe for concurrent use: batch operations in the
// blob store issue overlapping calls.
package kv
