// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress provides the pluggable byte compressors used by the
// blob store.
//
// A [Strategy] compresses and decompresses whole payloads. Three are
// provided: [None] (identity, always available), [Zstd] (klauspost
// zstd at the default level, the choice for structured text such as
// commits, trees, and metadata), and [LZ4] (pierrec lz4 block mode,
// cheaper to decode with a lower ratio).
//
// A [Registry] holds the strategies a store was constructed with. The
// store never probes for codecs at call time: an algorithm is
// available if and only if it was registered. The None strategy is
// present in every registry.
//
// Payloads carry no framing. Decompress receives the original size
// from the caller (the blob store keeps it in metadata) and fails if
// the output does not match it exactly.
package compress
