// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses with LZ4 block mode. Stateless.
type LZ4 struct{}

// NewLZ4 creates an LZ4 strategy.
func NewLZ4() *LZ4 { return &LZ4{} }

// Algorithm returns AlgorithmLZ4.
func (*LZ4) Algorithm() Algorithm { return AlgorithmLZ4 }

// Compress implements Strategy.
func (*LZ4) Compress(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock reports 0 for data it cannot shrink.
	if written == 0 || written >= len(data) {
		return nil, ErrIncompressible
	}
	return destination[:written], nil
}

// Decompress implements Strategy.
func (*LZ4) Decompress(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}
