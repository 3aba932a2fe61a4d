// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd compresses with zstd at the default speed level. The encoder
// and decoder are safe for concurrent use and reused across calls.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd creates a zstd strategy.
func NewZstd() (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder initialization: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("zstd decoder initialization: %w", err)
	}
	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

// Algorithm returns AlgorithmZstd.
func (z *Zstd) Algorithm() Algorithm { return AlgorithmZstd }

// Compress implements Strategy.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	compressed := z.encoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

// Decompress implements Strategy.
func (z *Zstd) Decompress(compressed []byte, size int) ([]byte, error) {
	result, err := z.decoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}
