// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"errors"
	"fmt"
	"sort"
)

// Algorithm names a compression algorithm. Names are persisted in blob
// metadata, so existing values must never change meaning.
type Algorithm string

const (
	// AlgorithmNone stores bytes as-is.
	AlgorithmNone Algorithm = "none"

	// AlgorithmZstd is zstd at the default speed level.
	AlgorithmZstd Algorithm = "zstd"

	// AlgorithmLZ4 is LZ4 block compression.
	AlgorithmLZ4 Algorithm = "lz4"
)

// ErrIncompressible is returned by Compress when the output would not
// be smaller than the input. Callers store the data uncompressed.
var ErrIncompressible = errors.New("compress: data is incompressible")

// ErrUnknownAlgorithm is returned when an algorithm name is not
// recognized or not registered.
var ErrUnknownAlgorithm = errors.New("compress: unknown algorithm")

// ParseAlgorithm parses an algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmNone, AlgorithmZstd, AlgorithmLZ4:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Strategy is a whole-payload compressor.
type Strategy interface {
	// Algorithm returns the name recorded in metadata for payloads
	// this strategy produced.
	Algorithm() Algorithm

	// Compress returns the compressed form of data, or
	// ErrIncompressible if compression would not shrink it.
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress. size is the original length;
	// a mismatch is an error.
	Decompress(compressed []byte, size int) ([]byte, error)
}

// Registry is the set of strategies available to a store. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	strategies map[Algorithm]Strategy
}

// NewRegistry returns a registry holding None plus the given
// strategies. A later strategy with the same algorithm replaces an
// earlier one.
func NewRegistry(strategies ...Strategy) *Registry {
	registry := &Registry{strategies: map[Algorithm]Strategy{AlgorithmNone: None()}}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		registry.strategies[strategy.Algorithm()] = strategy
	}
	return registry
}

// Default returns a registry with every built-in strategy.
func Default() (*Registry, error) {
	zstd, err := NewZstd()
	if err != nil {
		return nil, err
	}
	return NewRegistry(zstd, NewLZ4()), nil
}

// Lookup returns the strategy for an algorithm, if registered.
func (r *Registry) Lookup(algorithm Algorithm) (Strategy, bool) {
	strategy, ok := r.strategies[algorithm]
	return strategy, ok
}

// Algorithms returns the registered algorithm names, sorted.
func (r *Registry) Algorithms() []Algorithm {
	names := make([]Algorithm, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// None returns the identity strategy.
func None() Strategy { return noneStrategy{} }

type noneStrategy struct{}

func (noneStrategy) Algorithm() Algorithm { return AlgorithmNone }

func (noneStrategy) Compress(data []byte) ([]byte, error) { return data, nil }

func (noneStrategy) Decompress(compressed []byte, size int) ([]byte, error) {
	if len(compressed) != size {
		return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d", len(compressed), size)
	}
	return compressed, nil
}
