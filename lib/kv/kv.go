// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist. Adapters
// must return it (or an error wrapping it) so callers can tell a
// missing object from a failing backend.
var ErrNotFound = errors.New("kv: key not found")

// ErrTampered is returned by Sealed.Get when a stored value fails
// authentication: it was modified, truncated, moved to another key,
// or sealed under a different master key.
var ErrTampered = errors.New("kv: sealed value failed authentication")

// Adapter is the storage contract.
type Adapter interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any existing value.
	// The adapter must not retain value after Put returns.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every key that begins with prefix, in any order.
	List(ctx context.Context, prefix string) ([]string, error)
}
