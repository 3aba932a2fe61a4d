// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"

	"github.com/vitaly-z/brainy-sub013/lib/kv"
)

// DefaultLargeObjectThreshold is the stored payload size at which
// Write hands the payload to the LargeObjectWriter.
const DefaultLargeObjectThreshold = 5 * 1024 * 1024

// LargeObjectWriter persists payloads at or above the large-object
// threshold. Implementations may split the upload however the backend
// prefers, but afterwards a plain adapter Get of key must return the
// complete payload, since reads do not go through the writer.
type LargeObjectWriter interface {
	WriteLarge(ctx context.Context, adapter kv.Adapter, key string, payload []byte) error
}

// SingleShotWriter writes the whole payload with one Put.
type SingleShotWriter struct{}

// WriteLarge implements LargeObjectWriter.
func (SingleShotWriter) WriteLarge(ctx context.Context, adapter kv.Adapter, key string, payload []byte) error {
	return adapter.Put(ctx, key, payload)
}
