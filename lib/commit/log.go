// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitaly-z/brainy-sub013/lib/blobstore"
	"github.com/vitaly-z/brainy-sub013/lib/clock"
	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// ObjectStore is the subset of *blobstore.Store a Log needs.
type ObjectStore interface {
	Write(ctx context.Context, data []byte, options blobstore.WriteOptions) (objecthash.Hash, error)
	Read(ctx context.Context, hash objecthash.Hash, options blobstore.ReadOptions) ([]byte, error)
}

// LogOptions configures a Log.
type LogOptions struct {
	// Logger receives commit write events. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// Clock supplies the default timestamp for builders. Defaults to
	// the real clock.
	Clock clock.Clock
}

// Log reads, writes, and queries commits stored in an ObjectStore. It
// holds no state of its own beyond its collaborators and is safe for
// concurrent use if the ObjectStore is.
type Log struct {
	objects ObjectStore
	logger  *slog.Logger
	clock   clock.Clock
}

// NewLog returns a Log over objects.
func NewLog(objects ObjectStore, options LogOptions) *Log {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Log{
		objects: objects,
		logger:  logger,
		clock:   clock.OrReal(options.Clock),
	}
}

// Write stores c as an object of type commit and returns its hash.
// Writing a commit that already exists increments its reference count
// in the blob store and returns the same hash.
func (l *Log) Write(ctx context.Context, c *Commit) (objecthash.Hash, error) {
	if c == nil || c.Tree.IsNull() {
		return objecthash.Hash{}, ErrMissingTree
	}
	data, err := Serialize(c)
	if err != nil {
		return objecthash.Hash{}, err
	}
	hash, err := l.objects.Write(ctx, data, blobstore.WriteOptions{
		Type:        blobstore.TypeCommit,
		Compression: blobstore.CompressionAuto,
	})
	if err != nil {
		return objecthash.Hash{}, fmt.Errorf("writing commit: %w", err)
	}
	l.logger.Debug("commit written",
		"hash", hash.Short(),
		"tree", c.Tree.Short(),
		"parent", parentLabel(c.Parent),
		"author", c.Author,
	)
	return hash, nil
}

// Read loads and validates the commit stored under hash.
func (l *Log) Read(ctx context.Context, hash objecthash.Hash) (*Commit, error) {
	data, err := l.objects.Read(ctx, hash, blobstore.ReadOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash.Short(), err)
	}
	c, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("decoding commit %s: %w", hash.Short(), err)
	}
	return c, nil
}

func parentLabel(parent objecthash.Hash) string {
	if parent.IsNull() {
		return "root"
	}
	return parent.Short()
}
