// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// List returns every stored hash across all prefixes, deduplicated and
// sorted. Keys whose suffix is not a valid hash are skipped.
func (s *Store) List(ctx context.Context) ([]objecthash.Hash, error) {
	seen := make(map[objecthash.Hash]struct{})
	for _, prefix := range s.keys.probe {
		listPrefix := metadataListPrefix(prefix)
		keys, err := s.adapter.List(ctx, listPrefix)
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", listPrefix, err)
		}
		for _, key := range keys {
			hash, err := objecthash.Parse(strings.TrimPrefix(key, listPrefix))
			if err != nil {
				s.logger.Debug("skipping unparsable metadata key", "key", key)
				continue
			}
			seen[hash] = struct{}{}
		}
	}

	hashes := make([]objecthash.Hash, 0, len(seen))
	for hash := range seen {
		hashes = append(hashes, hash)
	}
	slices.SortFunc(hashes, func(a, b objecthash.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return hashes, nil
}

// GarbageCollect removes stored objects that are neither in referenced
// nor owned by anyone (RefCount zero). Objects with a positive
// RefCount survive even when unreferenced.
//
// A failure on one object is logged, counted in GCResult.Failed, and
// does not stop the sweep; the returned error joins every such
// failure. Context cancellation stops the sweep immediately.
//
// Callers must not write objects that re-establish references to
// unreferenced hashes while a sweep is in progress.
func (s *Store) GarbageCollect(ctx context.Context, referenced map[objecthash.Hash]struct{}) (GCResult, error) {
	var result GCResult

	hashes, err := s.List(ctx)
	if err != nil {
		return result, fmt.Errorf("garbage collection: %w", err)
	}

	var failures []error
	for _, hash := range hashes {
		if err := ctx.Err(); err != nil {
			return result, errors.Join(append(failures, err)...)
		}
		result.Scanned++
		if _, ok := referenced[hash]; ok {
			continue
		}

		removed, err := s.collect(ctx, hash)
		if err != nil {
			result.Failed++
			failures = append(failures, err)
			s.logger.Warn("garbage collection failed for object",
				"hash", hash.Short(),
				"error", err,
			)
			continue
		}
		if removed {
			result.Removed++
		}
	}

	s.logger.Info("garbage collection complete",
		"scanned", result.Scanned,
		"removed", result.Removed,
		"failed", result.Failed,
	)
	return result, errors.Join(failures...)
}

// collect deletes hash if its reference count is zero. The check and
// the delete happen under the hash lock.
func (s *Store) collect(ctx context.Context, hash objecthash.Hash) (bool, error) {
	unlock := s.locks.lock(hash)
	defer unlock()

	location, err := s.locate(ctx, hash)
	if errors.Is(err, ErrMetadataNotFound) {
		// Removed concurrently.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if location.metadata.RefCount > 0 {
		return false, nil
	}
	if err := s.remove(ctx, location); err != nil {
		return false, err
	}
	return true, nil
}
