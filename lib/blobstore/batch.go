// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// WriteBatch writes every item concurrently. Hashes are returned in
// input order. If any write fails, WriteBatch waits for the rest to
// finish and returns the error of the lowest-indexed failure; writes
// that succeeded stay committed.
func (s *Store) WriteBatch(ctx context.Context, items []BatchItem) ([]objecthash.Hash, error) {
	hashes := make([]objecthash.Hash, len(items))
	err := s.fanOut(len(items), func(index int) error {
		hash, err := s.Write(ctx, items[index].Data, items[index].Options)
		if err != nil {
			return fmt.Errorf("batch item %d: %w", index, err)
		}
		hashes[index] = hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// ReadBatch reads every hash concurrently with default ReadOptions.
// Results are in input order. Error handling matches WriteBatch.
func (s *Store) ReadBatch(ctx context.Context, hashes []objecthash.Hash) ([][]byte, error) {
	results := make([][]byte, len(hashes))
	err := s.fanOut(len(hashes), func(index int) error {
		data, err := s.Read(ctx, hashes[index], ReadOptions{})
		if err != nil {
			return fmt.Errorf("batch item %d (%s): %w", index, hashes[index].Short(), err)
		}
		results[index] = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// fanOut runs operation for indices [0, count) with at most
// batchConcurrency in flight and returns the lowest-indexed error.
func (s *Store) fanOut(count int, operation func(index int) error) error {
	errs := make([]error, count)
	slots := make(chan struct{}, s.batchConcurrency)

	var wg sync.WaitGroup
	for index := range count {
		slots <- struct{}{}
		wg.Go(func() {
			defer func() { <-slots }()
			errs[index] = operation(index)
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
