// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"sync"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// lockStripes is the number of mutexes hashes are spread across.
// Hashes are uniformly distributed, so the first byte is a fair
// stripe index.
const lockStripes = 256

// hashLocks serializes metadata read-modify-write cycles per hash.
// Distinct hashes may share a stripe; callers hold at most one stripe
// at a time, so sharing cannot deadlock.
type hashLocks struct {
	stripes [lockStripes]sync.Mutex
}

// lock acquires the stripe for hash and returns its unlock function.
func (l *hashLocks) lock(hash objecthash.Hash) func() {
	mutex := &l.stripes[hash[0]]
	mutex.Lock()
	return mutex.Unlock
}
