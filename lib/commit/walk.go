// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"context"
	"fmt"
	"iter"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// WalkOptions bounds and filters a walk. The zero value walks the whole
// chain and yields every commit.
type WalkOptions struct {
	// MaxDepth stops the walk after this many commits have been
	// visited, whether or not they passed Filter. Zero means no
	// limit.
	MaxDepth int

	// Until stops the walk at the first commit whose Timestamp is
	// below it. That commit is not yielded. Zero disables the bound.
	Until int64

	// StopAt ends the walk after the commit with this hash has been
	// visited (and yielded, if it passes Filter). NullHash disables
	// it.
	StopAt objecthash.Hash

	// Filter, if set, decides which visited commits are yielded.
	// Rejected commits are still traversed through.
	Filter func(*Commit) bool
}

// Walker is a pull iterator over a commit chain, from the start commit
// toward the root. Obtain one from Log.Walk:
//
//	walker := log.Walk(ctx, head, commit.WalkOptions{})
//	for walker.Next() {
//		use(walker.Hash(), walker.Commit())
//	}
//	if err := walker.Err(); err != nil {
//		...
//	}
//
// A Walker is single-use; call Log.Walk again to restart.
type Walker struct {
	log     *Log
	ctx     context.Context
	options WalkOptions

	next    objecthash.Hash
	depth   int
	visited map[objecthash.Hash]struct{}
	done    bool

	hash   objecthash.Hash
	commit *Commit
	err    error
}

// Walk returns a Walker starting at start. A NullHash start yields
// nothing. No storage is read until the first Next.
func (l *Log) Walk(ctx context.Context, start objecthash.Hash, options WalkOptions) *Walker {
	return &Walker{
		log:     l,
		ctx:     ctx,
		options: options,
		next:    start,
		visited: make(map[objecthash.Hash]struct{}),
	}
}

// Next advances to the next yielded commit. It returns false at the
// end of the walk or on error; check Err afterwards.
func (w *Walker) Next() bool {
	w.commit = nil
	w.hash = objecthash.Hash{}

	for !w.done {
		// The sentinel marks the end of the chain. It is never read.
		if w.next.IsNull() {
			w.done = true
			break
		}
		if w.options.MaxDepth > 0 && w.depth >= w.options.MaxDepth {
			w.done = true
			break
		}
		if err := w.ctx.Err(); err != nil {
			return w.fail(err)
		}

		hash := w.next
		if _, seen := w.visited[hash]; seen {
			return w.fail(fmt.Errorf("revisiting %s: %w", hash.Short(), ErrCycle))
		}
		w.visited[hash] = struct{}{}

		c, err := w.log.Read(w.ctx, hash)
		if err != nil {
			return w.fail(err)
		}
		w.depth++

		if w.options.Until != 0 && c.Timestamp < w.options.Until {
			w.done = true
			break
		}

		w.next = c.Parent
		if !w.options.StopAt.IsNull() && hash == w.options.StopAt {
			w.done = true
		}

		if w.options.Filter == nil || w.options.Filter(c) {
			w.hash = hash
			w.commit = c
			return true
		}
	}
	return false
}

func (w *Walker) fail(err error) bool {
	w.err = err
	w.done = true
	return false
}

// Commit returns the commit at the current position.
func (w *Walker) Commit() *Commit {
	return w.commit
}

// Hash returns the hash of the commit at the current position.
func (w *Walker) Hash() objecthash.Hash {
	return w.hash
}

// Err returns the error that ended the walk, if any.
func (w *Walker) Err() error {
	return w.err
}

// All adapts the walker for range-over-func. Check Err after the loop.
func (w *Walker) All() iter.Seq2[objecthash.Hash, *Commit] {
	return func(yield func(objecthash.Hash, *Commit) bool) {
		for w.Next() {
			if !yield(w.hash, w.commit) {
				return
			}
		}
	}
}
