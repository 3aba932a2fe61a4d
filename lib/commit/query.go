// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"context"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// History returns the commits Walk yields, newest first.
func (l *Log) History(ctx context.Context, start objecthash.Hash, options WalkOptions) ([]*Commit, error) {
	var commits []*Commit
	walker := l.Walk(ctx, start, options)
	for walker.Next() {
		commits = append(commits, walker.Commit())
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}
	return commits, nil
}

// FindAtTime returns the first commit from start toward the root whose
// timestamp is at or before timestamp: the state of the history at that
// moment. Returns nil if every commit is newer.
func (l *Log) FindAtTime(ctx context.Context, start objecthash.Hash, timestamp int64) (*Commit, error) {
	walker := l.Walk(ctx, start, WalkOptions{})
	for walker.Next() {
		if walker.Commit().Timestamp <= timestamp {
			return walker.Commit(), nil
		}
	}
	return nil, walker.Err()
}

// FindCommonAncestor returns the nearest commit reachable from both a
// and b (their merge base), or nil if the histories never meet.
func (l *Log) FindCommonAncestor(ctx context.Context, a, b objecthash.Hash) (*Commit, error) {
	ancestors := make(map[objecthash.Hash]struct{})
	walker := l.Walk(ctx, a, WalkOptions{})
	for walker.Next() {
		ancestors[walker.Hash()] = struct{}{}
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}

	walker = l.Walk(ctx, b, WalkOptions{})
	for walker.Next() {
		if _, ok := ancestors[walker.Hash()]; ok {
			return walker.Commit(), nil
		}
	}
	return nil, walker.Err()
}

// CountBetween counts the commits from from back to and including to.
// If to is not an ancestor of from, the count runs to the root.
func (l *Log) CountBetween(ctx context.Context, from, to objecthash.Hash) (int, error) {
	count := 0
	walker := l.Walk(ctx, from, WalkOptions{StopAt: to})
	for walker.Next() {
		count++
	}
	if err := walker.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// InTimeRange returns the commits with from <= Timestamp <= to, newest
// first. The walk stops at the first commit older than from.
func (l *Log) InTimeRange(ctx context.Context, start objecthash.Hash, from, to int64) ([]*Commit, error) {
	return l.History(ctx, start, WalkOptions{
		Until: from,
		Filter: func(c *Commit) bool {
			return c.Timestamp >= from && c.Timestamp <= to
		},
	})
}

// ByAuthor returns the commits written by author, newest first.
func (l *Log) ByAuthor(ctx context.Context, start objecthash.Hash, author string) ([]*Commit, error) {
	return l.History(ctx, start, WalkOptions{
		Filter: func(c *Commit) bool { return c.Author == author },
	})
}

// ByOperation returns the commits whose metadata operation equals
// operation, newest first.
func (l *Log) ByOperation(ctx context.Context, start objecthash.Hash, operation string) ([]*Commit, error) {
	return l.History(ctx, start, WalkOptions{
		Filter: func(c *Commit) bool { return c.Operation() == operation },
	})
}
