// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"slices"
	"time"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// Commit is an immutable snapshot record.
type Commit struct {
	// Tree is the hash of the snapshot tree. Required.
	Tree objecthash.Hash

	// Parent is the previous commit, or objecthash.NullHash for a
	// root commit.
	Parent objecthash.Hash

	Message string
	Author  string

	// Timestamp is Unix milliseconds.
	Timestamp int64

	// Metadata is optional. A nil or empty Metadata is omitted from
	// the serialized form.
	Metadata *Metadata
}

// Metadata is the optional annotation block of a commit.
type Metadata struct {
	Tags      []string
	Branch    string
	Operation string

	// EntityCount and RelationshipCount are nil when unset, so that
	// zero is representable.
	EntityCount       *int64
	RelationshipCount *int64

	// Extra holds caller-defined keys. Values must be JSON
	// encodable. Keys must not collide with the named fields above.
	Extra map[string]any
}

// IsInitial reports whether c is a root commit.
func (c *Commit) IsInitial() bool {
	return c.Parent.IsNull()
}

// Time returns the timestamp as a time.Time.
func (c *Commit) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Tags returns the commit's tags, or nil.
func (c *Commit) Tags() []string {
	if c.Metadata == nil {
		return nil
	}
	return c.Metadata.Tags
}

// HasTag reports whether tag is among the commit's tags.
func (c *Commit) HasTag(tag string) bool {
	return slices.Contains(c.Tags(), tag)
}

// Operation returns metadata.operation, or "".
func (c *Commit) Operation() string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata.Operation
}

func (m *Metadata) empty() bool {
	return m == nil ||
		len(m.Tags) == 0 &&
			m.Branch == "" &&
			m.Operation == "" &&
			m.EntityCount == nil &&
			m.RelationshipCount == nil &&
			len(m.Extra) == 0
}
