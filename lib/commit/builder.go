// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"context"
	"maps"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// Defaults applied by Builder when a field is not set.
const (
	DefaultMessage = "Auto-commit"
	DefaultAuthor  = "system"
)

// Builder accumulates the fields of a new commit. Setters return the
// builder for chaining. A Builder is not safe for concurrent use.
type Builder struct {
	log          *Log
	commit       Commit
	metadata     Metadata
	hasTree      bool
	hasTimestamp bool
}

// NewBuilder starts a commit with the default message and author and
// no parent.
func (l *Log) NewBuilder() *Builder {
	return &Builder{
		log: l,
		commit: Commit{
			Parent:  objecthash.NullHash,
			Message: DefaultMessage,
			Author:  DefaultAuthor,
		},
	}
}

// Tree sets the snapshot tree. Required.
func (b *Builder) Tree(hash objecthash.Hash) *Builder {
	b.commit.Tree = hash
	b.hasTree = true
	return b
}

// Parent sets the parent commit. objecthash.NullHash makes a root.
func (b *Builder) Parent(hash objecthash.Hash) *Builder {
	b.commit.Parent = hash
	return b
}

// Message sets the commit message. Defaults to DefaultMessage.
func (b *Builder) Message(message string) *Builder {
	b.commit.Message = message
	return b
}

// Author sets the commit author. Defaults to DefaultAuthor.
func (b *Builder) Author(author string) *Builder {
	b.commit.Author = author
	return b
}

// Timestamp sets the commit time in Unix milliseconds. If never
// called, Build uses the Log's clock.
func (b *Builder) Timestamp(milliseconds int64) *Builder {
	b.commit.Timestamp = milliseconds
	b.hasTimestamp = true
	return b
}

// Tag appends a tag.
func (b *Builder) Tag(tag string) *Builder {
	b.metadata.Tags = append(b.metadata.Tags, tag)
	return b
}

// Branch records the branch the commit was made on.
func (b *Builder) Branch(branch string) *Builder {
	b.metadata.Branch = branch
	return b
}

// Operation records the kind of mutation the commit captures.
func (b *Builder) Operation(operation string) *Builder {
	b.metadata.Operation = operation
	return b
}

// EntityCount records the number of entities in the snapshot.
func (b *Builder) EntityCount(count int64) *Builder {
	b.metadata.EntityCount = &count
	return b
}

// RelationshipCount records the number of relationships in the snapshot.
func (b *Builder) RelationshipCount(count int64) *Builder {
	b.metadata.RelationshipCount = &count
	return b
}

// Meta sets an extension metadata key. Keys that name a built-in
// metadata field are rejected when the commit is serialized.
func (b *Builder) Meta(key string, value any) *Builder {
	if b.metadata.Extra == nil {
		b.metadata.Extra = make(map[string]any)
	}
	b.metadata.Extra[key] = value
	return b
}

// Commit returns the record Build would persist, without writing it.
func (b *Builder) Commit() (*Commit, error) {
	if !b.hasTree {
		return nil, ErrMissingTree
	}
	c := b.commit
	if !b.hasTimestamp {
		c.Timestamp = b.log.clock.Now().UnixMilli()
	}
	if !b.metadata.empty() {
		metadata := b.metadata
		metadata.Tags = append([]string(nil), b.metadata.Tags...)
		metadata.Extra = maps.Clone(b.metadata.Extra)
		c.Metadata = &metadata
	}
	return &c, nil
}

// Build persists the commit and returns its hash. It fails with
// ErrMissingTree if Tree was never called.
func (b *Builder) Build(ctx context.Context) (objecthash.Hash, error) {
	c, err := b.Commit()
	if err != nil {
		return objecthash.Hash{}, err
	}
	return b.log.Write(ctx, c)
}
