// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commit implements immutable snapshot records and the history
// algorithms over them.
//
// A [Commit] points at a tree (an opaque object in the blob store that
// describes a full snapshot) and at most one parent commit. Commits are
// stored as objects of type "commit" in a [blobstore.Store] and are
// identified, like every other object, by the SHA-256 of their
// serialized form. The serialization is canonical JSON (see
// [Serialize]), so logically identical commits always hash the same.
//
// Root commits carry [objecthash.NullHash] as their parent. Traversal
// treats the sentinel as the end of the chain and never reads it from
// storage.
//
// A [Log] bundles the storage operations with the history queries:
// [Log.Walk] is a pull iterator from a commit toward the root, and
// [Log.History], [Log.FindAtTime], [Log.FindCommonAncestor],
// [Log.CountBetween], [Log.InTimeRange], [Log.ByAuthor], and
// [Log.ByOperation] are built on it. New commits are created with the
// fluent [Builder] returned by [Log.NewBuilder].
package commit
