// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package objecthash defines the identity of every stored object.
//
// An object's identity is the SHA-256 digest of its uncompressed
// canonical bytes, written as 64 lowercase hex characters. Two
// byte-identical payloads always have the same [Hash], and that hash
// is the only key the store uses for them.
//
// [NullHash] (all zero bytes) is reserved as the "no parent" sentinel
// for commit chains. It is a real value, distinct from a missing
// field, and it is never the identity of a stored object.
//
// [Checksum] is a second, unrelated digest: a BLAKE3 hash of the bytes
// as they sit in storage (after compression). It lets a reader reject
// a damaged payload before handing it to a decompressor.
package objecthash
