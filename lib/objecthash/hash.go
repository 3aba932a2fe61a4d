// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package objecthash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the length of a Hash in bytes.
const Size = sha256.Size

// HexLength is the length of the hex form of a Hash. Commit
// deserialization uses it as a structural check on hash fields.
const HexLength = Size * 2

// Hash is a SHA-256 content digest.
type Hash [Size]byte

// NullHash is the "no parent" sentinel.
var NullHash Hash

// Sum returns the content hash of data.
func Sum(data []byte) Hash {
	return sha256.Sum256(data)
}

// IsNull reports whether h is the NullHash sentinel.
func (h Hash) IsNull() bool {
	return h == NullHash
}

// String returns the 64-character lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for logs and error
// messages.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:6])
}

// MarshalText implements encoding.TextMarshaler so hashes serialize
// as hex strings in JSON, YAML, and CBOR (lib/codec enables text
// marshaling).
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Parse parses a 64-character hex string into a Hash.
func Parse(s string) (Hash, error) {
	var h Hash
	if len(s) != HexLength {
		return h, fmt.Errorf("hash %q is %d characters, want %d", s, len(s), HexLength)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("parsing hash %q: %w", s, err)
	}
	return h, nil
}

// MustParse is Parse for constants and tests. Panics on malformed
// input.
func MustParse(s string) Hash {
	h, err := Parse(s)
	if err != nil {
		panic("objecthash: " + err.Error())
	}
	return h
}

// Checksum returns the BLAKE3 digest of stored bytes.
func Checksum(stored []byte) [32]byte {
	return blake3.Sum256(stored)
}
