// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kv

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the required length of the master key passed to Seal.
const KeySize = 32

// SealedVersion is the format byte prepended to every sealed value.
// It is part of the AEAD additional data, so altering it fails
// authentication.
const SealedVersion byte = 0x01

// SealedOverhead is the per-value size overhead: version byte,
// XChaCha20 nonce, Poly1305 tag.
const SealedOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// hkdfInfoValue separates the value-encryption key from anything else
// a deployment might derive from the same master key.
var hkdfInfoValue = []byte("objectstore.kv.value.v1")

// Sealed encrypts values before they reach the wrapped adapter and
// decrypts them on the way back. The storage key is bound into the
// additional data, so a value copied under a different key fails to
// open. Keys and listings are not encrypted.
type Sealed struct {
	inner Adapter
	aead  cipher.AEAD
}

// Seal wraps inner with value encryption under a key derived from
// masterKey via HKDF-SHA256. masterKey must be KeySize bytes; it is
// not retained.
func Seal(inner Adapter, masterKey []byte) (*Sealed, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("kv: master key is %d bytes, want %d", len(masterKey), KeySize)
	}

	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, hkdfInfoValue), derived); err != nil {
		return nil, fmt.Errorf("kv: deriving value key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(derived)
	if err != nil {
		return nil, fmt.Errorf("kv: creating XChaCha20-Poly1305 cipher: %w", err)
	}

	return &Sealed{inner: inner, aead: aead}, nil
}

// Get implements Adapter.
func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.open(key, sealed)
}

// Put implements Adapter.
func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, key, sealed)
}

// Delete implements Adapter.
func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// List implements Adapter.
func (s *Sealed) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *Sealed) seal(key string, plaintext []byte) ([]byte, error) {
	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("kv: generating nonce: %w", err)
	}

	output := make([]byte, 1+len(nonce), 1+len(nonce)+len(plaintext)+s.aead.Overhead())
	output[0] = SealedVersion
	copy(output[1:], nonce[:])
	return s.aead.Seal(output, nonce[:], plaintext, additionalData(SealedVersion, key)), nil
}

func (s *Sealed) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < SealedOverhead {
		return nil, fmt.Errorf("sealed value %q is %d bytes, minimum is %d: %w", key, len(sealed), SealedOverhead, ErrTampered)
	}
	if sealed[0] != SealedVersion {
		return nil, fmt.Errorf("sealed value %q has version %d, want %d: %w", key, sealed[0], SealedVersion, ErrTampered)
	}

	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	ciphertext := sealed[1+chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, additionalData(sealed[0], key))
	if err != nil {
		return nil, fmt.Errorf("opening sealed value %q: %v: %w", key, err, ErrTampered)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func additionalData(version byte, key string) []byte {
	aad := make([]byte, 1+len(key))
	aad[0] = version
	copy(aad[1:], key)
	return aad
}
