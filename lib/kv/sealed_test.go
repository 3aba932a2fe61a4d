// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package kv

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func testMasterKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func newTestSealed(t *testing.T) (*Sealed, *Memory) {
	t.Helper()
	inner := NewMemory()
	sealed, err := Seal(inner, testMasterKey())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	return sealed, inner
}

func TestSealRejectsShortKey(t *testing.T) {
	if _, err := Seal(NewMemory(), make([]byte, 16)); err == nil {
		t.Error("Seal with a 16-byte key should fail")
	}
}

func TestSealedRoundtrip(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)

	plaintext := []byte(`{"tree":"abc","message":"secret snapshot"}`)
	if err := sealed.Put(ctx, "commit:1", plaintext); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	raw, err := inner.Get(ctx, "commit:1")
	if err != nil {
		t.Fatalf("inner Get failed: %v", err)
	}
	if bytes.Contains(raw, []byte("secret snapshot")) {
		t.Error("plaintext visible in the wrapped adapter")
	}
	if len(raw) != len(plaintext)+SealedOverhead {
		t.Errorf("sealed size = %d, want %d", len(raw), len(plaintext)+SealedOverhead)
	}

	got, err := sealed.Get(ctx, "commit:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Get = %q, want %q", got, plaintext)
	}
}

func TestSealedEmptyValue(t *testing.T) {
	ctx := context.Background()
	sealed, _ := newTestSealed(t)
	if err := sealed.Put(ctx, "blob:empty", nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := sealed.Get(ctx, "blob:empty")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Get = %#v, want empty non-nil slice", got)
	}
}

func TestSealedNonceIsRandom(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)
	_ = sealed.Put(ctx, "a", []byte("same"))
	_ = sealed.Put(ctx, "b", []byte("same"))
	first, _ := inner.Get(ctx, "a")
	second, _ := inner.Get(ctx, "b")
	if bytes.Equal(first, second) {
		t.Error("two seals of the same plaintext produced identical ciphertext")
	}
}

func TestSealedDetectsTampering(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)
	_ = sealed.Put(ctx, "blob:x", []byte("payload"))

	inner.Tamper("blob:x", func(value []byte) []byte {
		value[len(value)-1] ^= 0x01
		return value
	})
	if _, err := sealed.Get(ctx, "blob:x"); !errors.Is(err, ErrTampered) {
		t.Errorf("Get of tampered value error = %v, want ErrTampered", err)
	}

	inner.Tamper("blob:x", func(value []byte) []byte { return value[:3] })
	if _, err := sealed.Get(ctx, "blob:x"); !errors.Is(err, ErrTampered) {
		t.Errorf("Get of truncated value error = %v, want ErrTampered", err)
	}
}

func TestSealedBindsKey(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)
	_ = sealed.Put(ctx, "blob:a", []byte("payload"))

	raw, _ := inner.Get(ctx, "blob:a")
	_ = inner.Put(ctx, "blob:b", raw)
	if _, err := sealed.Get(ctx, "blob:b"); !errors.Is(err, ErrTampered) {
		t.Errorf("value moved to another key: error = %v, want ErrTampered", err)
	}
}

func TestSealedWrongMasterKey(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)
	_ = sealed.Put(ctx, "blob:a", []byte("payload"))

	otherKey := testMasterKey()
	otherKey[0] ^= 0xff
	other, err := Seal(inner, otherKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := other.Get(ctx, "blob:a"); !errors.Is(err, ErrTampered) {
		t.Errorf("Get under a different master key: error = %v, want ErrTampered", err)
	}
}

func TestSealedPassesThroughNotFoundAndList(t *testing.T) {
	ctx := context.Background()
	sealed, _ := newTestSealed(t)

	if _, err := sealed.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	_ = sealed.Put(ctx, "tree:1", []byte("t"))
	_ = sealed.Put(ctx, "tree:2", []byte("t"))
	keys, err := sealed.List(ctx, "tree:")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("List returned %v", keys)
	}

	if err := sealed.Delete(ctx, "tree:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := sealed.Get(ctx, "tree:1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete error = %v", err)
	}
}

func TestSealedRejectsTruncated(t *testing.T) {
	ctx := context.Background()
	sealed, inner := newTestSealed(t)
	_ = inner.Put(ctx, "short", []byte{SealedVersion, 1, 2})
	if _, err := sealed.Get(ctx, "short"); err == nil {
		t.Error("Get of truncated value should fail")
	}
}
