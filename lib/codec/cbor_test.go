// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

type sampleRecord struct {
	Hash      objecthash.Hash `cbor:"hash"`
	Size      int64           `cbor:"size"`
	Type      string          `cbor:"type"`
	CreatedAt time.Time       `cbor:"created_at"`
	RefCount  int64           `cbor:"ref_count"`
}

type sampleDualRecord struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Hash:      objecthash.Sum([]byte("hello")),
		Size:      5,
		Type:      "raw",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		RefCount:  2,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Hash != original.Hash || decoded.Size != original.Size ||
		decoded.Type != original.Type || decoded.RefCount != original.RefCount {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	record := map[string]any{"z": 1, "a": 2, "m": []string{"x"}}

	first, err := Marshal(record)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(record)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestHashEncodedAsText(t *testing.T) {
	hash := objecthash.Sum([]byte("text"))
	data, err := Marshal(sampleRecord{Hash: hash})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(hash.String())) {
		t.Error("hash not encoded as its hex string")
	}
}

func TestJSONTagFallback(t *testing.T) {
	data, err := Marshal(sampleDualRecord{Version: 1, Name: "tree"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["version"]; !ok {
		t.Errorf("json tag not honored: %v", decoded)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	var decoded sampleRecord
	if err := Unmarshal([]byte{0xff, 0x00, 0x13}, &decoded); err == nil {
		t.Error("Unmarshal(garbage) should fail")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(sampleDualRecord{Version: 3, Name: "commit"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"commit"`) {
		t.Errorf("Diagnose = %s", diagnostic)
	}
}
