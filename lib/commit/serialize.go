// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// Top-level field names, in serialization order.
const (
	fieldTree      = "tree"
	fieldParent    = "parent"
	fieldMessage   = "message"
	fieldAuthor    = "author"
	fieldTimestamp = "timestamp"
	fieldMetadata  = "metadata"
)

// Named metadata keys, in serialization order.
const (
	metaTags              = "tags"
	metaBranch            = "branch"
	metaOperation         = "operation"
	metaEntityCount       = "entityCount"
	metaRelationshipCount = "relationshipCount"
)

var topLevelFields = []string{fieldTree, fieldParent, fieldMessage, fieldAuthor, fieldTimestamp, fieldMetadata}

var namedMetadataKeys = []string{metaTags, metaBranch, metaOperation, metaEntityCount, metaRelationshipCount}

// Serialize returns the canonical encoding of c: compact JSON with
// fields in the order tree, parent, message, author, timestamp,
// metadata. A null parent is written as JSON null. Metadata is omitted
// when empty; inside it, named keys come first in a fixed order and
// extension keys follow in sorted order.
func Serialize(c *Commit) ([]byte, error) {
	if c == nil {
		return nil, errors.New("commit: serializing nil commit")
	}

	var buffer bytes.Buffer
	buffer.WriteString(`{"tree":`)
	writeString(&buffer, c.Tree.String())
	buffer.WriteString(`,"parent":`)
	if c.Parent.IsNull() {
		buffer.WriteString("null")
	} else {
		writeString(&buffer, c.Parent.String())
	}
	buffer.WriteString(`,"message":`)
	writeString(&buffer, c.Message)
	buffer.WriteString(`,"author":`)
	writeString(&buffer, c.Author)
	buffer.WriteString(`,"timestamp":`)
	buffer.WriteString(strconv.FormatInt(c.Timestamp, 10))

	if !c.Metadata.empty() {
		buffer.WriteString(`,"metadata":`)
		if err := writeMetadata(&buffer, c.Metadata); err != nil {
			return nil, err
		}
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// HashOf returns the content hash of c's canonical encoding: the hash
// under which Log.Write stores it.
func HashOf(c *Commit) (objecthash.Hash, error) {
	data, err := Serialize(c)
	if err != nil {
		return objecthash.Hash{}, err
	}
	return objecthash.Sum(data), nil
}

func writeMetadata(buffer *bytes.Buffer, metadata *Metadata) error {
	buffer.WriteByte('{')
	first := true
	key := func(name string) {
		if !first {
			buffer.WriteByte(',')
		}
		first = false
		writeString(buffer, name)
		buffer.WriteByte(':')
	}

	if len(metadata.Tags) > 0 {
		key(metaTags)
		buffer.WriteByte('[')
		for i, tag := range metadata.Tags {
			if i > 0 {
				buffer.WriteByte(',')
			}
			writeString(buffer, tag)
		}
		buffer.WriteByte(']')
	}
	if metadata.Branch != "" {
		key(metaBranch)
		writeString(buffer, metadata.Branch)
	}
	if metadata.Operation != "" {
		key(metaOperation)
		writeString(buffer, metadata.Operation)
	}
	if metadata.EntityCount != nil {
		key(metaEntityCount)
		buffer.WriteString(strconv.FormatInt(*metadata.EntityCount, 10))
	}
	if metadata.RelationshipCount != nil {
		key(metaRelationshipCount)
		buffer.WriteString(strconv.FormatInt(*metadata.RelationshipCount, 10))
	}

	for _, name := range slices.Sorted(maps.Keys(metadata.Extra)) {
		if slices.Contains(namedMetadataKeys, name) {
			return invalid("metadata."+name, "is a named field and cannot be set as an extension key")
		}
		// encoding/json sorts map keys, so nested values are
		// deterministic too.
		value, err := json.Marshal(metadata.Extra[name])
		if err != nil {
			return fmt.Errorf("encoding metadata.%s: %w", name, err)
		}
		key(name)
		buffer.Write(value)
	}

	buffer.WriteByte('}')
	return nil
}

func writeString(buffer *bytes.Buffer, value string) {
	// Marshaling a string cannot fail.
	encoded, _ := json.Marshal(value)
	buffer.Write(encoded)
}

// Deserialize parses and validates a serialized commit. Every
// structural problem is reported as a *ValidationError naming the
// field.
func Deserialize(data []byte) (*Commit, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, invalid("document", "is not a JSON object: %v", err)
	}
	if fields == nil {
		return nil, invalid("document", "is null")
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(topLevelFields, name) {
			return nil, invalid(name, "is not a commit field")
		}
	}

	var (
		c   Commit
		err error
	)
	if c.Tree, err = decodeHash(fields, fieldTree, false); err != nil {
		return nil, err
	}
	if c.Parent, err = decodeHash(fields, fieldParent, true); err != nil {
		return nil, err
	}
	if c.Message, err = decodeString(fields, fieldMessage, fieldMessage); err != nil {
		return nil, err
	}
	if c.Author, err = decodeString(fields, fieldAuthor, fieldAuthor); err != nil {
		return nil, err
	}
	raw, ok := fields[fieldTimestamp]
	if !ok {
		return nil, invalid(fieldTimestamp, "is missing")
	}
	if c.Timestamp, err = decodeInteger(raw, fieldTimestamp); err != nil {
		return nil, err
	}

	if raw, ok := fields[fieldMetadata]; ok {
		if isNull(raw) {
			return nil, invalid(fieldMetadata, "must be an object when present")
		}
		if c.Metadata, err = decodeMetadata(raw); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func decodeMetadata(raw json.RawMessage) (*Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, invalid(fieldMetadata, "must be an object")
	}

	var metadata Metadata
	var err error
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		value := fields[name]
		field := fieldMetadata + "." + name
		switch name {
		case metaTags:
			if isNull(value) || json.Unmarshal(value, &metadata.Tags) != nil {
				return nil, invalid(field, "must be an array of strings")
			}
			if len(metadata.Tags) == 0 {
				metadata.Tags = nil
			}
		case metaBranch:
			if metadata.Branch, err = decodeString(fields, name, field); err != nil {
				return nil, err
			}
		case metaOperation:
			if metadata.Operation, err = decodeString(fields, name, field); err != nil {
				return nil, err
			}
		case metaEntityCount:
			count, err := decodeInteger(value, field)
			if err != nil {
				return nil, err
			}
			metadata.EntityCount = &count
		case metaRelationshipCount:
			count, err := decodeInteger(value, field)
			if err != nil {
				return nil, err
			}
			metadata.RelationshipCount = &count
		default:
			decoder := json.NewDecoder(bytes.NewReader(value))
			decoder.UseNumber()
			var extra any
			if err := decoder.Decode(&extra); err != nil {
				return nil, invalid(field, "is not valid JSON: %v", err)
			}
			if metadata.Extra == nil {
				metadata.Extra = make(map[string]any)
			}
			metadata.Extra[name] = extra
		}
	}

	if metadata.empty() {
		return nil, nil
	}
	return &metadata, nil
}

func decodeHash(fields map[string]json.RawMessage, name string, nullable bool) (objecthash.Hash, error) {
	raw, ok := fields[name]
	if !ok {
		return objecthash.Hash{}, invalid(name, "is missing")
	}
	if isNull(raw) {
		if nullable {
			return objecthash.NullHash, nil
		}
		return objecthash.Hash{}, invalid(name, "must not be null")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		if nullable {
			return objecthash.Hash{}, invalid(name, "must be null or a hash string")
		}
		return objecthash.Hash{}, invalid(name, "must be a hash string")
	}
	if len(text) != objecthash.HexLength {
		return objecthash.Hash{}, invalid(name, "must be %d characters, got %d", objecthash.HexLength, len(text))
	}
	if strings.IndexFunc(text, isNotLowerHex) >= 0 {
		return objecthash.Hash{}, invalid(name, "is not lowercase hexadecimal")
	}
	hash, err := objecthash.Parse(text)
	if err != nil {
		return objecthash.Hash{}, invalid(name, "is not hexadecimal")
	}
	if hash.IsNull() {
		return objecthash.Hash{}, invalid(name, "is the reserved null hash; use null")
	}
	return hash, nil
}

func decodeString(fields map[string]json.RawMessage, name, field string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", invalid(field, "is missing")
	}
	var text string
	if isNull(raw) || json.Unmarshal(raw, &text) != nil {
		return "", invalid(field, "must be a string")
	}
	return text, nil
}

// decodeInteger accepts a JSON number with an integral value.
func decodeInteger(raw json.RawMessage, field string) (int64, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return 0, invalid(field, "must be a number")
	}
	number, ok := value.(json.Number)
	if !ok {
		return 0, invalid(field, "must be a number")
	}
	if integer, err := number.Int64(); err == nil {
		return integer, nil
	}
	float, err := number.Float64()
	if err != nil || float != math.Trunc(float) || float < -0x1p63 || float >= 0x1p63 {
		return 0, invalid(field, "must be a whole number, got %s", number)
	}
	return int64(float), nil
}

func isNotLowerHex(r rune) bool {
	return (r < '0' || r > '9') && (r < 'a' || r > 'f')
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
