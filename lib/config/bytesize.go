// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ByteSize is a byte count that unmarshals from either an integer or a
// human-readable string such as "64MiB" or "1.5 GB".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var count int64
	if err := node.Decode(&count); err == nil {
		if count < 0 {
			return fmt.Errorf("line %d: byte size must not be negative", node.Line)
		}
		*b = ByteSize(count)
		return nil
	}

	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: byte size must be an integer or a string", node.Line)
	}
	parsed, err := humanize.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	if parsed > 1<<62 {
		return fmt.Errorf("line %d: byte size %q is too large", node.Line, text)
	}
	*b = ByteSize(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (any, error) {
	return b.String(), nil
}

// String renders the size with binary units.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}
