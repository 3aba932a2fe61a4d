// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vitaly-z/brainy-sub013/lib/objecthash"
)

// Built-in storage prefixes.
const (
	PrefixCommit = "commit"
	PrefixTree   = "tree"
	PrefixBlob   = "blob"
)

// metaSuffix turns a payload prefix into its metadata prefix.
const metaSuffix = "-meta"

// defaultProbeOrder is the lookup order when only a hash is known.
var defaultProbeOrder = []string{PrefixCommit, PrefixTree, PrefixBlob}

// keySpace maps object types to storage prefixes.
type keySpace struct {
	byType map[ObjectType]string
	probe  []string
}

// newKeySpace builds the mapping. overrides may redirect any type;
// prefixes they introduce are probed after the built-in ones.
func newKeySpace(overrides map[ObjectType]string) (*keySpace, error) {
	space := &keySpace{
		byType: map[ObjectType]string{
			TypeCommit:   PrefixCommit,
			TypeTree:     PrefixTree,
			TypeRaw:      PrefixBlob,
			TypeVector:   PrefixBlob,
			TypeMetadata: PrefixBlob,
		},
		probe: append([]string(nil), defaultProbeOrder...),
	}

	for objectType, prefix := range overrides {
		if _, err := ParseObjectType(string(objectType)); err != nil {
			return nil, fmt.Errorf("prefix override: %w", err)
		}
		if err := validatePrefix(prefix); err != nil {
			return nil, err
		}
		space.byType[objectType] = prefix
	}

	// Deterministic probe order for extra prefixes.
	for _, objectType := range []ObjectType{TypeCommit, TypeTree, TypeRaw, TypeVector, TypeMetadata} {
		prefix := space.byType[objectType]
		if !slices.Contains(space.probe, prefix) {
			space.probe = append(space.probe, prefix)
		}
	}
	return space, nil
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("storage prefix must not be empty")
	case strings.Contains(prefix, ":"):
		return fmt.Errorf("storage prefix %q must not contain ':'", prefix)
	case strings.HasSuffix(prefix, metaSuffix):
		return fmt.Errorf("storage prefix %q must not end in %q", prefix, metaSuffix)
	}
	return nil
}

func (k *keySpace) prefixFor(objectType ObjectType) string {
	return k.byType[objectType]
}

func objectKey(prefix string, hash objecthash.Hash) string {
	return prefix + ":" + hash.String()
}

func metadataKey(prefix string, hash objecthash.Hash) string {
	return prefix + metaSuffix + ":" + hash.String()
}

// metadataListPrefix is the List prefix for every metadata key under
// prefix.
func metadataListPrefix(prefix string) string {
	return prefix + metaSuffix + ":"
}
