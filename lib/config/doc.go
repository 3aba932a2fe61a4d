// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads object store configuration.
//
// Configuration comes from a single file named either by the
// OBJECTSTORE_CONFIG environment variable (via [Load]) or explicitly
// (via [LoadFile]). There is no file discovery and no environment
// variable overrides individual values.
//
// Files are YAML, or JSONC (JSON with comments and trailing commas)
// when the name ends in .json or .jsonc. Byte sizes accept integers or
// human-readable strings ("64MiB", "512 KB").
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. ${HOME} and ${VAR:-default} patterns
// are expanded in the encryption key path.
//
// Key exports:
//
//   - [Config] -- cache, compression, storage, and encryption sections
//   - [Default] -- the built-in defaults every file is decoded over
//   - [Config.StoreOptions] -- conversion to [blobstore.Options]
//   - [Config.WrapAdapter] -- wraps a [kv.Adapter] in value encryption
//     when a key file is configured
package config
