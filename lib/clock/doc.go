// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Components that stamp times accept a Clock in their options instead
// of calling time.Now directly:
//
//	store, err := blobstore.New(adapter, blobstore.Options{Clock: clock.Real()})
//
// Tests pass a FakeClock and move it explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.Advance(time.Minute)
package clock
