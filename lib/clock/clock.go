// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the wall clock for testability. The object store
// reads the time when it stamps blob metadata (CreatedAt), when it
// records cache access order, and when a commit builder falls back
// to "now" for an unset timestamp. Production code injects Real();
// tests inject Fake() and move time explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// OrReal returns c, or Real() when c is nil. Constructors use it to
// default an optional Clock field.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real()
	}
	return c
}
