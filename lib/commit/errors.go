// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commit

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("commit: invalid commit")

	// ErrMissingTree is returned by Builder.Build and Log.Write for a
	// commit with no tree. It is a caller bug, not bad data.
	ErrMissingTree = errors.New("commit: tree hash is required")

	// ErrCycle is returned by a walk that reaches a commit it has
	// already visited. Content addressing makes this impossible for
	// honestly written history, so it indicates corrupted storage.
	ErrCycle = errors.New("commit: history contains a cycle")
)

// ValidationError describes one structural problem in a serialized
// commit.
type ValidationError struct {
	// Field is the offending field, e.g. "tree" or "metadata.tags".
	Field string

	// Problem says what is wrong with it.
	Problem string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid commit: %s %s", e.Field, e.Problem)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Problem: fmt.Sprintf(format, args...)}
}
