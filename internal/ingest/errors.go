// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat indicates the file extension matches no loader.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrUnreadable indicates the document could not be decoded or parsed.
	ErrUnreadable = errors.New("unreadable document")
)

// Error describes a failed ingestion. The knowledge base is never touched
// when one is returned.
type Error struct {
	Name   string
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("ingest %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("ingest %s (%s): %v", e.Name, e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func unreadable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnreadable, fmt.Sprintf(format, args...))
}
