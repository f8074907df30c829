// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package elib

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument is reported for invalid arguments, such as a nil parse
	// buffer, before any parser state is modified.
	ErrArgument = errors.New("invalid argument")

	// ErrIncomplete is reported by End when the document still has open
	// constructs.
	ErrIncomplete = errors.New("incomplete input")

	// ErrInternal reports a violated parser invariant. It indicates a bug in
	// the parser, not a problem with the input.
	ErrInternal = errors.New("internal parser error")

	// ErrOutOfMemory is reported when a token outgrows the configured maximum
	// token size. The parser is unusable until the next call to Begin.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrStopped is reported by Parse when an event handler returned Stop.
	// Parsing may be resumed by calling Parse with the unconsumed input.
	ErrStopped = errors.New("stopped by handler")
)

// SyntaxError describes malformed input at a specific location. Syntax errors
// are delivered to the event handler, which decides whether parsing goes on.
type SyntaxError struct {
	Offset   int64   // byte offset of the offending input, 0-based
	Location LineCol // line and column of the offending input
	Message  string

	err error
}

// NewSyntaxError constructs a syntax error at the given offset and location.
// If err != nil, it is wrapped by the result.
func NewSyntaxError(offset int64, loc LineCol, err error, msg string, args ...any) *SyntaxError {
	return &SyntaxError{
		Offset:   offset,
		Location: loc,
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	}
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
