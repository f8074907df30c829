// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package fsm

import "github.com/ekarpov/elib-sub000"

// A Counter tracks the position of the next input byte of a document.
type Counter struct {
	Offset int64 // bytes consumed so far
	Line   int   // newlines consumed so far
	Column int   // bytes consumed since the last newline
}

// Advance updates c to account for the consumption of data.
func (c *Counter) Advance(data []byte) {
	for _, b := range data {
		c.Offset++
		if b == '\n' {
			c.Line++
			c.Column = 0
		} else {
			c.Column++
		}
	}
}

// LineCol returns the line and column of c in the usual 1-based line form.
func (c Counter) LineCol() elib.LineCol {
	return elib.LineCol{Line: c.Line + 1, Column: c.Column}
}
