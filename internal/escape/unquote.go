// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"bytes"
	"fmt"

	"github.com/ekarpov/elib-sub000/internal/fsm"
)

// Unquote decodes a byte slice containing the body of a quoted string, with
// the enclosing quotation marks already removed. Escape sequences are
// replaced with their decoded equivalents using a Decoder, so the result is
// the same as when the string is decoded incrementally by a parser.
func Unquote(src []byte) ([]byte, error) {
	i := bytes.IndexByte(src, '\\')
	if i < 0 {
		return append([]byte(nil), src...), nil
	}

	dec := make([]byte, 0, len(src))
	var d Decoder
	for i >= 0 {
		dec = append(dec, src[:i]...)
		src = src[i+1:]

		d.Begin()
		res, n, err := d.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", n, err)
		} else if res == fsm.Continue {
			if err := d.End(); err != nil {
				return nil, fmt.Errorf("incomplete escape sequence %q: %w", d.Input(), err)
			}
		}
		dec = append(dec, d.Output()...)
		src = src[n:]

		// Look for the next escape sequence; if there is none we can blit the
		// rest of the input and go home.
		i = bytes.IndexByte(src, '\\')
	}
	return append(dec, src...), nil
}
