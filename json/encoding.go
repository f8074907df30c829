// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package json

import (
	"errors"
	"strings"

	"github.com/ekarpov/elib-sub000/internal/escape"
	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return escape.Quote(mem.S(src)) }

// AppendQuote appends the quoted form of src to dst, as Quote.
func AppendQuote(dst, src []byte) []byte { return escape.AppendQuote(dst, mem.B(src)) }

// Unquote decodes a JSON string value. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents, exactly
// as a Parser decodes them.
//
// Unquote reports an error for a malformed or incomplete escape sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote([]byte(src[1 : len(src)-1]))
}
