// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package entity decodes character references such as &amp;, &#233; and
// &#xE9; from input delivered in arbitrary fragments.
//
// Named references are resolved against the HTML5 entity table, which
// includes the five entities predefined by XML. A reference must be closed by
// a semicolon.
package entity

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ekarpov/elib-sub000/internal/fsm"
	"golang.org/x/net/html"
)

// ErrInvalidData is reported for a malformed or unknown reference.
var ErrInvalidData = errors.New("invalid character reference")

const (
	// MaxName is the length of the longest accepted entity name.
	MaxName = 31

	// MaxInput is the length of the longest reference, &name;.
	MaxInput = MaxName + 2

	// MaxOutput is the length of the longest decoded reference. A few named
	// entities expand to more than one code point.
	MaxOutput = 12
)

type mode uint8

const (
	modeStart mode = iota // just saw the ampersand
	modeName              // &name
	modeHash              // &#
	modeDec               // &#D
	modeHex               // &#x
)

// A Decoder decodes one character reference. A zero Decoder is ready for use
// after a call to Begin.
type Decoder struct {
	mode   mode
	value  rune
	digits int

	in    [MaxInput]byte
	inLen int

	out    [MaxOutput]byte
	outLen int
}

// Begin resets d to the state just after an ampersand.
func (d *Decoder) Begin() {
	*d = Decoder{}
	d.in[0] = '&'
	d.inLen = 1
}

// Input returns the raw text of the reference matched so far, including the
// leading ampersand.
func (d *Decoder) Input() []byte { return d.in[:d.inLen] }

// Output returns the UTF-8 text of the decoded reference, valid once Parse
// has reported fsm.Ready.
func (d *Decoder) Output() []byte { return d.out[:d.outLen] }

// Parse consumes the prefix of data that belongs to the current reference,
// with the same contract as the escape decoder: fsm.Ready with the count of
// bytes used when the closing semicolon has been consumed, fsm.Continue when
// all of data was used and more is needed, or ErrInvalidData without
// consuming the offending byte.
func (d *Decoder) Parse(data []byte) (fsm.Result, int, error) {
	for i, b := range data {
		done, err := d.step(b)
		if err != nil {
			return fsm.Continue, i, err
		}
		d.in[d.inLen] = b
		d.inLen++
		if done {
			return fsm.Ready, i + 1, nil
		}
	}
	return fsm.Continue, len(data), nil
}

func (d *Decoder) step(b byte) (bool, error) {
	switch d.mode {
	case modeStart:
		if b == '#' {
			d.mode = modeHash
			return false, nil
		} else if isNameByte(b) {
			d.mode = modeName
			return false, nil
		}

	case modeName:
		if b == ';' {
			return true, d.resolve()
		} else if isNameByte(b) && d.inLen <= MaxName {
			return false, nil
		}

	case modeHash:
		if b == 'x' || b == 'X' {
			d.mode = modeHex
			return false, nil
		} else if '0' <= b && b <= '9' {
			d.mode = modeDec
			return false, d.digit(10, rune(b-'0'))
		}

	case modeDec, modeHex:
		if b == ';' {
			if d.digits == 0 || d.value == 0 || !utf8.ValidRune(d.value) {
				break
			}
			d.outLen = utf8.EncodeRune(d.out[:], d.value)
			return true, nil
		}
		if d.mode == modeDec && '0' <= b && b <= '9' {
			return false, d.digit(10, rune(b-'0'))
		} else if v, ok := fsm.HexDigit(b); ok && d.mode == modeHex {
			return false, d.digit(16, v)
		}
	}
	return false, ErrInvalidData
}

func (d *Decoder) digit(base, v rune) error {
	d.value = d.value*base + v
	d.digits++
	if d.value > utf8.MaxRune || d.inLen >= MaxInput-1 {
		return ErrInvalidData
	}
	return nil
}

// resolve looks up the name recorded in the input buffer. The lookup accepts
// the whole reference, including its semicolon, so that the table's legacy
// unterminated forms (&amp without a semicolon) cannot match a prefix of a
// longer unknown name.
func (d *Decoder) resolve() error {
	ref := string(d.in[:d.inLen]) + ";"
	got := html.UnescapeString(ref)
	if got == ref || (strings.HasSuffix(got, ";") && got != ";") || len(got) > MaxOutput {
		return ErrInvalidData
	}
	d.outLen = copy(d.out[:], got)
	return nil
}

func isNameByte(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
