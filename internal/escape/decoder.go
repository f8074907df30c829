// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package escape decodes and encodes backslash escape sequences.
//
// The Decoder type is a reentrant state machine that decodes a single escape
// sequence from input delivered in arbitrary fragments. Decoding begins just
// after the backslash, which the caller has already consumed:
//
//	var d escape.Decoder
//	d.Begin()
//	res, n, err := d.Parse([]byte(`u00e9 and more`))
//	// res == fsm.Ready, n == 5, d.Output() == "é", d.Input() == `\u00e9`
//
// The supported forms are the single-character escapes \n \t \\ \" \' \/ \b
// \f \r \v, octal \o to \ooo, hexadecimal \xHH to \xHHHH, \uHHHH (including
// UTF-16 surrogate pairs), \UHHHHHH and the ECMAScript form \u{H...H}. Any
// other character following the backslash stands for itself.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ekarpov/elib-sub000/internal/fsm"
)

// ErrInvalidData is reported for a malformed escape sequence.
var ErrInvalidData = errors.New("invalid escape sequence")

const (
	// MaxInput is the length of the longest escape sequence, \uHHHH\uHHHH,
	// rounded up.
	MaxInput = 16

	// MaxOutput is the length of the longest decoded sequence.
	MaxOutput = utf8.UTFMax
)

type mode uint8

const (
	modeStart   mode = iota // just saw the backslash
	modeOctal               // \o, \oo
	modeHex                 // \x
	modeUnicode             // \u, up to 4 digits or an opening brace
	modeBrace               // \u{
	modeLong                // \U
	modeLowBack             // high surrogate seen, want '\'
	modeLowU                // high surrogate seen, want 'u'
	modeLow                 // low surrogate digits
)

var single = [...]byte{
	'n':  '\n',
	't':  '\t',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'r':  '\r',
	'v':  '\v',
}

// A Decoder decodes one escape sequence. A zero Decoder is ready for use after
// a call to Begin. A Decoder does not allocate.
type Decoder struct {
	mode   mode
	value  rune
	high   rune
	digits int

	in    [MaxInput]byte
	inLen int

	out    [MaxOutput]byte
	outLen int
}

// Begin resets d to the state just after a backslash.
func (d *Decoder) Begin() {
	*d = Decoder{}
	d.in[0] = '\\'
	d.inLen = 1
}

// Input returns the raw text of the escape sequence matched so far, including
// the leading backslash.
func (d *Decoder) Input() []byte { return d.in[:d.inLen] }

// Output returns the UTF-8 encoding of the decoded sequence. It is only
// meaningful after Parse has reported fsm.Ready.
func (d *Decoder) Output() []byte { return d.out[:d.outLen] }

// Parse consumes the prefix of data that belongs to the current escape
// sequence. It reports fsm.Ready with the number of bytes used once the
// sequence is complete, which may be fewer than len(data). It reports
// fsm.Continue having used all of data if more input is needed.
//
// If the sequence is malformed, Parse reports ErrInvalidData; the offending
// byte is not counted as used.
func (d *Decoder) Parse(data []byte) (fsm.Result, int, error) {
	for i, b := range data {
		done, used, err := d.step(b)
		if err != nil {
			return fsm.Continue, i, err
		}
		if used {
			d.record(b)
			i++
		}
		if done {
			return fsm.Ready, i, nil
		}
	}
	return fsm.Continue, len(data), nil
}

// End completes a sequence that was waiting only for a terminating byte, as
// when an octal or hexadecimal escape runs to the end of the input. It reports
// ErrInvalidData if the sequence is incomplete.
func (d *Decoder) End() error {
	switch d.mode {
	case modeOctal:
		d.emit(d.value)
		return nil
	case modeHex, modeLong:
		if _, _, err := d.terminate(); err != nil {
			return err
		}
		return nil
	}
	return ErrInvalidData
}

func (d *Decoder) record(b byte) {
	if d.inLen < len(d.in) {
		d.in[d.inLen] = b
		d.inLen++
	}
}

// step advances the decoder by one byte. It reports whether the sequence is
// complete and whether b belongs to it.
func (d *Decoder) step(b byte) (done, used bool, err error) {
	switch d.mode {
	case modeStart:
		switch {
		case b == 'x':
			d.mode = modeHex
		case b == 'u':
			d.mode = modeUnicode
		case b == 'U':
			d.mode = modeLong
		case isOctal(b):
			d.mode = modeOctal
			d.value = rune(b - '0')
			d.digits = 1
		default:
			if int(b) < len(single) && single[b] != 0 {
				d.emitByte(single[b])
			} else {
				d.emitByte(b) // unknown escapes stand for themselves
			}
			return true, true, nil
		}
		return false, true, nil

	case modeOctal:
		if !isOctal(b) {
			d.emit(d.value)
			return true, false, nil
		}
		// Digits accumulate in base 10, so \101 is 'e'.
		d.value = d.value*10 + rune(b-'0')
		if d.digits++; d.digits == 3 {
			d.emit(d.value)
			return true, true, nil
		}
		return false, true, nil

	case modeHex, modeLong:
		v, ok := fsm.HexDigit(b)
		if !ok {
			return d.terminate()
		}
		d.value = d.value<<4 | v
		d.digits++
		if (d.mode == modeHex && d.digits == 4) || d.digits == 6 {
			done, _, err := d.terminate()
			return done, true, err
		}
		return false, true, nil

	case modeUnicode:
		if b == '{' && d.digits == 0 {
			d.mode = modeBrace
			return false, true, nil
		}
		v, ok := fsm.HexDigit(b)
		if !ok {
			return false, false, ErrInvalidData
		}
		d.value = d.value<<4 | v
		if d.digits++; d.digits < 4 {
			return false, true, nil
		}
		if utf16.IsSurrogate(d.value) && d.value < 0xDC00 {
			d.high, d.value, d.digits = d.value, 0, 0
			d.mode = modeLowBack
			return false, true, nil
		}
		d.emit(d.value)
		return true, true, nil

	case modeBrace:
		if b == '}' {
			if d.digits == 0 || d.value > utf8.MaxRune {
				return false, false, ErrInvalidData
			}
			d.emit(d.value)
			return true, true, nil
		}
		v, ok := fsm.HexDigit(b)
		if !ok || d.digits == 6 {
			return false, false, ErrInvalidData
		}
		d.value = d.value<<4 | v
		d.digits++
		return false, true, nil

	case modeLowBack:
		if b != '\\' {
			return false, false, ErrInvalidData
		}
		d.mode = modeLowU
		return false, true, nil

	case modeLowU:
		if b != 'u' {
			return false, false, ErrInvalidData
		}
		d.mode = modeLow
		return false, true, nil

	case modeLow:
		v, ok := fsm.HexDigit(b)
		if !ok {
			return false, false, ErrInvalidData
		}
		d.value = d.value<<4 | v
		if d.digits++; d.digits < 4 {
			return false, true, nil
		}
		if d.value < 0xDC00 || d.value > 0xDFFF {
			return false, false, ErrInvalidData
		}
		d.emit(utf16.DecodeRune(d.high, d.value))
		return true, true, nil
	}
	return false, false, ErrInvalidData
}

// terminate completes a variable-length hexadecimal escape whose digit run
// has ended. The terminating byte is not part of the sequence.
func (d *Decoder) terminate() (done, used bool, err error) {
	if d.mode == modeHex && d.digits < 2 {
		return false, false, ErrInvalidData
	}
	if d.digits == 0 || d.value > utf8.MaxRune {
		return false, false, ErrInvalidData
	}
	d.emit(d.value)
	return true, false, nil
}

func (d *Decoder) emitByte(b byte) {
	d.out[0] = b
	d.outLen = 1
}

// emit stores the UTF-8 encoding of r. Values below 0x80 are a single byte;
// unpaired surrogates encode as U+FFFD.
func (d *Decoder) emit(r rune) {
	d.outLen = utf8.EncodeRune(d.out[:], r)
}

func isOctal(b byte) bool { return '0' <= b && b <= '7' }
