// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package json

// class is the token class of an input byte.
type class uint8

const (
	classOther     class = iota // not valid outside a string
	classSpace                  // insignificant whitespace
	classFormat                 // other control bytes
	classLBrace                 // {
	classRBrace                 // }
	classLSquare                // [
	classRSquare                // ]
	classQuote                  // "
	classComma                  // ,
	classColon                  // :
	classBackslash              // \
	classAmp                    // &
	classSlash                  // /
	classLiteral                // a byte of a number, true, false or null
)

var classes = func() (t [128]class) {
	for b := range 0x20 {
		t[b] = classFormat
	}
	t[0x7f] = classFormat
	for _, b := range []byte(" \t\r\n") {
		t[b] = classSpace
	}
	for _, b := range []byte("+-.0123456789") {
		t[b] = classLiteral
	}
	for b := 'a'; b <= 'z'; b++ {
		t[b] = classLiteral
		t[b-'a'+'A'] = classLiteral
	}
	t['{'] = classLBrace
	t['}'] = classRBrace
	t['['] = classLSquare
	t[']'] = classRSquare
	t['"'] = classQuote
	t[','] = classComma
	t[':'] = classColon
	t['\\'] = classBackslash
	t['&'] = classAmp
	t['/'] = classSlash
	return
}()

// classOf returns the token class of b. Bytes outside ASCII are never
// structural.
func classOf(b byte) class {
	if b >= 0x80 {
		return classOther
	}
	return classes[b]
}

// startsValue reports whether a byte of class c can begin a value.
func startsValue(c class) bool {
	return c == classLBrace || c == classLSquare || c == classQuote || c == classLiteral
}

// isLiteral reports whether lit is a valid scalar: a keyword constant or a
// JSON number.
func isLiteral(lit []byte) bool {
	switch string(lit) {
	case "true", "false", "null":
		return true
	}
	return isNumber(lit)
}

// isNumber reports whether lit is a number in JSON syntax: an optional minus
// sign, an integer without extra leading zeroes, an optional fraction, and an
// optional signed exponent.
func isNumber(lit []byte) bool {
	i := 0
	if i < len(lit) && lit[i] == '-' {
		i++
	}
	n := digits(lit[i:])
	if n == 0 || hasExtraLeadingZeroes(lit[:i+n]) {
		return false
	}
	i += n
	if i < len(lit) && lit[i] == '.' {
		i++
		if n = digits(lit[i:]); n == 0 {
			return false // no digits after decimal point
		}
		i += n
	}
	if i < len(lit) && (lit[i] == 'e' || lit[i] == 'E') {
		i++
		if i < len(lit) && (lit[i] == '+' || lit[i] == '-') {
			i++
		}
		if n = digits(lit[i:]); n == 0 {
			return false // missing exponent digits
		}
		i += n
	}
	return i == len(lit)
}

func digits(buf []byte) int {
	for i, b := range buf {
		if b < '0' || b > '9' {
			return i
		}
	}
	return len(buf)
}

// hasExtraLeadingZeroes reports whether the representation of an integer in
// buf has redundant leading zeroes.
//
// OK: 0, 0.1, -1.0, -0.1 are all OK.
// Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:] // skip leading sign
	}
	if buf[0] == '0' {
		// A leading zero is OK if it's the only digit.
		return len(buf) > 1
	}
	return false
}
