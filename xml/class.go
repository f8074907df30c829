// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package xml

type class uint8

const (
	classOther     class = iota
	classSpace           // whitespace
	classFormat          // other control bytes
	classNameStart       // a byte that may begin a name
	className            // a byte that may continue a name
	classLT              // <
	classGT              // >
	classSlash           // /
	classBang            // !
	classQuest           // ?
	classEq              // =
	classQuote           // " or '
	classAmp             // &
	classBackslash       // \
)

var classes = func() (t [128]class) {
	for b := range 0x20 {
		t[b] = classFormat
	}
	t[0x7f] = classFormat
	for _, b := range []byte(" \t\r\n") {
		t[b] = classSpace
	}
	for b := 'a'; b <= 'z'; b++ {
		t[b] = classNameStart
		t[b-'a'+'A'] = classNameStart
	}
	t['_'] = classNameStart
	t[':'] = classNameStart
	for _, b := range []byte("0123456789.-") {
		t[b] = className
	}
	t['<'] = classLT
	t['>'] = classGT
	t['/'] = classSlash
	t['!'] = classBang
	t['?'] = classQuest
	t['='] = classEq
	t['"'] = classQuote
	t['\''] = classQuote
	t['&'] = classAmp
	t['\\'] = classBackslash
	return
}()

// classOf returns the token class of b. Bytes outside ASCII may appear in
// names.
func classOf(b byte) class {
	if b >= 0x80 {
		return classNameStart
	}
	return classes[b]
}

func isNameStart(b byte) bool { return classOf(b) == classNameStart }

func isName(b byte) bool {
	c := classOf(b)
	return c == classNameStart || c == className
}

// isBlank reports whether text consists only of whitespace and control bytes.
func isBlank(text []byte) bool {
	for _, b := range text {
		if c := classOf(b); c != classSpace && c != classFormat {
			return false
		}
	}
	return true
}
