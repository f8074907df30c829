// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package fsm

import "go4.org/mem"

// Match classifies how a buffer relates to a multi-byte keyword.
type Match int

const (
	NotMatching Match = iota // the keyword cannot be in progress
	Matching                 // the keyword was just completed
	Continuing               // a strict prefix of the keyword is in progress
)

var matchStr = [...]string{
	NotMatching: "not-matching",
	Matching:    "matching",
	Continuing:  "continuing",
}

func (m Match) String() string { return matchStr[m] }

// MatchKeyword compares the tail of buf with kw. It reports Matching if buf
// ends with kw, Continuing if buf ends with a non-empty strict prefix of kw,
// and otherwise NotMatching.
//
// Callers append one byte at a time and check after each append, so a
// keyword split across several input chunks is recognized with no buffering
// beyond buf itself.
func MatchKeyword(buf []byte, kw string) Match {
	tail := mem.B(buf)
	if mem.HasSuffix(tail, mem.S(kw)) {
		return Matching
	}
	for n := min(len(kw)-1, len(buf)); n > 0; n-- {
		if mem.HasSuffix(tail, mem.S(kw[:n])) {
			return Continuing
		}
	}
	return NotMatching
}

// MatchPrefix compares all of buf with the start of kw. It reports Matching
// if buf equals kw, Continuing if buf is a non-empty strict prefix of kw, and
// otherwise NotMatching.
func MatchPrefix(buf []byte, kw string) Match {
	b := mem.B(buf)
	switch {
	case b.EqualString(kw):
		return Matching
	case len(buf) != 0 && len(buf) < len(kw) && mem.HasPrefix(mem.S(kw), b):
		return Continuing
	}
	return NotMatching
}

// HexDigit reports the value of the hexadecimal digit b, in either case.
func HexDigit(b byte) (rune, bool) {
	switch {
	case '0' <= b && b <= '9':
		return rune(b - '0'), true
	case 'a' <= b && b <= 'f':
		return rune(b - 'a' + 10), true
	case 'A' <= b && b <= 'F':
		return rune(b - 'A' + 10), true
	}
	return 0, false
}
