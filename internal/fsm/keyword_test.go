// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package fsm_test

import (
	"testing"

	"github.com/ekarpov/elib-sub000/internal/fsm"
)

func TestHexDigit(t *testing.T) {
	for i, b := range []byte("0123456789abcdefABCDEF") {
		want := rune(i)
		if i >= 16 {
			want -= 6
		}
		if v, ok := fsm.HexDigit(b); !ok || v != want {
			t.Errorf("HexDigit(%q): got (%d, %v), want (%d, true)", b, v, ok, want)
		}
	}
	for _, b := range []byte("gG/:@`{ \x00\xff") {
		if v, ok := fsm.HexDigit(b); ok {
			t.Errorf("HexDigit(%q): got %d, want not ok", b, v)
		}
	}
}

func TestMatchKeyword(t *testing.T) {
	tests := []struct {
		buf, kw string
		want    fsm.Match
	}{
		{"", "-->", fsm.NotMatching},
		{"abc", "-->", fsm.NotMatching},
		{"abc-", "-->", fsm.Continuing},
		{"abc--", "-->", fsm.Continuing},
		{"abc-->", "-->", fsm.Matching},
		{"--->", "-->", fsm.Matching},
		{"]]", "]]>", fsm.Continuing},
		{"]]x", "]]>", fsm.NotMatching},
	}
	for _, tc := range tests {
		if got := fsm.MatchKeyword([]byte(tc.buf), tc.kw); got != tc.want {
			t.Errorf("MatchKeyword(%q, %q): got %v, want %v", tc.buf, tc.kw, got, tc.want)
		}
	}
}

func TestMatchPrefix(t *testing.T) {
	tests := []struct {
		buf, kw string
		want    fsm.Match
	}{
		{"", "DOCTYPE", fsm.NotMatching},
		{"DOC", "DOCTYPE", fsm.Continuing},
		{"DOCTYPE", "DOCTYPE", fsm.Matching},
		{"DOCTYPEX", "DOCTYPE", fsm.NotMatching},
		{"DOX", "DOCTYPE", fsm.NotMatching},
	}
	for _, tc := range tests {
		if got := fsm.MatchPrefix([]byte(tc.buf), tc.kw); got != tc.want {
			t.Errorf("MatchPrefix(%q, %q): got %v, want %v", tc.buf, tc.kw, got, tc.want)
		}
	}
}
