// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package json_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ekarpov/elib-sub000"
	"github.com/ekarpov/elib-sub000/json"
	"github.com/google/go-cmp/cmp"
)

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

// testHandler records one line per event, without offsets.
type testHandler struct {
	buf    bytes.Buffer
	stopOn json.Kind
}

func (t *testHandler) HandleEvent(e json.Event) elib.Action {
	switch {
	case e.Kind == json.SyntaxError:
		fmt.Fprintf(&t.buf, "%v %v\n", e.Kind, e.Err)
	case e.Kind.HasData():
		fmt.Fprintf(&t.buf, "%v %q\n", e.Kind, e.Data)
	default:
		fmt.Fprintf(&t.buf, "%v\n", e.Kind)
	}
	if e.Kind == t.stopOn {
		return elib.Stop
	}
	return elib.Continue
}

func (t *testHandler) output() string { return t.buf.String() }

// parseString parses input in one chunk and returns the result of End.
func parseString(t *testing.T, p *json.Parser, input string) error {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Begin(&buf); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Parse([]byte(input)); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return p.End()
}

func TestParser(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   \n\t ", ""},

		{`{"a":1}`, `
ObjectBegin
KeyName "a"
ValueData "1"
ObjectEnd`},

		{`{"a":[1,2]}`, `
ObjectBegin
KeyName "a"
ArrayBegin
ValueData "1"
ValueData "2"
ArrayEnd
ObjectEnd`},

		{"true false null", `
ValueData "true"
ValueData "false"
ValueData "null"`},

		{`0 5 -6.32 0.1e-2 1E+9`, `
ValueData "0"
ValueData "5"
ValueData "-6.32"
ValueData "0.1e-2"
ValueData "1E+9"`},

		{`"" "a b c" "a\tb" "a\u0020b" "\/\\\""`, `
ValueString ""
ValueString "a b c"
ValueString "a\tb"
ValueString "a b"
ValueString "/\\\""`},

		{`{}`, "ObjectBegin\nObjectEnd"},
		{`[]`, "ArrayBegin\nArrayEnd"},
		{`[[[]]]`, "ArrayBegin\nArrayBegin\nArrayBegin\nArrayEnd\nArrayEnd\nArrayEnd"},

		{`{"x":null, "y":[true]}`, `
ObjectBegin
KeyName "x"
ValueData "null"
KeyName "y"
ArrayBegin
ValueData "true"
ArrayEnd
ObjectEnd`},

		{` { "a" : { "b" : { } } , "c" : [ { } , "d" ] } `, `
ObjectBegin
KeyName "a"
ObjectBegin
KeyName "b"
ObjectBegin
ObjectEnd
ObjectEnd
KeyName "c"
ArrayBegin
ObjectBegin
ObjectEnd
ValueString "d"
ArrayEnd
ObjectEnd`},

		// Non-ASCII bytes are string data.
		{`{"héllo":"wörld"}`, `
ObjectBegin
KeyName "héllo"
ValueString "wörld"
ObjectEnd`},

		// Escapes and entities are decoded by default.
		{`["\ud834\udf06", "\x41\102\u{1F600}", "AT&amp;T", "a & b", "&#65;&lt;"]`, `
ArrayBegin
ValueString "𝌆"
ValueString "AB😀"
ValueString "AT&T"
ValueString "a & b"
ValueString "A<"
ArrayEnd`},
	}

	for _, test := range tests {
		th := new(testHandler)
		if err := parseString(t, json.NewParser(th), test.input); err != nil {
			t.Errorf("Input: %#q\nEnd failed: %v", test.input, err)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
		end   error
	}{
		{`{"a":1`, `
ObjectBegin
KeyName "a"`, elib.ErrIncomplete},

		{`[1`, `ArrayBegin`, elib.ErrIncomplete},
		{`"abc`, ``, elib.ErrIncomplete},

		{`{"a":1,}`, `
ObjectBegin
KeyName "a"
ValueData "1"
SyntaxError at 1:7: trailing comma
ObjectEnd`, nil},

		{`[1,]`, `
ArrayBegin
ValueData "1"
SyntaxError at 1:3: trailing comma
ArrayEnd`, nil},

		{`[1 2]`, `
ArrayBegin
ValueData "1"
SyntaxError at 1:3: missing comma before value
ValueData "2"
ArrayEnd`, nil},

		{`{"a":1 "b":2}`, `
ObjectBegin
KeyName "a"
ValueData "1"
SyntaxError at 1:7: missing comma before key
KeyName "b"
ValueData "2"
ObjectEnd`, nil},

		{`{"a" 1}`, `
ObjectBegin
KeyName "a"
SyntaxError at 1:5: missing colon after key
ValueData "1"
ObjectEnd`, nil},

		{`{"a":}`, `
ObjectBegin
KeyName "a"
SyntaxError at 1:5: missing value after key
ObjectEnd`, nil},

		{`[tru]`, `
ArrayBegin
SyntaxError at 1:1: invalid value "tru"
ArrayEnd`, nil},

		{`[01, 1., -, 2e]`, `
ArrayBegin
SyntaxError at 1:1: invalid value "01"
SyntaxError at 1:5: invalid value "1."
SyntaxError at 1:9: invalid value "-"
SyntaxError at 1:12: invalid value "2e"
ArrayEnd`, nil},

		{`}`, `SyntaxError at 1:0: expected value, got "}"`, nil},

		{`{"a":1]`, `
ObjectBegin
KeyName "a"
ValueData "1"
SyntaxError at 1:6: expected key or end of object, got "]"`, elib.ErrIncomplete},

		{"[1]\n/", `
ArrayBegin
ValueData "1"
ArrayEnd
SyntaxError at 2:0: comments are not enabled`, nil},

		{`{"a":"\x4"}`, `
ObjectBegin
KeyName "a"
SyntaxError at 1:9: invalid escape sequence "\\x4"
ValueString "\\x4"
ObjectEnd`, nil},

		{`"\uD834"`, `
SyntaxError at 1:7: invalid escape sequence "\\uD834"
ValueString "\\uD834"`, nil},

		{"\"a\x01b\"", `
SyntaxError at 1:2: unescaped control "\x01" in string
ValueString "ab"`, nil},
	}

	for _, test := range tests {
		th := new(testHandler)
		err := parseString(t, json.NewParser(th), test.input)
		if !errors.Is(err, test.end) {
			t.Errorf("Input: %#q\nEnd: got %v, want %v", test.input, err, test.end)
		}
		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*json.Parser)
		input string
		want  string
	}{
		{"Comments", func(p *json.Parser) { p.AllowComments(true) },
			"// head\n{\"a\": /* inner */ 1} /*/ x */ // tail", `
Comment "// head\n"
ObjectBegin
KeyName "a"
Comment "/* inner */"
ValueData "1"
ObjectEnd
Comment "/*/ x */"
Comment "// tail"`},

		{"TrailingCommas", func(p *json.Parser) { p.AllowTrailingCommas(true) },
			`[1,{"a":2,},]`, `
ArrayBegin
ValueData "1"
ObjectBegin
KeyName "a"
ValueData "2"
ObjectEnd
ArrayEnd`},

		{"RawEscapes", func(p *json.Parser) { p.DecodeEscapes(false) },
			`{"a\tb":"x\u00e9&amp;\uD834\uDF06"}`, `
ObjectBegin
KeyName "a\\tb"
ValueString "x\\u00e9&amp;\\uD834\\uDF06"
ObjectEnd`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			th := new(testHandler)
			p := json.NewParser(th)
			test.setup(p)
			if err := parseString(t, p, test.input); err != nil {
				t.Errorf("End failed: %v", err)
			}
			if diff := diffStrings(test.want, th.output()); diff != "" {
				t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
			}
		})
	}
}

// invarianceInputs are documents, valid and otherwise, used to check that the
// event sequence does not depend on how the input is divided.
var invarianceInputs = []string{
	`{"a":[1,2]}`,
	`{"key": "value with \"quotes\" and \\ and \u00e9 and \uD83D\uDE00", "n": -12.5e+3}`,
	`[true, false, null, [], {}, [{"x": [0]}], "\x41\101\u{41}\U000041"]`,
	` {"déjà": "vu", "AT&amp;T": "&#x1F600;", "tail": 1234567890} `,
	`1 2 "three" [4] {"five": 5}`,
	"[1 2, , 3,]\n{\"a\" \"b\" :}\n{\"\\uD834\": tru}",
	`{"a": // line comment
	  [1, /* block
	  comment */ 2]} // end`,
}

func collect(opts func(*json.Parser), chunks [][]byte) []string {
	var got []string
	p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
		got = append(got, e.String())
		return elib.Continue
	}))
	if opts != nil {
		opts(p)
	}
	var buf bytes.Buffer
	p.Begin(&buf)
	for _, c := range chunks {
		if n, err := p.Parse(c); err != nil || n != len(c) {
			return append(got, fmt.Sprintf("parse: n=%d err=%v", n, err))
		}
	}
	return append(got, fmt.Sprintf("end: %v", p.End()))
}

func split(r *rand.Rand, s string) [][]byte {
	var out [][]byte
	for len(s) != 0 {
		n := 1 + r.IntN(min(len(s), 7))
		out = append(out, []byte(s[:n]))
		s = s[n:]
	}
	return out
}

func TestChunkingInvariance(t *testing.T) {
	withComments := func(p *json.Parser) { p.AllowComments(true) }
	r := rand.New(rand.NewPCG(17, 19))
	for _, input := range invarianceInputs {
		want := collect(withComments, [][]byte{[]byte(input)})

		var bytewise [][]byte
		for i := range len(input) {
			bytewise = append(bytewise, []byte{input[i]})
		}
		if diff := cmp.Diff(want, collect(withComments, bytewise)); diff != "" {
			t.Errorf("Input: %#q bytewise (-want, +got):\n%s", input, diff)
		}
		for range 20 {
			chunks := split(r, input)
			if diff := cmp.Diff(want, collect(withComments, chunks)); diff != "" {
				t.Errorf("Input: %#q in %q (-want, +got):\n%s", input, chunks, diff)
			}
		}
	}
}

func TestStopResume(t *testing.T) {
	for _, input := range invarianceInputs {
		want := collect(func(p *json.Parser) { p.AllowComments(true) }, [][]byte{[]byte(input)})

		// Stop after every event, and resume with the unconsumed input.
		var got []string
		p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
			got = append(got, e.String())
			return elib.Stop
		}))
		p.AllowComments(true)
		var buf bytes.Buffer
		p.Begin(&buf)

		data := []byte(input)
		for len(data) != 0 {
			n, err := p.Parse(data)
			if err != nil && !errors.Is(err, elib.ErrStopped) {
				t.Fatalf("Parse %#q: unexpected error: %v", data, err)
			} else if err == nil && n != len(data) {
				t.Fatalf("Parse %#q: consumed %d, want %d", data, n, len(data))
			}
			data = data[n:]
		}
		got = append(got, fmt.Sprintf("end: %v", p.End()))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Input: %#q (-want, +got):\n%s", input, diff)
		}
	}
}

func TestStopConsumed(t *testing.T) {
	th := &testHandler{stopOn: json.KeyName}
	p := json.NewParser(th)
	var buf bytes.Buffer
	p.Begin(&buf)

	const input = `{"a":1,"b":2}`
	n, err := p.Parse([]byte(input))
	if !errors.Is(err, elib.ErrStopped) {
		t.Fatalf("Parse: got %v, want %v", err, elib.ErrStopped)
	}
	if want := strings.Index(input, ":"); n != want {
		t.Errorf("Parse consumed %d bytes, want %d", n, want)
	}
	if got := p.Depth(); got != 2 {
		t.Errorf("Depth: got %d, want 2", got)
	}
}

func TestWriter(t *testing.T) {
	const input = `{"list":[1,"two",{"three":3}]}`
	th := new(testHandler)
	p := json.NewParser(th)
	var buf bytes.Buffer
	p.Begin(&buf)
	if _, err := io.Copy(p, iotest.OneByteReader(strings.NewReader(input))); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if err := p.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	const want = `
ObjectBegin
KeyName "list"
ArrayBegin
ValueData "1"
ValueString "two"
ObjectBegin
KeyName "three"
ValueData "3"
ObjectEnd
ArrayEnd
ObjectEnd`
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestMaxTokenSize(t *testing.T) {
	th := new(testHandler)
	p := json.NewParser(th)
	p.SetMaxTokenSize(4)

	var buf bytes.Buffer
	p.Begin(&buf)
	if _, err := p.Parse([]byte(`["abcd", "abcdef"]`)); !errors.Is(err, elib.ErrOutOfMemory) {
		t.Errorf("Parse: got %v, want %v", err, elib.ErrOutOfMemory)
	}
	if _, err := p.Parse([]byte(`[]`)); !errors.Is(err, elib.ErrOutOfMemory) {
		t.Errorf("Parse after failure: got %v, want %v", err, elib.ErrOutOfMemory)
	}
	if err := p.End(); !errors.Is(err, elib.ErrOutOfMemory) {
		t.Errorf("End after failure: got %v, want %v", err, elib.ErrOutOfMemory)
	}

	// Begin clears the failure; the limit persists.
	if err := parseString(t, p, `["abcd"]`); err != nil {
		t.Errorf("End: unexpected error: %v", err)
	}
}

func TestArguments(t *testing.T) {
	var buf bytes.Buffer
	p := json.NewParser(new(testHandler))
	if _, err := p.Parse([]byte("{}")); !errors.Is(err, elib.ErrArgument) {
		t.Errorf("Parse before Begin: got %v, want %v", err, elib.ErrArgument)
	}
	if err := p.End(); !errors.Is(err, elib.ErrArgument) {
		t.Errorf("End before Begin: got %v, want %v", err, elib.ErrArgument)
	}
	if err := p.Begin(nil); !errors.Is(err, elib.ErrArgument) {
		t.Errorf("Begin(nil): got %v, want %v", err, elib.ErrArgument)
	}
	if err := json.NewParser(nil).Begin(&buf); !errors.Is(err, elib.ErrArgument) {
		t.Errorf("Begin with nil handler: got %v, want %v", err, elib.ErrArgument)
	}

	// A parser can be reused after Close.
	if err := parseString(t, p, `[1]`); err != nil {
		t.Errorf("End: %v", err)
	}
	p.Close()
	if _, err := p.Parse([]byte("{}")); !errors.Is(err, elib.ErrArgument) {
		t.Errorf("Parse after Close: got %v, want %v", err, elib.ErrArgument)
	}
	if err := parseString(t, p, `[2]`); err != nil {
		t.Errorf("End after reuse: %v", err)
	}
}

func TestEventOffsets(t *testing.T) {
	var got []string
	p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
		got = append(got, e.String())
		return elib.Continue
	}))
	var buf bytes.Buffer
	p.Begin(&buf)
	p.Parse([]byte(`{"a": [10, "x"]}`))
	if err := p.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	want := []string{
		`ObjectBegin@0`,
		`KeyName("a")@1`,
		`ArrayBegin@6`,
		`ValueData("10")@7`,
		`ValueString("x")@11`,
		`ArrayEnd@14`,
		`ObjectEnd@15`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Events (-want, +got):\n%s", diff)
	}
}

func TestQuoteUnquote(t *testing.T) {
	for _, s := range []string{"", "plain", "tab\there", `back\slash "quote"`, "caf\u00e9 \U0001F600"} {
		q := json.Quote(s)
		got, err := json.Unquote(q)
		if err != nil {
			t.Errorf("Unquote(%#q): unexpected error: %v", q, err)
		} else if string(got) != s {
			t.Errorf("Unquote(Quote(%q)): got %q", s, got)
		}
	}
	if _, err := json.Unquote("no quotes"); err == nil {
		t.Error("Unquote without quotes: got nil error")
	}
}
