// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package json implements an incremental, event-driven JSON parser.
//
// A Parser consumes input in chunks of any size, one byte at a time, and
// reports the structure of the input to a Handler as a sequence of events.
// The parser can be suspended after any byte: all the state needed to resume
// lives in the Parser, so the caller may deliver a document in one call to
// Parse or in many, and the event sequence is the same either way.
//
// Basic usage:
//
//	p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
//	   fmt.Println(e)
//	   return elib.Continue
//	}))
//	var buf bytes.Buffer
//	if err := p.Begin(&buf); err != nil {
//	   log.Fatalf("Begin: %v", err)
//	}
//	for chunk := range chunks {
//	   if _, err := p.Parse(chunk); err != nil {
//	      log.Fatalf("Parse: %v", err)
//	   }
//	}
//	if err := p.End(); err != nil {
//	   log.Fatalf("End: %v", err)
//	}
//
// Malformed input is reported to the handler as a SyntaxError event. If the
// handler returns elib.Continue the parser recovers and keeps scanning.
package json

import (
	"bytes"
	"fmt"

	"github.com/ekarpov/elib-sub000"
	"github.com/ekarpov/elib-sub000/internal/entity"
	"github.com/ekarpov/elib-sub000/internal/escape"
	"github.com/ekarpov/elib-sub000/internal/fsm"
)

type state uint8

const (
	stateBegin        state = iota // between top-level values
	stateObject                    // inside an object, between members
	stateArray                     // inside an array, between values
	stateKey                       // inside a quoted key
	stateValue                     // after a key: a colon and a value
	stateValueString               // inside a quoted string value
	stateValueScalar               // inside a number or constant
	stateArrayValue                // at the first byte of an unkeyed value
	stateEscape                    // decoding a backslash escape
	stateEntity                    // decoding a character reference
	stateCommentStart              // after "/"
	stateLineComment               // after "//"
	stateBlockComment              // after "/*"
)

var stateStr = [...]string{
	stateBegin:        "begin",
	stateObject:       "object",
	stateArray:        "array",
	stateKey:          "key",
	stateValue:        "value",
	stateValueString:  "value-string",
	stateValueScalar:  "value-scalar",
	stateArrayValue:   "array-value",
	stateEscape:       "escape",
	stateEntity:       "entity",
	stateCommentStart: "comment-start",
	stateLineComment:  "line-comment",
	stateBlockComment: "block-comment",
}

func (s state) String() string {
	if int(s) >= len(stateStr) {
		return fmt.Sprintf("state(%d)", s)
	}
	return stateStr[s]
}

// handlers maps each state to the method that handles a byte in that state.
var handlers = [...]func(*Parser, byte) fsm.Step{
	stateBegin:        (*Parser).begin,
	stateObject:       (*Parser).object,
	stateArray:        (*Parser).array,
	stateKey:          (*Parser).key,
	stateValue:        (*Parser).value,
	stateValueString:  (*Parser).valueString,
	stateValueScalar:  (*Parser).valueScalar,
	stateArrayValue:   (*Parser).arrayValue,
	stateEscape:       (*Parser).embedded,
	stateEntity:       (*Parser).embedded,
	stateCommentStart: (*Parser).commentStart,
	stateLineComment:  (*Parser).lineComment,
	stateBlockComment: (*Parser).blockComment,
}

// sep records what the current container has seen since its last value.
type sep uint8

const (
	sepNone  sep = iota // nothing: the container is empty
	sepValue            // a complete value or member
	sepComma            // a comma following a value
)

// A Parser is an incremental JSON parser. Create one with NewParser and call
// Begin before each document.
//
// A Parser is not safe for concurrent use, but separate parsers share no
// state.
type Parser struct {
	h     Handler
	m     fsm.Machine[state]
	hooks fsm.Hooks
	esc   escape.Decoder
	ent   entity.Decoder

	// Options, preserved across documents.
	decode   bool
	comments bool
	tcomma   bool

	began bool
	sep   sep
	colon bool        // a colon has followed the current key
	mark  fsm.Counter // start of the current token
}

// NewParser constructs a Parser that delivers events to h. Escape sequences
// in strings are decoded by default.
func NewParser(h Handler) *Parser {
	p := &Parser{h: h, decode: true}
	p.hooks = fsm.Hooks{
		Dispatch: p.dispatch,
		SubDone:  p.subDone,
		Report: func(e *elib.SyntaxError) elib.Action {
			return p.h.HandleEvent(Event{Kind: SyntaxError, Offset: e.Offset, Err: e})
		},
	}
	return p
}

// DecodeEscapes configures whether backslash escapes and character
// references in strings are decoded (true) or passed through as written
// (false). The default is true.
func (p *Parser) DecodeEscapes(ok bool) { p.decode = ok }

// AllowComments configures the parser to report (true) or reject (false)
// comments. Comments are a non-standard extension of JSON.  If enabled, C++
// style block comments (/* ... */) and line comments (// ...) are reported as
// Comment events, including their delimiters.
func (p *Parser) AllowComments(ok bool) { p.comments = ok }

// AllowTrailingCommas configures the parser to allow (true) or reject (false)
// trailing commas in objects and arrays.
func (p *Parser) AllowTrailingCommas(ok bool) { p.tcomma = ok }

// SetMaxTokenSize limits the size of a single buffered token to n bytes. If a
// token exceeds the limit, parsing fails with elib.ErrOutOfMemory. A value
// n <= 0 means no limit.
func (p *Parser) SetMaxTokenSize(n int) { p.m.MaxToken = n }

// Depth reports the number of constructs currently open.
func (p *Parser) Depth() int { return p.m.Depth() }

// Begin prepares p to parse a new document, using buf to accumulate tokens.
// Options set on p are preserved. The buffer is borrowed until the next call
// to Begin or Close.
func (p *Parser) Begin(buf *bytes.Buffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil parse buffer", elib.ErrArgument)
	} else if p.h == nil {
		return fmt.Errorf("%w: nil handler", elib.ErrArgument)
	}
	p.m.Reset(stateBegin, buf)
	p.began = true
	p.sep = sepNone
	p.colon = false
	p.mark = fsm.Counter{}
	return nil
}

// Parse consumes data and reports the number of bytes consumed. It returns
// early with elib.ErrStopped if the handler returned elib.Stop; in that case
// the caller may resume by passing the unconsumed remainder of data.
//
// The contents of data are not retained after Parse returns.
func (p *Parser) Parse(data []byte) (int, error) {
	if !p.began {
		return 0, fmt.Errorf("%w: parser not started", elib.ErrArgument)
	}
	return p.m.Run(data, &p.hooks)
}

// Write implements io.Writer by calling Parse.
func (p *Parser) Write(data []byte) (int, error) { return p.Parse(data) }

// End reports whether the input consumed since Begin is a complete document.
// A top-level number or constant still pending is reported first. If any
// construct remains open, End reports elib.ErrIncomplete.
func (p *Parser) End() error {
	if !p.began {
		return fmt.Errorf("%w: parser not started", elib.ErrArgument)
	} else if err := p.m.Err(); err != nil {
		return err
	}
	if top, ok := p.m.Top(); ok && top == stateBegin && p.m.Depth() == 1 {
		switch p.m.State {
		case stateValueScalar:
			p.endScalar()
		case stateLineComment:
			p.endComment()
		}
		p.m.ReportPending(&p.hooks)
	}
	if !p.m.Complete() {
		return fmt.Errorf("%w: in %v at depth %d", elib.ErrIncomplete, p.m.State, p.m.Depth())
	}
	return nil
}

// Close releases the storage held by p. The parser may be reused after
// another call to Begin.
func (p *Parser) Close() error {
	p.m.Free()
	p.began = false
	return nil
}

func (p *Parser) dispatch(b byte) fsm.Step {
	if int(p.m.State) >= len(handlers) {
		p.m.Fatal(fmt.Errorf("%w: unknown state %v", elib.ErrInternal, p.m.State))
		return fsm.Next
	}
	return handlers[p.m.State](p, b)
}

func (p *Parser) emit(kind Kind, data []byte, offset int64) {
	if p.h.HandleEvent(Event{Kind: kind, Data: data, Offset: offset}) == elib.Stop {
		p.m.Stop()
	}
}

// emitToken reports the contents of the parse buffer and clears it.
func (p *Parser) emitToken(kind Kind) {
	p.emit(kind, p.m.Buf.Bytes(), p.mark.Offset)
	p.m.Buf.Reset()
}

func (p *Parser) fail(msg string, args ...any) { p.m.Fail(p.m.Pos, msg, args...) }

func (p *Parser) unexpected(b byte, want string) {
	p.fail("expected %s, got %q", want, []byte{b})
}

func (p *Parser) begin(b byte) fsm.Step {
	switch c := classOf(b); {
	case c == classSpace:
		return fsm.Next
	case c == classSlash:
		return p.startComment()
	case startsValue(c):
		p.m.Enter(stateArrayValue)
		return fsm.Again
	}
	p.unexpected(b, "value")
	return fsm.Next
}

func (p *Parser) object(b byte) fsm.Step {
	switch classOf(b) {
	case classSpace:
		return fsm.Next
	case classSlash:
		return p.startComment()
	case classQuote:
		if p.sep == sepValue {
			p.fail("missing comma before key")
			p.sep = sepComma
			return fsm.Again
		}
		p.mark = p.m.Pos
		p.m.Enter(stateKey)
		return fsm.Next
	case classComma:
		return p.comma()
	case classRBrace:
		return p.closeContainer(ObjectEnd)
	}
	p.unexpected(b, "key or end of object")
	return fsm.Next
}

func (p *Parser) array(b byte) fsm.Step {
	switch c := classOf(b); {
	case c == classSpace:
		return fsm.Next
	case c == classSlash:
		return p.startComment()
	case c == classComma:
		return p.comma()
	case c == classRSquare:
		return p.closeContainer(ArrayEnd)
	case startsValue(c):
		if p.sep == sepValue {
			p.fail("missing comma before value")
			p.sep = sepComma
			return fsm.Again
		}
		p.m.Enter(stateArrayValue)
		return fsm.Again
	}
	p.unexpected(b, "value or end of array")
	return fsm.Next
}

func (p *Parser) comma() fsm.Step {
	if p.sep != sepValue {
		p.fail("unexpected comma")
	} else {
		p.sep = sepComma
	}
	return fsm.Next
}

func (p *Parser) closeContainer(kind Kind) fsm.Step {
	if p.sep == sepComma && !p.tcomma {
		p.fail("trailing comma")
		p.sep = sepValue
		return fsm.Again
	}
	p.emit(kind, nil, p.m.Pos.Offset)
	p.m.Return()
	p.sep = sepValue
	return fsm.Next
}

func (p *Parser) key(b byte) fsm.Step { return p.stringByte(b, KeyName) }

func (p *Parser) valueString(b byte) fsm.Step { return p.stringByte(b, ValueString) }

// stringByte handles a byte inside a quoted key or string value.
func (p *Parser) stringByte(b byte, kind Kind) fsm.Step {
	switch {
	case b == '"':
		p.emitToken(kind)
		if kind == KeyName {
			p.m.State = stateValue
			p.colon = false
		} else {
			p.m.Return()
			p.sep = sepValue
		}
	case b == '\\':
		p.m.Enter(stateEscape)
		p.m.Embed(&p.esc)
	case b == '&' && p.decode:
		p.m.Enter(stateEntity)
		p.m.Embed(&p.ent)
	case b < ' ':
		p.fail("unescaped control %q in string", []byte{b})
	default:
		p.m.Append(b)
	}
	return fsm.Next
}

// subDone completes an escape or entity, appending the decoded text or the
// text as written to the current string.
func (p *Parser) subDone(err error) {
	var sub fsm.Submachine = &p.esc
	if p.m.State == stateEntity {
		sub = &p.ent
	}
	if err != nil && p.m.State == stateEscape {
		p.m.FailErr(p.m.Pos, err, "invalid escape sequence %q", sub.Input())
	}
	if err == nil && p.decode {
		p.m.AppendBytes(sub.Output())
	} else {
		p.m.AppendBytes(sub.Input())
	}
	p.m.Return()
}

// embedded handles a byte in a state owned by a sub-machine. Run never
// dispatches these states, so reaching here is a bug.
func (p *Parser) embedded(b byte) fsm.Step {
	p.m.Fatal(fmt.Errorf("%w: dispatch in %v without decoder", elib.ErrInternal, p.m.State))
	return fsm.Next
}

// value handles the colon and the value following a key.
func (p *Parser) value(b byte) fsm.Step {
	switch c := classOf(b); {
	case c == classSpace:
		return fsm.Next
	case c == classSlash:
		return p.startComment()
	case c == classColon && !p.colon:
		p.colon = true
		return fsm.Next
	case startsValue(c) && !p.colon:
		p.fail("missing colon after key")
		p.colon = true
		return fsm.Again
	case startsValue(c):
		return p.startValue(c)
	}

	// No value follows the key; let the object handle b.
	p.fail("missing value after key")
	p.m.Return()
	p.sep = sepValue
	return fsm.Again
}

// arrayValue handles the first byte of a value in an array or at the top
// level. It is only entered with a byte that starts a value.
func (p *Parser) arrayValue(b byte) fsm.Step {
	c := classOf(b)
	if !startsValue(c) {
		p.m.Fatal(fmt.Errorf("%w: %q does not start a value", elib.ErrInternal, []byte{b}))
		return fsm.Next
	}
	return p.startValue(c)
}

// startValue replaces the current state with the state for a value that
// begins with a byte of class c. The enclosing construct is already on the
// stack.
func (p *Parser) startValue(c class) fsm.Step {
	p.mark = p.m.Pos
	switch c {
	case classLBrace:
		p.m.State = stateObject
		p.sep = sepNone
		p.emit(ObjectBegin, nil, p.mark.Offset)
	case classLSquare:
		p.m.State = stateArray
		p.sep = sepNone
		p.emit(ArrayBegin, nil, p.mark.Offset)
	case classQuote:
		p.m.State = stateValueString
	default:
		p.m.State = stateValueScalar
		return fsm.Again
	}
	return fsm.Next
}

func (p *Parser) valueScalar(b byte) fsm.Step {
	if classOf(b) == classLiteral {
		p.m.Append(b)
		return fsm.Next
	}
	p.endScalar()
	return fsm.Again // b belongs to the enclosing construct
}

func (p *Parser) endScalar() {
	if lit := p.m.Buf.Bytes(); isLiteral(lit) {
		p.emitToken(ValueData)
	} else {
		p.m.Fail(p.mark, "invalid value %q", lit)
		p.m.Buf.Reset()
	}
	p.m.Return()
	p.sep = sepValue
}

func (p *Parser) startComment() fsm.Step {
	if !p.comments {
		p.fail("comments are not enabled")
		return fsm.Next
	}
	p.mark = p.m.Pos
	p.m.Enter(stateCommentStart)
	p.m.Append('/')
	return fsm.Next
}

func (p *Parser) commentStart(b byte) fsm.Step {
	switch b {
	case '/':
		p.m.State = stateLineComment
	case '*':
		p.m.State = stateBlockComment
	default:
		p.m.Fail(p.mark, "invalid comment")
		p.m.Buf.Reset()
		p.m.Return()
		return fsm.Again
	}
	p.m.Append(b)
	return fsm.Next
}

func (p *Parser) lineComment(b byte) fsm.Step {
	if p.m.Append(b) && b == '\n' {
		p.endComment()
	}
	return fsm.Next
}

func (p *Parser) blockComment(b byte) fsm.Step {
	// Match the terminator only after the opening "/*", so "/*/" stays open.
	if p.m.Append(b) && fsm.MatchKeyword(p.m.Buf.Bytes()[2:], "*/") == fsm.Matching {
		p.endComment()
	}
	return fsm.Next
}

func (p *Parser) endComment() {
	p.emitToken(Comment)
	p.m.Return()
}
