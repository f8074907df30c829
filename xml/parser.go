// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package xml implements an incremental, event-driven XML parser.
//
// A Parser consumes input in chunks of any size and reports tags, attributes,
// character data, comments, CDATA sections, document type declarations and
// processing instructions to a Handler. As with the JSON parser, the input
// may be split anywhere without changing the events reported.
//
// The parser checks that documents are well-formed, but it does not validate
// them against a DTD. Character data consisting only of whitespace is not
// reported. Entity references and backslash escapes are passed through
// unchanged unless DecodeEscapes is enabled.
package xml

import (
	"bytes"
	"fmt"

	"github.com/ekarpov/elib-sub000"
	"github.com/ekarpov/elib-sub000/internal/entity"
	"github.com/ekarpov/elib-sub000/internal/escape"
	"github.com/ekarpov/elib-sub000/internal/fsm"
	"go4.org/mem"
)

type state uint8

const (
	stateTagScan         state = iota // outside the root element
	stateTagOpen                      // after "<"
	stateTagExtra                     // after "<!"
	stateTagName                      // in a start tag name
	stateTag                          // in a start tag, between attributes
	stateTagClose                     // after "/" in a start tag
	stateTagEnd                       // in an end tag, after "</"
	stateContent                      // in character data
	stateComment                      // after "<!--"
	stateAttributeName                // in an attribute name
	stateAttribute                    // after an attribute name
	stateAttributeValue               // after "="
	stateAttributeString              // in a quoted attribute value
	statePIBegin                      // in a processing instruction target
	statePIContent                    // in a processing instruction body
	stateCDATA                        // after "<![CDATA["
	stateDTD                          // after "<!DOCTYPE"
	stateEscape                       // decoding a backslash escape
	stateEntity                       // decoding a character reference
)

var stateStr = [...]string{
	stateTagScan:         "tag-scan",
	stateTagOpen:         "tag-open",
	stateTagExtra:        "tag-extra",
	stateTagName:         "tag-name",
	stateTag:             "tag",
	stateTagClose:        "tag-close",
	stateTagEnd:          "tag-end",
	stateContent:         "content",
	stateComment:         "comment",
	stateAttributeName:   "attribute-name",
	stateAttribute:       "attribute",
	stateAttributeValue:  "attribute-value",
	stateAttributeString: "attribute-string",
	statePIBegin:         "pi-begin",
	statePIContent:       "pi-content",
	stateCDATA:           "cdata",
	stateDTD:             "dtd",
	stateEscape:          "escape",
	stateEntity:          "entity",
}

func (s state) String() string {
	if int(s) >= len(stateStr) {
		return fmt.Sprintf("state(%d)", s)
	}
	return stateStr[s]
}

var handlers = [...]func(*Parser, byte) fsm.Step{
	stateTagScan:         (*Parser).tagScan,
	stateTagOpen:         (*Parser).tagOpen,
	stateTagExtra:        (*Parser).tagExtra,
	stateTagName:         (*Parser).tagName,
	stateTag:             (*Parser).tag,
	stateTagClose:        (*Parser).tagClose,
	stateTagEnd:          (*Parser).tagEnd,
	stateContent:         (*Parser).content,
	stateComment:         (*Parser).comment,
	stateAttributeName:   (*Parser).attributeName,
	stateAttribute:       (*Parser).attribute,
	stateAttributeValue:  (*Parser).attributeValue,
	stateAttributeString: (*Parser).attributeString,
	statePIBegin:         (*Parser).piBegin,
	statePIContent:       (*Parser).piContent,
	stateCDATA:           (*Parser).cdata,
	stateDTD:             (*Parser).dtd,
	stateEscape:          (*Parser).embedded,
	stateEntity:          (*Parser).embedded,
}

// A tagRef locates the name of an open element in the name buffer.
type tagRef struct{ off, n int }

// A Parser is an incremental XML parser. Create one with NewParser and call
// Begin before each document.
//
// Each open element costs one entry on the state stack and one on the tag
// stack, whose names are kept in a buffer separate from the parse buffer so
// they remain available while the element's content is parsed.
type Parser struct {
	h     Handler
	m     fsm.Machine[state]
	hooks fsm.Hooks
	esc   escape.Decoder
	ent   entity.Decoder

	decode bool

	began   bool
	names   []byte            // names of the open elements, back to back
	nameOff int               // start of the name being read
	tags    fsm.Stack[tagRef] // open elements, innermost on top

	mark      fsm.Counter // the "<" of the current markup
	textMark  fsm.Counter // start of the current text, attribute name or value
	quote     byte        // the open quotation mark in an attribute or DTD
	depth     int         // bracket nesting in a DTD
	bogus     bool        // the DTD state is skipping an unknown declaration
	decl      bool        // the processing instruction is an XML declaration
	mismatch  bool        // a mismatched end tag has been reported
	endSpace  bool        // whitespace followed the name in an end tag
	junk      bool        // text outside the root element has been reported
	commentAt int         // start of the comment text in the parse buffer
}

// NewParser constructs a Parser that delivers events to h. Escape sequences
// and entities are not decoded by default.
func NewParser(h Handler) *Parser {
	p := &Parser{h: h}
	p.hooks = fsm.Hooks{
		Dispatch: p.dispatch,
		SubDone:  p.subDone,
		Report: func(e *elib.SyntaxError) elib.Action {
			return p.h.HandleEvent(Event{Kind: SyntaxError, Offset: e.Offset, Err: e})
		},
	}
	return p
}

// DecodeEscapes configures whether character references and backslash
// escapes in content and attribute values are decoded (true) or passed
// through as written (false). The default is false.
func (p *Parser) DecodeEscapes(ok bool) { p.decode = ok }

// SetMaxTokenSize limits the size of a single buffered token, or of a single
// element name, to n bytes. If the limit is exceeded, parsing fails with
// elib.ErrOutOfMemory. A value n <= 0 means no limit.
func (p *Parser) SetMaxTokenSize(n int) { p.m.MaxToken = n }

// Depth reports the number of open elements.
func (p *Parser) Depth() int { return p.tags.Len() }

// CurrentOpenTag returns the name of the innermost open element, or nil if no
// element is open. The slice is valid until the next call to Parse.
func (p *Parser) CurrentOpenTag() []byte {
	ref, ok := p.tags.Top()
	if !ok {
		return nil
	}
	return p.names[ref.off : ref.off+ref.n]
}

// Begin prepares p to parse a new document, using buf to accumulate tokens.
// Options set on p are preserved.
func (p *Parser) Begin(buf *bytes.Buffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil parse buffer", elib.ErrArgument)
	} else if p.h == nil {
		return fmt.Errorf("%w: nil handler", elib.ErrArgument)
	}
	p.m.Reset(stateTagScan, buf)
	p.tags.Reset()
	p.names = p.names[:0]
	p.began = true
	p.mismatch = false
	p.junk = false
	return nil
}

// Parse consumes data and reports the number of bytes consumed. It returns
// early with elib.ErrStopped if the handler returned elib.Stop; in that case
// the caller may resume by passing the unconsumed remainder of data.
func (p *Parser) Parse(data []byte) (int, error) {
	if !p.began {
		return 0, fmt.Errorf("%w: parser not started", elib.ErrArgument)
	}
	return p.m.Run(data, &p.hooks)
}

// Write implements io.Writer by calling Parse.
func (p *Parser) Write(data []byte) (int, error) { return p.Parse(data) }

// End reports whether the input consumed since Begin is a complete document:
// every element closed and no markup left unfinished. Otherwise it reports
// elib.ErrIncomplete.
func (p *Parser) End() error {
	if !p.began {
		return fmt.Errorf("%w: parser not started", elib.ErrArgument)
	} else if err := p.m.Err(); err != nil {
		return err
	}
	if !p.m.Complete() || p.tags.Len() != 0 {
		if name := p.CurrentOpenTag(); name != nil {
			return fmt.Errorf("%w: in %v, element <%s> is open", elib.ErrIncomplete, p.m.State, name)
		}
		return fmt.Errorf("%w: in %v", elib.ErrIncomplete, p.m.State)
	}
	return nil
}

// Close releases the storage held by p. The parser may be reused after
// another call to Begin.
func (p *Parser) Close() error {
	p.m.Free()
	p.tags.Free()
	p.names = nil
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

func (p *Parser) emit(kind Kind, data []byte, at fsm.Counter) {
	if p.h.HandleEvent(Event{Kind: kind, Data: data, Offset: at.Offset}) == elib.Stop {
		p.m.Stop()
	}
}

func (p *Parser) fail(msg string, args ...any) { p.m.Fail(p.m.Pos, msg, args...) }

// openMarkup begins a construct at "<", saving the current state to return
// to when the construct is finished.
func (p *Parser) openMarkup() fsm.Step {
	p.mark = p.m.Pos
	p.m.Enter(stateTagOpen)
	return fsm.Next
}

func (p *Parser) tagScan(b byte) fsm.Step {
	switch classOf(b) {
	case classSpace:
		return fsm.Next
	case classLT:
		p.junk = false
		return p.openMarkup()
	}
	if !p.junk {
		p.fail("text outside the root element")
		p.junk = true
	}
	return fsm.Next
}

func (p *Parser) tagOpen(b byte) fsm.Step {
	switch c := classOf(b); c {
	case classSlash:
		p.m.State = stateTagEnd
		p.endSpace = false
		return fsm.Next
	case classBang:
		p.m.State = stateTagExtra
		return fsm.Next
	case classQuest:
		p.m.State = statePIBegin
		return fsm.Next
	case classNameStart:
		p.m.State = stateTagName
		p.nameOff = len(p.names)
		return fsm.Again
	}
	p.m.Fail(p.mark, "invalid markup %q", []byte{'<', b})
	p.m.Return()
	return fsm.Again
}

// tagExtra identifies the markup following "<!".
func (p *Parser) tagExtra(b byte) fsm.Step {
	if !p.m.Append(b) {
		return fsm.Next
	}
	buf := p.m.Buf.Bytes()
	var pending bool
	for _, kw := range [...]string{"--", "[CDATA[", "DOCTYPE"} {
		switch fsm.MatchPrefix(buf, kw) {
		case fsm.Matching:
			p.m.Buf.Reset()
			p.startExtra(kw)
			return fsm.Next
		case fsm.Continuing:
			pending = true
		}
	}
	if pending {
		return fsm.Next
	}

	// Skip the unknown declaration as if it were a DTD, without reporting it.
	p.m.Fail(p.mark, "unknown markup declaration %q", append([]byte("<!"), buf...))
	p.m.Buf.Reset()
	p.m.State = stateDTD
	p.depth, p.quote, p.bogus = 1, 0, true
	return fsm.Again
}

func (p *Parser) startExtra(kw string) {
	switch kw {
	case "--":
		p.m.State = stateComment
		p.commentAt = 0
	case "[CDATA[":
		p.m.State = stateCDATA
	default:
		p.m.State = stateDTD
		p.depth, p.quote, p.bogus = 1, 0, false
	}
}

func (p *Parser) tagName(b byte) fsm.Step {
	if isName(b) {
		if n := p.m.MaxToken; n > 0 && len(p.names)-p.nameOff >= n {
			p.m.Fatal(fmt.Errorf("%w: element name exceeds %d bytes", elib.ErrOutOfMemory, n))
			return fsm.Next
		}
		p.names = append(p.names, b)
		return fsm.Next
	}
	ref := tagRef{off: p.nameOff, n: len(p.names) - p.nameOff}
	p.tags.Push(ref)
	p.emit(TagBegin, p.names[ref.off:], p.mark)
	p.m.State = stateTag
	return fsm.Again
}

// tag handles the inside of a start tag after its name.
func (p *Parser) tag(b byte) fsm.Step {
	switch classOf(b) {
	case classSpace:
		return fsm.Next
	case classGT:
		p.m.State = stateContent // the element is now open
		return fsm.Next
	case classSlash:
		p.m.State = stateTagClose
		return fsm.Next
	case classNameStart:
		p.textMark = p.m.Pos
		p.m.Enter(stateAttributeName)
		return fsm.Again
	}
	p.fail("unexpected %q in tag <%s>", []byte{b}, p.CurrentOpenTag())
	return fsm.Next
}

// tagClose handles the end of an empty-element tag, after "/".
func (p *Parser) tagClose(b byte) fsm.Step {
	if classOf(b) != classGT {
		p.fail("expected %q after %q, got %q", ">", "/", []byte{b})
		p.m.State = stateTag
		return fsm.Again
	}
	p.popTag()
	p.m.Return()
	return fsm.Next
}

// popTag removes the innermost open element and reports its end.
func (p *Parser) popTag() {
	ref, err := p.tags.Pop()
	if err != nil {
		p.m.Fatal(err)
		return
	}
	p.emit(TagEnd, p.names[ref.off:ref.off+ref.n], p.mark)
	p.names = p.names[:ref.off]
}

// tagEnd handles the name of an end tag, after "</".
func (p *Parser) tagEnd(b byte) fsm.Step {
	switch c := classOf(b); {
	case c == classGT:
		return p.closeElement()
	case c == classSpace:
		p.endSpace = p.m.Buf.Len() != 0
		return fsm.Next
	case isName(b) && !p.endSpace:
		p.m.Append(b)
		return fsm.Next
	}
	p.fail("unexpected %q in end tag", []byte{b})
	return fsm.Next
}

// closeElement matches an end tag to the innermost open element. A name
// mismatch is reported before the element is closed; the element is closed
// regardless.
func (p *Parser) closeElement() fsm.Step {
	name := p.m.Buf.Bytes()
	if p.tags.Len() == 0 {
		p.m.Fail(p.mark, "end tag </%s> without open element", name)
		p.m.Buf.Reset()
		p.m.Return()
		return fsm.Next
	}
	open := p.CurrentOpenTag()
	if len(name) != 0 && !mem.B(name).Equal(mem.B(open)) && !p.mismatch {
		p.m.Fail(p.mark, "end tag </%s> does not match <%s>", name, open)
		p.mismatch = true
		return fsm.Again // close after the error is reported
	}
	p.mismatch = false
	p.m.Buf.Reset()
	p.popTag()
	p.m.Return() // discard the state saved at "<"
	p.m.Return() // leave the element's content
	return fsm.Next
}

// content handles character data inside an element.
func (p *Parser) content(b byte) fsm.Step {
	switch c := classOf(b); {
	case c == classLT:
		p.flushText()
		return p.openMarkup()
	case p.decode && (c == classAmp || c == classBackslash):
		p.startText()
		p.embed(c)
	default:
		p.startText()
		p.m.Append(b)
	}
	return fsm.Next
}

func (p *Parser) startText() {
	if p.m.Buf.Len() == 0 {
		p.textMark = p.m.Pos
	}
}

// flushText reports the pending character data unless it is blank.
func (p *Parser) flushText() {
	if text := p.m.Buf.Bytes(); !isBlank(text) {
		p.emit(TagContent, text, p.textMark)
	}
	p.m.Buf.Reset()
}

func (p *Parser) embed(c class) {
	if c == classAmp {
		p.m.Enter(stateEntity)
		p.m.Embed(&p.ent)
	} else {
		p.m.Enter(stateEscape)
		p.m.Embed(&p.esc)
	}
}

func (p *Parser) subDone(err error) {
	var sub fsm.Submachine = &p.esc
	what := "escape sequence"
	if p.m.State == stateEntity {
		sub, what = &p.ent, "character reference"
	}
	if err != nil {
		p.m.FailErr(p.m.Pos, err, "invalid %s %q", what, sub.Input())
		p.m.AppendBytes(sub.Input())
	} else {
		p.m.AppendBytes(sub.Output())
	}
	p.m.Return()
}

func (p *Parser) embedded(b byte) fsm.Step {
	p.m.Fatal(fmt.Errorf("%w: dispatch in %v without decoder", elib.ErrInternal, p.m.State))
	return fsm.Next
}

// comment handles the text of a comment. Inside a DTD the comment remains
// part of the DTD text and is not reported separately.
func (p *Parser) comment(b byte) fsm.Step {
	if !p.m.Append(b) {
		return fsm.Next
	}
	buf := p.m.Buf.Bytes()
	if fsm.MatchKeyword(buf[p.commentAt:], "-->") != fsm.Matching {
		return fsm.Next
	}
	if top, _ := p.m.Top(); top != stateDTD {
		p.emit(Comment, buf[:len(buf)-len("-->")], p.mark)
		p.m.Buf.Reset()
	}
	p.m.Return()
	return fsm.Next
}

func (p *Parser) attributeName(b byte) fsm.Step {
	if isName(b) {
		p.m.Append(b)
		return fsm.Next
	}
	p.emit(AttributeName, p.m.Buf.Bytes(), p.textMark)
	p.m.Buf.Reset()
	p.m.State = stateAttribute
	return fsm.Again
}

// attribute expects the "=" following an attribute name.
func (p *Parser) attribute(b byte) fsm.Step {
	switch classOf(b) {
	case classSpace:
		return fsm.Next
	case classEq:
		p.m.State = stateAttributeValue
		return fsm.Next
	}
	p.fail("missing value for attribute")
	p.m.Return()
	return fsm.Again
}

// attributeValue expects the opening quotation mark of a value.
func (p *Parser) attributeValue(b byte) fsm.Step {
	switch classOf(b) {
	case classSpace:
		return fsm.Next
	case classQuote:
		p.quote = b
		p.textMark = p.m.Pos
		p.m.State = stateAttributeString
		return fsm.Next
	}
	p.fail("expected quoted attribute value, got %q", []byte{b})
	p.m.Return()
	return fsm.Again
}

func (p *Parser) attributeString(b byte) fsm.Step {
	switch c := classOf(b); {
	case b == p.quote:
		p.emit(AttributeValue, p.m.Buf.Bytes(), p.textMark)
		p.m.Buf.Reset()
		p.m.Return()
	case p.decode && (c == classAmp || c == classBackslash):
		p.embed(c)
	case c == classLT:
		p.fail("%q in attribute value", "<")
		p.m.Append(b)
	default:
		p.m.Append(b)
	}
	return fsm.Next
}

// piBegin reads the target of a processing instruction, after "<?".
func (p *Parser) piBegin(b byte) fsm.Step {
	if isName(b) {
		p.m.Append(b)
		return fsm.Next
	}
	target := p.m.Buf.Bytes()
	if len(target) == 0 {
		p.m.Fail(p.mark, "missing processing instruction target")
	}
	p.decl = mem.EqualFold(mem.B(target), mem.S("xml"))
	p.m.State = statePIContent
	return fsm.Again
}

func (p *Parser) piContent(b byte) fsm.Step {
	if p.m.Append(b) && fsm.MatchKeyword(p.m.Buf.Bytes(), "?>") == fsm.Matching {
		buf := p.m.Buf.Bytes()
		kind := ProcessingInstruction
		if p.decl {
			kind = Declaration
		}
		p.emit(kind, bytes.TrimRight(buf[:len(buf)-len("?>")], " \t\r\n"), p.mark)
		p.m.Buf.Reset()
		p.m.Return()
	}
	return fsm.Next
}

func (p *Parser) cdata(b byte) fsm.Step {
	if p.m.Append(b) && fsm.MatchKeyword(p.m.Buf.Bytes(), "]]>") == fsm.Matching {
		buf := p.m.Buf.Bytes()
		p.emit(CDATA, buf[:len(buf)-len("]]>")], p.mark)
		p.m.Buf.Reset()
		p.m.Return()
	}
	return fsm.Next
}

// dtd handles a document type declaration, tracking the nesting of markup
// declarations in its internal subset so only the final ">" ends it.
func (p *Parser) dtd(b byte) fsm.Step {
	if p.quote != 0 {
		if b == p.quote {
			p.quote = 0
		}
		p.m.Append(b)
		return fsm.Next
	}
	switch classOf(b) {
	case classQuote:
		p.quote = b
	case classLT:
		p.depth++
	case classGT:
		if p.depth--; p.depth == 0 {
			if !p.bogus {
				p.emit(DTD, bytes.TrimSpace(p.m.Buf.Bytes()), p.mark)
			}
			p.m.Buf.Reset()
			p.m.Return()
			return fsm.Next
		}
	}
	if !p.m.Append(b) {
		return fsm.Next
	}
	if fsm.MatchKeyword(p.m.Buf.Bytes(), "<!--") == fsm.Matching {
		// The comment's closing ">" is consumed by the comment, so do not
		// count its opening "<".
		p.depth--
		p.commentAt = p.m.Buf.Len()
		p.m.Enter(stateComment)
	}
	return fsm.Next
}
