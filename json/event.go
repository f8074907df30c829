// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package json

import (
	"fmt"

	"github.com/ekarpov/elib-sub000"
)

// Kind is the type of a parse event.
type Kind byte

// Constants defining the valid Kind values.
const (
	ObjectBegin Kind = iota + 1 // open brace "{"
	ObjectEnd                   // close brace "}"
	ArrayBegin                  // open bracket "["
	ArrayEnd                    // close bracket "]"
	KeyName                     // object member key, unquoted
	ValueString                 // string value, unquoted
	ValueData                   // scalar value: number, true, false, null
	Comment                     // line or block comment
	SyntaxError                 // malformed input; see Event.Err
)

var kindStr = [...]string{
	0:           "invalid event",
	ObjectBegin: "ObjectBegin",
	ObjectEnd:   "ObjectEnd",
	ArrayBegin:  "ArrayBegin",
	ArrayEnd:    "ArrayEnd",
	KeyName:     "KeyName",
	ValueString: "ValueString",
	ValueData:   "ValueData",
	Comment:     "Comment",
	SyntaxError: "SyntaxError",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[0]
	}
	return kindStr[k]
}

// HasData reports whether events of kind k carry text.
func (k Kind) HasData() bool { return k >= KeyName && k <= Comment }

// An Event is a single structural event reported by a Parser.
//
// The Data slice is only valid for the duration of the handler call; it
// aliases the parse buffer, which is reused for the next token.
type Event struct {
	Kind   Kind
	Data   []byte            // text of the token, for kinds where HasData is true
	Offset int64             // offset of the first byte of the construct
	Err    *elib.SyntaxError // set for SyntaxError events
}

func (e Event) String() string {
	switch {
	case e.Kind == SyntaxError:
		return fmt.Sprintf("%v(%v)@%d", e.Kind, e.Err, e.Offset)
	case e.Kind.HasData():
		return fmt.Sprintf("%v(%q)@%d", e.Kind, e.Data, e.Offset)
	}
	return fmt.Sprintf("%v@%d", e.Kind, e.Offset)
}

// A Handler handles events from a Parser. The parser calls HandleEvent once
// for each event, in input order, and stops if it returns elib.Stop.
type Handler interface {
	HandleEvent(Event) elib.Action
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(Event) elib.Action

// HandleEvent implements the Handler interface by calling f.
func (f HandlerFunc) HandleEvent(e Event) elib.Action { return f(e) }
