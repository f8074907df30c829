// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package xml

import (
	"fmt"

	"github.com/ekarpov/elib-sub000"
)

// Kind is the type of a parse event.
type Kind byte

// Constants defining the valid Kind values.
const (
	TagBegin              Kind = iota + 1 // start tag; Data is the element name
	TagEnd                                // end of an element; Data is its opening name
	AttributeName                         // attribute name
	AttributeValue                        // attribute value, without quotes
	TagContent                            // character data that is not all whitespace
	Comment                               // comment text, without delimiters
	CDATA                                 // CDATA section text, without delimiters
	DTD                                   // document type declaration, after "<!DOCTYPE"
	Declaration                           // XML declaration, between "<?" and "?>"
	ProcessingInstruction                 // processing instruction, between "<?" and "?>"
	SyntaxError                           // malformed input; see Event.Err
)

var kindStr = [...]string{
	0:                     "invalid event",
	TagBegin:              "TagBegin",
	TagEnd:                "TagEnd",
	AttributeName:         "AttributeName",
	AttributeValue:        "AttributeValue",
	TagContent:            "TagContent",
	Comment:               "Comment",
	CDATA:                 "CDATA",
	DTD:                   "DTD",
	Declaration:           "Declaration",
	ProcessingInstruction: "ProcessingInstruction",
	SyntaxError:           "SyntaxError",
}

func (k Kind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[0]
	}
	return kindStr[k]
}

// An Event is a single event reported by a Parser. Every kind except
// SyntaxError carries text in Data.
//
// The Data slice is only valid for the duration of the handler call.
type Event struct {
	Kind   Kind
	Data   []byte
	Offset int64             // offset of the first byte of the construct
	Err    *elib.SyntaxError // set for SyntaxError events
}

func (e Event) String() string {
	if e.Kind == SyntaxError {
		return fmt.Sprintf("%v(%v)@%d", e.Kind, e.Err, e.Offset)
	}
	return fmt.Sprintf("%v(%q)@%d", e.Kind, e.Data, e.Offset)
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
