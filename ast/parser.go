// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ekarpov/elib-sub000"
	"github.com/ekarpov/elib-sub000/json"
)

// chunkSize is the number of bytes read from the input for each call to the
// parser.
const chunkSize = 4096

// Options are settings for the parser used to construct syntax trees. A zero
// value parses standard JSON with no limit on token size.
type Options struct {
	AllowComments       bool // skip comments in the input
	AllowTrailingCommas bool // permit a comma after the last element
	MaxTokenSize        int  // if positive, the maximum size of a token
}

// Parse parses and returns the JSON values from r with default options.
// In case of error, any complete values already parsed are returned along
// with the error.  A syntax error is reported as a *elib.SyntaxError.
func Parse(r io.Reader) ([]Value, error) { return Options{}.Parse(r) }

// Parse parses and returns the JSON values from r using the settings in o.
func (o Options) Parse(r io.Reader) ([]Value, error) {
	h := new(parseHandler)
	p := json.NewParser(h)
	p.AllowComments(o.AllowComments)
	p.AllowTrailingCommas(o.AllowTrailingCommas)
	p.SetMaxTokenSize(o.MaxTokenSize)
	defer p.Close()

	var buf bytes.Buffer
	if err := p.Begin(&buf); err != nil {
		return nil, err
	}
	chunk := make([]byte, chunkSize)
	for {
		nr, rerr := r.Read(chunk)
		if nr > 0 {
			if _, err := p.Parse(chunk[:nr]); err != nil {
				return h.values, h.failure(err)
			}
		}
		if rerr == io.EOF {
			break
		} else if rerr != nil {
			return h.values, rerr
		}
	}
	err := p.End()
	if h.err != nil {
		return h.values, h.err
	} else if err != nil {
		return h.values, err
	}
	return h.values, nil
}

// ParseBytes parses and returns the JSON values from data.
func ParseBytes(data []byte) ([]Value, error) { return Parse(bytes.NewReader(data)) }

// ParseSingle parses and returns a single JSON value from r. If r contains
// data after the first value, apart from whitespace, ParseSingle reports an
// error.
func ParseSingle(r io.Reader) (Value, error) {
	vs, err := Parse(r)
	if err != nil {
		return nil, err
	} else if len(vs) != 1 {
		return nil, fmt.Errorf("found %d values, want 1", len(vs))
	}
	return vs[0], nil
}

// A parseHandler implements the json.Handler interface to construct abstract
// syntax trees for JSON values.
type parseHandler struct {
	stk    []Value // *Object, *Array, or *Member under construction
	values []Value // complete top-level values
	err    error   // the first syntax error, if any
}

// failure maps an error from the parser to the error reported by Parse.
func (h *parseHandler) failure(err error) error {
	if errors.Is(err, elib.ErrStopped) && h.err != nil {
		return h.err
	}
	return err
}

func (h *parseHandler) top() Value { return h.stk[len(h.stk)-1] }

func (h *parseHandler) pop() Value {
	last := h.top()
	h.stk = h.stk[:len(h.stk)-1]
	return last
}

func (h *parseHandler) push(v Value) { h.stk = append(h.stk, v) }

// reduceValue attaches a completed value v to the construct atop the stack,
// or records it as a top-level value if the stack is empty.
func (h *parseHandler) reduceValue(v Value) {
	if len(h.stk) == 0 {
		h.values = append(h.values, v)
		return
	}
	switch prev := h.top().(type) {
	case *Member:
		prev.Value = v
		h.pop()
	case *Array:
		*prev = append(*prev, v)
	}
}

// HandleEvent implements the json.Handler interface.
func (h *parseHandler) HandleEvent(e json.Event) elib.Action {
	switch e.Kind {
	case json.ObjectBegin:
		h.push(new(Object))
	case json.ArrayBegin:
		h.push(new(Array))
	case json.ObjectEnd:
		h.reduceValue(*h.pop().(*Object))
	case json.ArrayEnd:
		h.reduceValue(*h.pop().(*Array))
	case json.KeyName:
		// The object this member belongs to is atop the stack. Add the member
		// to its collection eagerly, so that when the value arrives only the
		// member needs to be reduced.
		mem := &Member{Key: string(e.Data)}
		obj := h.top().(*Object)
		*obj = append(*obj, mem)
		h.push(mem)
	case json.ValueString:
		h.reduceValue(String(e.Data))
	case json.ValueData:
		switch string(e.Data) {
		case "true", "false":
			h.reduceValue(Bool(e.Data[0] == 't'))
		case "null":
			h.reduceValue(Null{})
		default:
			h.reduceValue(Number(e.Data))
		}
	case json.Comment:
		// Comments are not represented in the tree.
	case json.SyntaxError:
		h.err = e.Err
		return elib.Stop
	}
	return elib.Continue
}
