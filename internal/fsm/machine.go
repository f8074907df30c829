// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package fsm implements the plumbing shared by the incremental parsers: the
// byte dispatch loop, the explicit state stack, keyword matching, position
// tracking and the embedding of bounded sub-machines.
package fsm

import (
	"bytes"
	"fmt"

	"github.com/ekarpov/elib-sub000"
)

// Step is the result of handling a single input byte.
type Step uint8

const (
	Next  Step = iota // the byte was consumed
	Again             // the byte was not consumed; reprocess it under the new state
)

// maxPushback bounds the number of times a single byte may be pushed back.
// Every pushback must be accompanied by a state change, so a byte that keeps
// being pushed back indicates a broken transition.
const maxPushback = 8

// Result reports the status of a Submachine after a call to Parse.
type Result int

const (
	Continue Result = iota // more input is required
	Ready                  // the sequence is complete
)

func (r Result) String() string {
	if r == Ready {
		return "ready"
	}
	return "continue"
}

// A Submachine is a bounded, reentrant decoder embedded in an outer machine,
// such as the escape and entity decoders.
type Submachine interface {
	// Begin resets the decoder for a new sequence.
	Begin()

	// Parse consumes a prefix of data belonging to the current sequence and
	// reports how many bytes it used. A decoder never consumes the byte that
	// makes it fail.
	Parse(data []byte) (Result, int, error)

	// Output returns the decoded sequence, valid after Ready.
	Output() []byte

	// Input returns the raw text matched so far.
	Input() []byte
}

// Hooks are the format-specific callbacks driven by Machine.Run.
type Hooks struct {
	// Dispatch handles one byte under the current state.
	Dispatch func(b byte) Step

	// SubDone is called when the embedded sub-machine reports Ready (err ==
	// nil) or fails. The sub-machine is detached before the call.
	SubDone func(err error)

	// Report delivers a syntax error to the event handler.
	Report func(err *elib.SyntaxError) elib.Action
}

// A Machine holds the resumable state of a parser: the current state and
// state stack, the parse buffer, the input position and the error flags.
// Everything needed to resume lives here, never in the input.
type Machine[S comparable] struct {
	State    S             // the current state
	Pos      Counter       // position of the next unconsumed byte
	Buf      *bytes.Buffer // the caller's parse buffer
	MaxToken int           // if positive, the maximum size of a buffered token

	initial S
	stack   Stack[S]
	sub     Submachine
	synErr  *elib.SyntaxError
	stopped bool
	fatal   error
}

// Reset rebinds m to buf and clears all transient state.
func (m *Machine[S]) Reset(initial S, buf *bytes.Buffer) {
	m.State = initial
	m.initial = initial
	m.Pos = Counter{}
	m.Buf = buf
	m.stack.Reset()
	m.sub = nil
	m.synErr = nil
	m.stopped = false
	m.fatal = nil
	buf.Reset()
}

// Free releases the storage held by m. The machine must be Reset before it is
// used again.
func (m *Machine[S]) Free() {
	m.stack.Free()
	m.Buf = nil
	m.sub = nil
}

// Enter pushes the current state and switches to next.
func (m *Machine[S]) Enter(next S) {
	m.stack.Push(m.State)
	m.State = next
}

// Return restores the most recently pushed state. It reports false if the
// stack was empty, in which case the machine is poisoned with ErrInternal.
func (m *Machine[S]) Return() bool {
	s, err := m.stack.Pop()
	if err != nil {
		m.Fatal(err)
		return false
	}
	m.State = s
	return true
}

// Top returns the most recently pushed state, if any.
func (m *Machine[S]) Top() (S, bool) { return m.stack.Top() }

// Depth reports the number of pushed states.
func (m *Machine[S]) Depth() int { return m.stack.Len() }

// Complete reports whether m is back in its initial state with nothing
// pending.
func (m *Machine[S]) Complete() bool {
	return m.State == m.initial && m.stack.Len() == 0 && m.sub == nil
}

// Embed begins s and delegates subsequent input to it until it reports Ready
// or fails.
func (m *Machine[S]) Embed(s Submachine) {
	s.Begin()
	m.sub = s
}

// Fail sets the error flag for a syntax error at the given position. Only the
// first error flagged while handling a byte is kept.
func (m *Machine[S]) Fail(at Counter, msg string, args ...any) {
	if m.synErr == nil {
		m.synErr = elib.NewSyntaxError(at.Offset, at.LineCol(), nil, msg, args...)
	}
}

// FailErr is like Fail, but the syntax error wraps err.
func (m *Machine[S]) FailErr(at Counter, err error, msg string, args ...any) {
	if m.synErr == nil {
		m.synErr = elib.NewSyntaxError(at.Offset, at.LineCol(), err, msg, args...)
	}
}

// Stop asks Run to return after the current byte.
func (m *Machine[S]) Stop() { m.stopped = true }

// Fatal poisons m with err. Run and Err report err until the next Reset.
func (m *Machine[S]) Fatal(err error) {
	if m.fatal == nil {
		m.fatal = err
	}
}

// Err returns the error that poisoned m, or nil.
func (m *Machine[S]) Err() error { return m.fatal }

// Append adds b to the parse buffer. It reports false, poisoning m, if the
// buffer is full.
func (m *Machine[S]) Append(b byte) bool {
	if m.MaxToken > 0 && m.Buf.Len() >= m.MaxToken {
		m.Fatal(fmt.Errorf("%w: token exceeds %d bytes", elib.ErrOutOfMemory, m.MaxToken))
		return false
	}
	m.Buf.WriteByte(b)
	return true
}

// AppendBytes adds data to the parse buffer, as Append.
func (m *Machine[S]) AppendBytes(data []byte) bool {
	if m.MaxToken > 0 && m.Buf.Len()+len(data) > m.MaxToken {
		m.Fatal(fmt.Errorf("%w: token exceeds %d bytes", elib.ErrOutOfMemory, m.MaxToken))
		return false
	}
	m.Buf.Write(data)
	return true
}

// Run feeds data through the machine one byte at a time and reports the number
// of bytes consumed. It returns early with elib.ErrStopped if a handler asked
// to stop, or with the poisoning error if the machine failed.
func (m *Machine[S]) Run(data []byte, h *Hooks) (int, error) {
	if m.fatal != nil {
		return 0, m.fatal
	}
	m.stopped = false

	i, again := 0, 0
	for i < len(data) {
		var n int
		if m.sub != nil {
			res, used, err := m.sub.Parse(data[i:])
			n = used
			m.Pos.Advance(data[i : i+n])
			if err != nil || res == Ready {
				m.sub = nil
				h.SubDone(err)
			}
		} else if h.Dispatch(data[i]) == Next {
			n = 1
			m.Pos.Advance(data[i : i+1])
		}
		i += n

		if n != 0 {
			again = 0
		} else if again++; again > maxPushback {
			m.Fatal(fmt.Errorf("%w: no progress at offset %d", elib.ErrInternal, m.Pos.Offset))
		}
		if m.fatal != nil {
			return i, m.fatal
		}
		m.ReportPending(h)
		if m.stopped {
			return i, elib.ErrStopped
		}
	}
	return i, nil
}

// ReportPending delivers the syntax error flagged since the last report, if
// any, and clears the flag.
func (m *Machine[S]) ReportPending(h *Hooks) {
	if e := m.synErr; e != nil {
		m.synErr = nil
		if h.Report(e) == elib.Stop {
			m.stopped = true
		}
	}
}
