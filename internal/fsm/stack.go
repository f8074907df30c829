// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package fsm

import (
	"fmt"

	"github.com/creachadair/mds/stack"
	"github.com/ekarpov/elib-sub000"
)

// A Stack is a LIFO of values of type T. The zero value is ready for use.
//
// Parsers use a Stack in place of native recursion, so that returning from a
// nested construct after a suspension is just restoring a stack entry.
type Stack[T any] struct {
	s *stack.Stack[T]
}

// Push adds v to the top of s.
func (s *Stack[T]) Push(v T) {
	if s.s == nil {
		s.s = stack.New[T]()
	}
	s.s.Push(v)
}

// Pop removes and returns the top of s. Popping an empty stack is a parser
// bug, and is reported as elib.ErrInternal.
func (s *Stack[T]) Pop() (T, error) {
	if s.s != nil {
		if v, ok := s.s.Pop(); ok {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: pop from empty stack", elib.ErrInternal)
}

// Top reports whether s is non-empty, and if so returns its top value
// without removing it.
func (s *Stack[T]) Top() (T, bool) {
	if s.s == nil {
		var zero T
		return zero, false
	}
	return s.s.Peek(0)
}

// Len reports the number of values in s.
func (s *Stack[T]) Len() int {
	if s.s == nil {
		return 0
	}
	return s.s.Len()
}

// Reset discards the contents of s, retaining its storage.
func (s *Stack[T]) Reset() {
	if s.s != nil {
		s.s.Clear()
	}
}

// Free discards the contents and the storage of s.
func (s *Stack[T]) Free() { s.s = nil }
