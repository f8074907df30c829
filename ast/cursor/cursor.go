// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the AST of a JSON value.
package cursor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekarpov/elib-sub000/ast"
)

// Path traverses a sequential path into the structure of v, with path
// elements as for Cursor.Down, and returns the value reached.
func Path[T ast.Value](v ast.Value, path ...any) (T, error) {
	c := New(v).Down(path...)
	var zero T
	if err := c.Err(); err != nil {
		return zero, err
	}
	got, ok := c.Value().(T)
	if !ok {
		return zero, fmt.Errorf("wrong value type %T", c.Value())
	}
	return got, nil
}

// ParsePath splits a slash-separated path string into path elements for
// Cursor.Down. Elements that parse as integers become array or object
// indexes; all others are object keys. An empty string is an empty path.
//
// For example, "episodes/-1/title" selects the title of the last episode.
func ParsePath(s string) []any {
	if s == "" {
		return nil
	}
	var path []any
	for _, elt := range strings.Split(s, "/") {
		if n, err := strconv.Atoi(elt); err == nil {
			path = append(path, n)
		} else {
			path = append(path, elt)
		}
	}
	return path
}

// A Cursor is a pointer that navigates into the structure of an ast.Value.
type Cursor struct {
	org ast.Value
	stk []ast.Value
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Path reports the sequence of values from the origin to the current location.
func (c *Cursor) Path() []ast.Value { return append([]ast.Value{c.org}, c.stk...) }

// Err reports the error from the most recent call to Down, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward, if possible. It returns c.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset returns the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down moves the cursor along path from the current value and returns c.
// If an element cannot be followed, traversal stops where it is and the
// error is available from Err.
//
// Path elements have these meanings:
//
//   - A string selects the member of an object with that key. If another
//     element follows, it applies to the value of the member. A trailing nil
//     element moves from a member to its value.
//
//   - An int selects an element of an array, or a member of an object, by
//     position. Negative positions count backward from the end.
//
//   - A func(ast.Value) (ast.Value, error) is called with the current value,
//     and its result becomes the current value.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	cur := c.Value()
	for _, elt := range path {
		if m, ok := cur.(*ast.Member); ok {
			cur = c.push(m.Value)
		}
		next, err := step(cur, elt)
		if err != nil {
			c.err = err
			break
		} else if next != nil {
			cur = c.push(next)
		}
	}
	return c
}

// step applies one path element to v. It returns nil without error if elt
// does not move the cursor.
func step(v ast.Value, elt any) (ast.Value, error) {
	switch t := elt.(type) {
	case nil:
		return nil, nil

	case string:
		obj, ok := v.(ast.Object)
		if !ok {
			return nil, fmt.Errorf("cannot traverse %T with %q", v, t)
		}
		if m := obj.Find(t); m != nil {
			return m, nil
		}
		return nil, fmt.Errorf("key %q not found", t)

	case int:
		switch e := v.(type) {
		case ast.Array:
			if i, ok := index(len(e), t); ok {
				return e[i], nil
			}
			return nil, fmt.Errorf("array index %d out of bounds (n=%d)", t, len(e))
		case ast.Object:
			if i, ok := index(len(e), t); ok {
				return e[i], nil
			}
			return nil, fmt.Errorf("object index %d out of bounds (n=%d)", t, len(e))
		}
		return nil, fmt.Errorf("cannot traverse %T with %d", v, t)

	case func(ast.Value) (ast.Value, error):
		return t(v)
	}
	return nil, fmt.Errorf("invalid path element %T", elt)
}

func (c *Cursor) push(v ast.Value) ast.Value { c.stk = append(c.stk, v); return v }

// index resolves a possibly-negative position i in a sequence of length n.
func index(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
