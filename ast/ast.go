// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an abstract syntax tree for JSON values, and a builder
// that constructs syntax trees from the events of a json.Parser.
package ast

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ekarpov/elib-sub000/json"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact JSON encoding of the value.
	JSON() string
}

// An Object is a collection of key-value members, in input order.
type Object []*Member

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Keys returns the keys of o in input order, including duplicates.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// JSON satisfies the Value interface.
func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// JSON satisfies the Value interface. A member without a value is rendered
// with a null value.
func (m *Member) JSON() string {
	v := "null"
	if m.Value != nil {
		v = m.Value.JSON()
	}
	return json.Quote(m.Key) + ":" + v
}

// An Array is a sequence of values.
type Array []Value

// JSON satisfies the Value interface.
func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

// A String is a string value, with escapes decoded.
type String string

// JSON satisfies the Value interface.
func (s String) JSON() string { return json.Quote(string(s)) }

// A Number is a numeric value, in the text form it was written.
type Number string

// JSON satisfies the Value interface.
func (n Number) JSON() string { return string(n) }

// Int64 returns n as an integer. It panics if n is not a valid integer.
func (n Number) Int64() int64 {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		panic(err)
	}
	return v
}

// Float64 returns n as a floating-point value. It panics if n is not a valid
// number.
func (n Number) Float64() float64 {
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		panic(err)
	}
	return v
}

// A Bool is a Boolean constant, true or false.
type Bool bool

// JSON satisfies the Value interface.
func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

// Null represents the null constant.
type Null struct{}

// JSON satisfies the Value interface.
func (Null) JSON() string { return "null" }

// ToValue converts a Go value into a Value. It handles strings, Booleans,
// integer and floating-point values, nil, slices of any, and maps from
// strings to any, recursively. Map keys are converted in sorted order.
// Values that already satisfy Value are returned unchanged.
// ToValue panics for any other type.
func ToValue(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Null{}
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(strconv.Itoa(t))
	case int64:
		return Number(strconv.FormatInt(t, 10))
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64))
	case []any:
		a := make(Array, len(t))
		for i, e := range t {
			a[i] = ToValue(e)
		}
		return a
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := make(Object, len(keys))
		for i, k := range keys {
			o[i] = &Member{Key: k, Value: ToValue(t[k])}
		}
		return o
	default:
		panic(fmt.Sprintf("unsupported value type %T", v))
	}
}
