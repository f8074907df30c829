// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package elib

// Action is the value returned by an event handler to tell the parser whether
// to keep going.
type Action int

const (
	Continue Action = iota // process further input
	Stop                   // return from Parse after the current event
)

func (a Action) String() string {
	if a == Stop {
		return "stop"
	}
	return "continue"
}
