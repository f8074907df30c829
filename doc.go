// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package elib defines the types shared by the incremental JSON and XML
// parsers in the json and xml subpackages.
//
// # Parsing
//
// A parser consumes input in chunks of any size, and reports the structure
// of the input by calling a Handler with one Event at a time. The sequence of
// events does not depend on how the input is divided into chunks:
//
//	p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
//	   log.Printf("Event: %v", e)
//	   return elib.Continue
//	}))
//	var buf bytes.Buffer
//	if err := p.Begin(&buf); err != nil {
//	   log.Fatalf("Begin: %v", err)
//	}
//	for _, chunk := range chunks {
//	   if _, err := p.Parse(chunk); err != nil {
//	      log.Fatalf("Parse: %v", err)
//	   }
//	}
//	if err := p.End(); err != nil {
//	   log.Fatalf("End: %v", err)
//	}
//
// The parse buffer is supplied by the caller, and holds the text of the
// current token. A parser does not retain the input passed to Parse.
//
// # Errors
//
// Malformed input is reported to the handler as a SyntaxError event, and
// parsing continues after the offending byte unless the handler returns
// Stop. When a handler stops the parser, Parse returns the number of bytes
// consumed along with ErrStopped, and the caller may resume by passing the
// rest of the chunk to Parse.
//
// Other failures are reported by the methods of the parser:
//
//   - ErrArgument for invalid arguments to Begin or Parse.
//   - ErrIncomplete from End, when constructs are still open.
//   - ErrOutOfMemory when a token outgrows the maximum token size.
//   - ErrInternal when a parser invariant is violated.
//
// Use errors.Is to check for these values.
//
// # Escapes
//
// Backslash escape sequences and character references (such as "&amp;" and
// "&#x41;") inside strings and text may optionally be decoded. Decoding is
// on by default for JSON and off by default for XML.
package elib
