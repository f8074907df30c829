// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ekarpov/elib-sub000"
	"github.com/ekarpov/elib-sub000/ast"
	"github.com/ekarpov/elib-sub000/ast/cursor"
	"github.com/ekarpov/elib-sub000/json"
	"github.com/ekarpov/elib-sub000/xml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newJSONCmd() *cobra.Command {
	var o options
	var comments, trailingCommas, tree bool
	var path string

	cmd := &cobra.Command{
		Use:   "json [file]",
		Short: "Print the parse events of a JSON document",
		Long: `Print the parse events of a JSON document, one per line.

With --tree, the input is parsed into values instead, and the compact JSON
encoding of each value is printed. Use --path to print only the part of
each value selected by a slash-separated path of keys and indexes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(cmd); err != nil {
				return err
			}
			in, err := openInput(inputPath(args), o.Charset)
			if err != nil {
				return err
			}
			defer in.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			if tree {
				opts := ast.Options{
					AllowComments:       comments,
					AllowTrailingCommas: trailingCommas,
					MaxTokenSize:        o.MaxToken,
				}
				return printTree(out, in, opts, cursor.ParsePath(path))
			}

			ep := &eventPrinter{w: out}
			p := json.NewParser(json.HandlerFunc(func(e json.Event) elib.Action {
				if e.Kind == json.SyntaxError {
					return ep.syntaxError(e.Err)
				}
				return ep.print(e)
			}))
			p.DecodeEscapes(o.Decode)
			p.AllowComments(comments)
			p.AllowTrailingCommas(trailingCommas)
			p.SetMaxTokenSize(o.MaxToken)
			return ep.run(p, in, o.Chunk)
		},
	}
	o.addFlags(cmd, true)
	cmd.Flags().BoolVar(&comments, "comments", false, "Allow comments in the input")
	cmd.Flags().BoolVar(&trailingCommas, "trailing-commas", false, "Allow trailing commas in objects and arrays")
	cmd.Flags().BoolVar(&tree, "tree", false, "Print values instead of events")
	cmd.Flags().StringVar(&path, "path", "", "With --tree, print the value at this path")
	return cmd
}

func newXMLCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "xml [file]",
		Short: "Print the parse events of an XML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.load(cmd); err != nil {
				return err
			}
			in, err := openInput(inputPath(args), o.Charset)
			if err != nil {
				return err
			}
			defer in.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			ep := &eventPrinter{w: out}
			p := xml.NewParser(xml.HandlerFunc(func(e xml.Event) elib.Action {
				if e.Kind == xml.SyntaxError {
					return ep.syntaxError(e.Err)
				}
				return ep.print(e)
			}))
			p.DecodeEscapes(o.Decode)
			p.SetMaxTokenSize(o.MaxToken)
			return ep.run(p, in, o.Chunk)
		},
	}
	o.addFlags(cmd, false)
	return cmd
}

// A parser is the common interface of the JSON and XML parsers.
type parser interface {
	Begin(*bytes.Buffer) error
	Parse([]byte) (int, error)
	End() error
	Close() error
}

// An eventPrinter writes parse events to w and logs syntax errors.
type eventPrinter struct {
	w      io.Writer
	events int
	errors int
}

func (ep *eventPrinter) print(e fmt.Stringer) elib.Action {
	ep.events++
	fmt.Fprintln(ep.w, e)
	return elib.Continue
}

func (ep *eventPrinter) syntaxError(err *elib.SyntaxError) elib.Action {
	ep.errors++
	log.Warn().Int64("offset", err.Offset).Stringer("at", err.Location).Msg(err.Message)
	return elib.Continue
}

// run feeds the contents of r to p in chunks of the given size, and reports
// an error if parsing fails or the input has syntax errors.
func (ep *eventPrinter) run(p parser, r io.Reader, chunk int) error {
	var buf bytes.Buffer
	if err := p.Begin(&buf); err != nil {
		return err
	}
	defer p.Close()

	data := make([]byte, chunk)
	var total int64
	for {
		nr, err := r.Read(data)
		if nr > 0 {
			if _, err := p.Parse(data[:nr]); err != nil {
				return err
			}
			total += int64(nr)
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
	}
	if err := p.End(); err != nil {
		return err
	}
	log.Debug().Int64("bytes", total).Int("events", ep.events).Int("errors", ep.errors).Msg("Parse complete")
	if ep.errors != 0 {
		return fmt.Errorf("found %d syntax errors", ep.errors)
	}
	return nil
}

// printTree parses the JSON values from r and writes the compact encoding of
// each to w, one per line. If path is not empty, only the part of each value
// it selects is written; a path ending at an object member selects the value
// of the member.
func printTree(w io.Writer, r io.Reader, opts ast.Options, path []any) error {
	vs, err := opts.Parse(r)
	for _, v := range vs {
		c := cursor.New(v).Down(append(path, nil)...)
		if err := c.Err(); err != nil {
			return err
		}
		fmt.Fprintln(w, c.Value().JSON())
	}
	return err
}
