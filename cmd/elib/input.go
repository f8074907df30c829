// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/htmlindex"
)

// An input is a reader for the text of a document, together with the
// resources that must be released when it is no longer needed.
type input struct {
	io.Reader
	closers []io.Closer
}

// Close releases the resources of in, innermost first.
func (in *input) Close() error {
	var errs []error
	for i := len(in.closers) - 1; i >= 0; i-- {
		errs = append(errs, in.closers[i].Close())
	}
	return errors.Join(errs...)
}

// inputPath returns the input file named by args, or "-" for stdin.
func inputPath(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

// openInput opens the file at path for reading, or stdin if path is "-".
// A file whose name ends in ".gz" is decompressed. If charset is not empty,
// the input is transcoded from the named character set to UTF-8; charset may
// be any name or label defined by the WHATWG Encoding standard.
func openInput(path, charset string) (*input, error) {
	in := new(input)
	if path == "-" {
		in.Reader = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		in.Reader = f
		in.closers = append(in.closers, f)
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(in.Reader)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("decompress %q: %w", path, err)
		}
		log.Debug().Str("path", path).Str("name", gz.Name).Msg("Reading compressed input")
		in.Reader = gz
		in.closers = append(in.closers, gz)
	}

	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("charset %q: %w", charset, err)
		}
		name, _ := htmlindex.Name(enc)
		log.Debug().Str("charset", name).Msg("Transcoding input")
		in.Reader = enc.NewDecoder().Reader(in.Reader)
	}
	return in, nil
}
