// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ekarpov/elib-sub000/ast"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
)

// options are the parser settings shared by the subcommands.
type options struct {
	Config   string // path of a configuration file
	Chunk    int    // bytes per call to Parse
	Decode   bool   // decode escapes and character references
	MaxToken int    // maximum token size, or 0 for no limit
	Charset  string // input character set, or "" for UTF-8
}

func (o *options) addFlags(cmd *cobra.Command, decode bool) {
	cmd.Flags().StringVar(&o.Config, "config", "", "Read settings from this HuJSON file (flags take precedence)")
	cmd.Flags().IntVar(&o.Chunk, "chunk", 4096, "Bytes per parse call (1 parses one byte at a time)")
	cmd.Flags().BoolVar(&o.Decode, "decode", decode, "Decode escape sequences and character references")
	cmd.Flags().IntVar(&o.MaxToken, "max-token", 0, "Maximum token size in bytes (0 means no limit)")
	cmd.Flags().StringVar(&o.Charset, "charset", "", "Transcode input from this character set")
}

// load applies the settings from the configuration file, if one is named,
// to the flags of cmd that were not set on the command line. It then checks
// the resulting options.
func (o *options) load(cmd *cobra.Command) error {
	if o.Config != "" {
		if err := loadConfig(cmd, o.Config); err != nil {
			return err
		}
	}
	if o.Chunk <= 0 {
		return fmt.Errorf("invalid chunk size %d", o.Chunk)
	}
	return nil
}

// loadConfig reads a configuration file in HuJSON format (JSON with comments
// and trailing commas). The file holds a single object whose keys are flag
// names, for example:
//
//	{
//	  // Parse one byte at a time.
//	  "chunk": 1,
//	  "decode": true,
//	}
//
// Each setting is applied to the corresponding flag of cmd, unless that flag
// was set explicitly. Settings for flags cmd does not have are ignored.
func loadConfig(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("config %q: %w", path, err)
	}
	v, err := ast.ParseSingle(bytes.NewReader(std))
	if err != nil {
		return fmt.Errorf("config %q: %w", path, err)
	}
	obj, ok := v.(ast.Object)
	if !ok {
		return fmt.Errorf("config %q: got %T, want object", path, v)
	}

	for _, m := range obj {
		f := cmd.Flags().Lookup(m.Key)
		if f == nil || m.Key == "config" {
			log.Debug().Str("key", m.Key).Str("command", cmd.Name()).Msg("Ignoring config setting")
			continue
		} else if f.Changed {
			continue
		}
		var text string
		switch t := m.Value.(type) {
		case ast.String:
			text = string(t)
		case ast.Number, ast.Bool:
			text = t.JSON()
		default:
			return fmt.Errorf("config %q: invalid value for %q: %s", path, m.Key, m.Value.JSON())
		}
		if err := cmd.Flags().Set(m.Key, text); err != nil {
			return fmt.Errorf("config %q: %w", path, err)
		}
		log.Debug().Str("key", m.Key).Str("value", text).Msg("Applied config setting")
	}
	return nil
}
