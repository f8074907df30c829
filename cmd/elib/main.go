// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program elib parses JSON or XML input and prints the resulting parse events,
// one per line.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Parsing failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var prettyLogs bool

	rootCmd := &cobra.Command{
		Use:   "elib",
		Short: "Incremental JSON and XML event parser",
		Long: `Parse JSON or XML input incrementally and print the parse events.

Input is read from the named file, or from stdin if the file is "-" or
omitted. Files ending in .gz are decompressed. Syntax errors are logged,
and parsing continues; the exit status is 1 if any error was found.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel, prettyLogs)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty", false, "Enable pretty logging output")

	rootCmd.AddCommand(newJSONCmd())
	rootCmd.AddCommand(newXMLCmd())
	return rootCmd
}

func setupLogging(level string, pretty bool) {
	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	default:
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Events go to stdout, so logs go to stderr.
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
