package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "leafsim",
		Usage: "Compose and run coupled leaf biophysics simulations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Logging level: 'debug', 'info', 'warn' or 'error'",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format: 'text' or 'json'",
				Value: "text",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			kindsCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the top-level flags.
func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cmd.String("log-level"), err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cmd.String("log-format") {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q", cmd.String("log-format"))
	}
	return slog.New(handler), nil
}
