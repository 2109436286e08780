/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
	"github.com/NVIDIA/devhosts/pkg/logging"
	"github.com/NVIDIA/devhosts/pkg/serializer"
)

const name = "devhosts"

var (
	// Overridden at build time with ldflags.
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitCancelled = 2
)

func newRootCmd() *cli.Command {
	var cancel context.CancelFunc

	return &cli.Command{
		Name:                  name,
		Version:               version + " (" + commit + ")",
		EnableShellCompletion: true,
		Usage:                 "Point local development services at dev, staging or localhost",
		Description: `Edits the hosts file so that <service>.<localhostSuffix> resolves to the
chosen environment, and keeps the port settings of dependent services in sync.

Running without a subcommand prints the current status.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file path (default: $DEVHOSTS_CONFIG or config/development.yaml)",
			},
			&cli.StringFlag{
				Name:  "hosts-file",
				Usage: "hosts file to read and edit (default: the OS hosts file)",
			},
			&cli.StringFlag{
				Name:  "aws-profile",
				Usage: "shared AWS config profile",
			},
			&cli.StringFlag{
				Name:  "aws-region",
				Usage: "AWS region (default: us-east-1)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "abort after this duration (default: none)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "output logs in JSON format",
			},
			localFlag(formatFlag(serializer.FormatTable)),
			localFlag(outputFlag()),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := ""
			if cmd.Bool("debug") {
				level = "debug"
			}
			logging.SetDefaultStructuredLogger(logging.Options{
				Name:    name,
				Version: version,
				Level:   level,
				JSON:    cmd.Bool("log-json"),
				Output:  cmd.Root().ErrWriter,
			})

			if d := cmd.Duration("timeout"); d > 0 {
				ctx, cancel = context.WithTimeout(ctx, d)
			}
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
		Action: statusAction,
		Commands: []*cli.Command{
			statusCmd(),
			setHostsCmd(),
			updateHostsCmd(),
		},
	}
}

// localFlag keeps a root flag from being inherited by subcommands that
// define their own.
func localFlag(f *cli.StringFlag) *cli.StringFlag {
	f.Local = true
	return f
}

// Execute runs the CLI with os.Args and exits with a non-zero code on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	if err := newRootCmd().Run(ctx, args); err != nil {
		slog.Error("command failed", "error", err)
		return exitCode(err)
	}
	return ExitOK
}

// exitCode maps err to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case cnserrors.CodeOf(err) == cnserrors.ErrCodeCancelled,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	default:
		return ExitError
	}
}
