/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/devhosts/pkg/config"
	"github.com/NVIDIA/devhosts/pkg/hosts"
	"github.com/NVIDIA/devhosts/pkg/instances"
	"github.com/NVIDIA/devhosts/pkg/selector"
	"github.com/NVIDIA/devhosts/pkg/serializer"
)

// Replaced in tests.
var (
	newLister = func(ctx context.Context, cfg *config.Config) (instances.Lister, error) {
		return instances.NewFromConfig(ctx, cfg)
	}
	selectServices = func(ctx context.Context, title string, names []string) ([]string, error) {
		return selector.Select(ctx, title, names)
	}
)

// Flag constructors return fresh flags so the root command and its
// subcommands each own theirs.
func formatFlag(def serializer.Format) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(def),
		Usage:   fmt.Sprintf("output format (%v)", serializer.SupportedFormats()),
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "output file path (default: stdout)",
	}
}

func dryRunFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "print the planned changes without writing anything",
	}
}

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: yaml, json, table", outFormat)
	}
	return outFormat, nil
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := config.ResolvePath(cmd.String("config"))
	slog.Debug("loading config", "path", path)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Apply(
		config.WithHostsFile(cmd.String("hosts-file")),
		config.WithRegion(cmd.String("aws-region")),
		config.WithProfile(cmd.String("aws-profile")),
	), nil
}

func openHosts(cfg *config.Config) (hosts.File, error) {
	return hosts.Open(cfg.HostsFile)
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// write serializes v to --output, or to the command's writer.
func write(ctx context.Context, cmd *cli.Command, v any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		ser, err := serializer.NewFileWriterOrStdout(outFormat, path)
		if err != nil {
			return err
		}
		defer func() {
			if closer, ok := ser.(serializer.Closer); ok {
				if err := closer.Close(); err != nil {
					slog.Warn("failed to close serializer", "error", err)
				}
			}
		}()
		return ser.Serialize(ctx, v)
	}

	return serializer.NewWriter(outFormat, stdout(cmd)).Serialize(ctx, v)
}
