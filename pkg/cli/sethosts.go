/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/devhosts/pkg/config"
	"github.com/NVIDIA/devhosts/pkg/reconciler"
	"github.com/NVIDIA/devhosts/pkg/selector"
	"github.com/NVIDIA/devhosts/pkg/serializer"
)

func setHostsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "set-hosts",
		Aliases:               []string{"s"},
		EnableShellCompletion: true,
		Usage:                 "Point selected services at an environment",
		Description: `Points <service>.<localhostSuffix> of the selected services at the
instances of the chosen environment, or at the loopback address for local.

In local mode the port of each service is read from its own config and
written to the configs of its dependent locations. In remote mode the
default port is written instead.

# Examples

Choose services interactively and point them at staging:
  devhosts set-hosts -e staging

Run auth and web locally without prompting:
  devhosts s -e local --service auth --service web

Show what would change:
  devhosts set-hosts -e dev --service auth --dry-run`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "environment",
				Aliases: []string{"e"},
				Value:   "dev",
				Usage:   "target environment (dev, staging, local)",
			},
			&cli.StringSliceFlag{
				Name:  "service",
				Usage: "service to change, can be repeated (skips the prompt)",
			},
			dryRunFlag(),
			formatFlag(serializer.FormatTable),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			env, err := cfg.ParseEnvironment(cmd.String("environment"))
			if err != nil {
				return err
			}

			names, err := chooseServices(ctx, cmd.StringSlice("service"), env, cfg)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				slog.Info("no services selected")
				return nil
			}

			hf, err := openHosts(cfg)
			if err != nil {
				return err
			}

			var opts []reconciler.Option
			if env != config.EnvironmentLocal {
				l, err := newLister(ctx, cfg)
				if err != nil {
					return err
				}
				opts = append(opts, reconciler.WithLister(l))
			}

			dryRun := cmd.Bool("dry-run")
			plan, err := reconciler.New(cfg, hf, opts...).SetHosts(ctx, env, cfg.Services(names), dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				return write(ctx, cmd, plan)
			}
			slog.Info("hosts updated",
				"environment", env,
				"entries", len(plan.Mutations),
				"ports", len(plan.PortUpdates),
			)
			return nil
		},
	}
}

// chooseServices resolves --service values, or prompts when there are none.
func chooseServices(ctx context.Context, requested []string, env string, cfg *config.Config) ([]string, error) {
	if len(requested) > 0 {
		return selector.Resolve(requested, cfg.ServiceNames())
	}
	return selectServices(ctx, fmt.Sprintf("Select services to point at %s", env), cfg.ServiceNames())
}
