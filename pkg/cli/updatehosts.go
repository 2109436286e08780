/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/devhosts/pkg/reconciler"
	"github.com/NVIDIA/devhosts/pkg/serializer"
)

func updateHostsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "update-hosts",
		Aliases:               []string{"u"},
		EnableShellCompletion: true,
		Usage:                 "Write every discovered instance to the hosts file",
		Description: `Lists the instances of all environments and writes one entry per
instance, <service>.<environment> -> public address.`,
		Flags: []cli.Flag{
			dryRunFlag(),
			formatFlag(serializer.FormatTable),
			outputFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			hf, err := openHosts(cfg)
			if err != nil {
				return err
			}

			l, err := newLister(ctx, cfg)
			if err != nil {
				return err
			}

			dryRun := cmd.Bool("dry-run")
			plan, err := reconciler.New(cfg, hf, reconciler.WithLister(l)).UpdateHosts(ctx, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				return write(ctx, cmd, plan)
			}
			slog.Info("hosts updated", "entries", len(plan.Mutations))
			return nil
		},
	}
}
