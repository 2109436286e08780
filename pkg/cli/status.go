/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/devhosts/pkg/serializer"
	"github.com/NVIDIA/devhosts/pkg/status"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:                  "status",
		EnableShellCompletion: true,
		Usage:                 "Show which environment each local service points at",
		Description: `Lists the hosts file entries of the configured services, sorted by name.
The environment is inferred from other entries sharing the same address.`,
		Flags: []cli.Flag{
			formatFlag(serializer.FormatTable),
			outputFlag(),
		},
		Action: statusAction,
	}
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	hf, err := openHosts(cfg)
	if err != nil {
		return err
	}

	report, err := status.Of(hf, cfg)
	if err != nil {
		return err
	}
	return write(ctx, cmd, report)
}
