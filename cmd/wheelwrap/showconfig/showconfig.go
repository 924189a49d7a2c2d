// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package showconfig implements the config subcommand, which prints the effective settings.
package showconfig

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/settings"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// ConfigCmd prints the settings archive and link would use, as YAML.
var ConfigCmd = &cli.Command{
	Name:   "config",
	Usage:  "Print the effective settings as YAML",
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	s, err := settings.Resolve(ctx, settings.InputFromCommand(cmd))
	if err != nil {
		ctxlog.Error(ctx, "could not resolve settings", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	out, err := s.Config().YAML()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to render settings: %s", err), 1)
	}

	if _, err := cmd.Root().Writer.Write(out); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write settings: %s", err), 1)
	}

	return nil
}
