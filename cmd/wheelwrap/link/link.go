// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package link implements the link subcommand: build a wheel, then hard-link it to the requested path.
package link

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/settings"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/linker"
	"github.com/urfave/cli/v3"
)

const (
	cliExitStr  = ""
	minimumArgs = 2 // label and output path
)

// LinkCmd builds a wheel next to the output path and hard-links it there.
var LinkCmd = &cli.Command{
	Name:    "link",
	Aliases: []string{"wheel-wrapper"},
	Usage:   "Build a wheel into the output's directory and hard-link it to the output path",
	Description: `Creates the directory of <wheelOutputPath> if needed and runs the Python
interpreter with the remaining arguments, for example
"-m build --wheel --outdir <dir>". The single file the build leaves in that
directory is then hard-linked to <wheelOutputPath>.

<label> is accepted for compatibility with existing build rules and is only
logged. A build that exits non-zero fails the command unless
--allow-build-failure is given. Use --artifact-pattern when the build leaves
more than one file behind.`,
	ArgsUsage:       "<label> <wheelOutputPath> [interpreter args...]",
	SkipFlagParsing: true,
	Action:          actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) < minimumArgs || args[1] == "" {
		return cli.Exit(fmt.Sprintf("usage: %s %s", cmd.FullName(), cmd.ArgsUsage), 1)
	}

	s, err := settings.Resolve(ctx, settings.InputFromCommand(cmd))
	if err != nil {
		logger.Error("could not resolve settings", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	artifact, err := linker.Run(ctx, linker.Options{
		Label:             args[0],
		WheelPath:         args[1],
		Interpreter:       s.Interpreter,
		Args:              s.Args(args[minimumArgs:]),
		Env:               s.Env,
		AllowBuildFailure: s.AllowBuildFailure,
		ArtifactPattern:   s.ArtifactPattern,
	})
	if err != nil {
		logger.Error("link failed", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	logger.Info("wheel linked", "artifact", artifact, "output", args[1])

	return nil
}
