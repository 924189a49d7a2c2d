// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package archive implements the archive subcommand: install into a directory, then zip it.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/settings"
	"github.com/matt-FFFFFF/wheelwrap/internal/archiver"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/process"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// ArchiveCmd runs the interpreter to populate a directory and zips the result.
var ArchiveCmd = &cli.Command{
	Name:    "archive",
	Aliases: []string{"install-wheel-and-zip"},
	Usage:   "Run the interpreter to fill a directory, then zip it to <dir>.zip",
	Description: `Creates <destDir> if needed and runs the Python interpreter with the
remaining arguments, for example "-m pip install --target <destDir> pkg.whl".
If the interpreter exits zero, the contents of <destDir> are written to
<destDir>.zip. If it exits non-zero, wheelwrap exits with the same code and
no archive is written.

Arguments after <destDir> are passed to the interpreter untouched, so global
flags must be given before the subcommand name.`,
	ArgsUsage:       "<destDir> [interpreter args...]",
	SkipFlagParsing: true,
	Action:          actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	args := cmd.Args().Slice()
	if len(args) < 1 || args[0] == "" {
		return cli.Exit(fmt.Sprintf("usage: %s %s", cmd.FullName(), cmd.ArgsUsage), 1)
	}

	s, err := settings.Resolve(ctx, settings.InputFromCommand(cmd))
	if err != nil {
		logger.Error("could not resolve settings", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	out, err := archiver.Run(ctx, archiver.Options{
		DestDir:     args[0],
		Interpreter: s.Interpreter,
		Args:        s.Args(args[1:]),
		Env:         s.Env,
		Compression: s.Compression,
	})
	if err != nil {
		return exitFromError(ctx, err)
	}

	logger.Info("archive created", "path", out)

	return nil
}

// exitFromError maps err to the process exit status. A failed child passes
// its own exit code through.
func exitFromError(ctx context.Context, err error) error {
	ctxlog.Error(ctx, "archive failed", "error", err)

	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		return cli.Exit(cliExitStr, exitErr.ExitCode())
	}

	return cli.Exit(cliExitStr, 1)
}
