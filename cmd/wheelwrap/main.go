// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the wheelwrap command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/wheelwrap"
	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/archive"
	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/link"
	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/settings"
	"github.com/matt-FFFFFF/wheelwrap/cmd/wheelwrap/showconfig"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// newRootCmd returns the root command for the CLI.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			archive.ArchiveCmd,
			link.LinkCmd,
			showconfig.ConfigCmd,
		},
		Flags:     settings.Flags(),
		Before:    beforeFunc,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "wheelwrap",
		Description: `wheelwrap runs a Python packaging tool on behalf of a build system and
turns its output into a single predictable file: a zip of an install
directory (archive) or a hard link to a freshly built wheel (link).

The interpreter is taken from --interpreter, $WHEELWRAP_INTERPRETER, the
config file, or python3/python on PATH, in that order. Set
WHEELWRAP_LOG_LEVEL to DEBUG, INFO, WARN or ERROR to control logging.`,
		Usage:     "wheelwrap archive /tmp/out -m pip install --target /tmp/out pkg.whl",
		Version:   fmt.Sprintf("%s (commit: %s)", wheelwrap.Version, wheelwrap.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

// beforeFunc swaps in the logger selected by --log-format.
func beforeFunc(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return ctxlog.New(ctx, ctxlog.ForFormat(cmd.String(settings.LogFormatFlag))), nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args) // Exit codes are handled by the cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
}
