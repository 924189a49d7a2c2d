// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package archiver

import (
	"context"
	"errors"
	"strings"

	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/process"
	"github.com/spf13/afero"
)

const dirPerm = 0o755

// FS is the filesystem used for directory creation and archiving.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// RunProcess runs the child process. It can be replaced for testing.
var RunProcess = func(ctx context.Context, cmd *process.Command) *process.Result {
	return cmd.Run(ctx)
}

var (
	// ErrCreateDirectory is returned when the destination directory cannot be created.
	ErrCreateDirectory = errors.New("failed to create destination directory")
	// ErrNoDestination is returned when Options.DestDir is empty.
	ErrNoDestination = errors.New("destination directory not specified")
)

// Options configures a single archive run.
type Options struct {
	DestDir     string            // Directory the child populates and that gets archived
	Interpreter string            // Interpreter executable
	Args        []string          // Arguments passed to the interpreter
	Env         map[string]string // Extra environment for the child
	Compression Compression       // Archive compression, empty means deflate
}

// Run creates opts.DestDir, runs the interpreter with opts.Args and, if it
// succeeds, zips the directory to ArchivePath(opts.DestDir).
// It returns the archive path.
//
// A failing child yields an error matching process.ErrSubprocess that can be
// unwrapped to a *process.ExitError.
func Run(ctx context.Context, opts Options) (string, error) {
	if strings.TrimSpace(opts.DestDir) == "" {
		return "", ErrNoDestination
	}

	logger := ctxlog.Logger(ctx).With("destDir", opts.DestDir)

	if err := FS.MkdirAll(opts.DestDir, dirPerm); err != nil {
		return "", errors.Join(ErrCreateDirectory, err)
	}

	logger.Debug("destination directory ready")

	cmd := process.New("install", opts.Interpreter, opts.Args...)
	cmd.Env = opts.Env

	res := RunProcess(ctx, cmd)
	if err := res.Err(); err != nil {
		logger.Error("install failed, not archiving", "exitCode", res.ExitCode)
		return "", err
	}

	compression := opts.Compression
	if compression == "" {
		compression = CompressionDeflate
	}

	dst := ArchivePath(opts.DestDir)
	if err := Zip(ctx, FS, opts.DestDir, dst, compression); err != nil {
		return "", err
	}

	return dst, nil
}
