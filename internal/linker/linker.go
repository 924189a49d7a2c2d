// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/process"
	"github.com/spf13/afero"
)

const dirPerm = 0o755

// DefaultArtifactPattern matches every file name.
const DefaultArtifactPattern = "*"

// FS is the filesystem used to create the wheel directory and look for the artifact.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

// RunProcess runs the build. It can be replaced for testing.
var RunProcess = func(ctx context.Context, cmd *process.Command) *process.Result {
	return cmd.Run(ctx)
}

var (
	// ErrCreateDirectory is returned when the wheel directory cannot be created.
	ErrCreateDirectory = errors.New("failed to create wheel directory")
	// ErrBuildFailed is returned when the build did not succeed and failures are not allowed.
	ErrBuildFailed = errors.New("wheel build failed")
	// ErrNoOutput is returned when Options.WheelPath is empty.
	ErrNoOutput = errors.New("wheel output path not specified")
)

// Options configures a single link run.
type Options struct {
	Label             string            // Caller-supplied label, only logged
	WheelPath         string            // Path the artifact is linked to
	Interpreter       string            // Interpreter executable
	Args              []string          // Arguments passed to the interpreter
	Env               map[string]string // Extra environment for the build
	AllowBuildFailure bool              // Link even when the build failed
	ArtifactPattern   string            // Glob the artifact's base name must match, empty means "*"
}

// Run creates the directory of opts.WheelPath, runs the build and links the
// artifact it produced to opts.WheelPath. It returns the artifact path.
func Run(ctx context.Context, opts Options) (string, error) {
	if strings.TrimSpace(opts.WheelPath) == "" {
		return "", ErrNoOutput
	}

	pattern := opts.ArtifactPattern
	if pattern == "" {
		pattern = DefaultArtifactPattern
	}

	if _, err := filepath.Match(pattern, ""); err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}

	wheelPath := filepath.Clean(opts.WheelPath)
	wheelDir := filepath.Dir(wheelPath)

	logger := ctxlog.Logger(ctx).With("wheelPath", wheelPath)
	logger.Debug("link requested", "label", opts.Label)

	if err := FS.MkdirAll(wheelDir, dirPerm); err != nil {
		return "", errors.Join(ErrCreateDirectory, err)
	}

	cmd := process.New("build", opts.Interpreter, opts.Args...)
	cmd.Env = opts.Env

	res := RunProcess(ctx, cmd)
	if err := res.Err(); err != nil {
		if !opts.AllowBuildFailure {
			return "", errors.Join(ErrBuildFailed, err)
		}

		logger.Warn("build failed, linking anyway", "exitCode", res.ExitCode, "error", err)
	}

	exists, err := lexists(FS, wheelPath)
	if err != nil {
		return "", errors.Join(ErrLink, err)
	}

	if exists {
		return "", fmt.Errorf("%w: %s", ErrLinkExists, wheelPath)
	}

	artifact, err := findArtifact(FS, wheelDir, pattern)
	if err != nil {
		return "", err
	}

	if err := link(artifact, wheelPath); err != nil {
		return "", err
	}

	logger.Info("wheel linked", "artifact", artifact)

	return artifact, nil
}

// lexists reports whether path exists without following a final symlink.
func lexists(fs afero.Fs, path string) (bool, error) {
	var err error

	if l, ok := fs.(afero.Lstater); ok {
		_, _, err = l.LstatIfPossible(path)
	} else {
		_, err = fs.Stat(path)
	}

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
