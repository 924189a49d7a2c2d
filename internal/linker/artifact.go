// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrEmptyDirectory is returned when the wheel directory holds no candidate artifact.
	ErrEmptyDirectory = errors.New("no artifact found in wheel directory")
	// ErrAmbiguousArtifact is returned when more than one file could be the artifact.
	ErrAmbiguousArtifact = errors.New("more than one candidate artifact in wheel directory")
	// ErrInvalidPattern is returned for a malformed artifact glob.
	ErrInvalidPattern = errors.New("invalid artifact pattern")
)

// findArtifact returns the path of the only regular file in dir whose base
// name matches pattern.
func findArtifact(fs afero.Fs, dir, pattern string) (string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return "", errors.Join(ErrEmptyDirectory, err)
	}

	var candidates []string

	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}

		ok, err := filepath.Match(pattern, info.Name())
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
		}

		if ok {
			candidates = append(candidates, filepath.Join(dir, info.Name()))
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: %s (pattern %q)", ErrEmptyDirectory, dir, pattern)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousArtifact, strings.Join(candidates, ", "))
	}
}
