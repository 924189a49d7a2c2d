// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package interpreter works out which Python executable wheelwrap should run.
// A Go binary has no interpreter of its own, so the one a build rule expects
// is named explicitly or discovered on PATH.
package interpreter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// EnvVar names the environment variable that can select the interpreter.
const EnvVar = "WHEELWRAP_INTERPRETER"

// DefaultCandidates are searched on PATH, in order, when nothing else is configured.
var DefaultCandidates = []string{"python3", "python"}

// FS is the filesystem used to stat candidates.
// Default is the OS filesystem, but can be replaced with a mock for testing.
var FS = afero.NewOsFs()

var (
	// ErrInterpreterNotFound is returned when no usable interpreter can be found.
	ErrInterpreterNotFound = errors.New("interpreter not found")
	// ErrNotExecutable is returned when a named interpreter exists but cannot be executed.
	ErrNotExecutable = errors.New("interpreter is not an executable file")
)

// Resolve returns the path of the interpreter called name.
// A name that contains a path separator is checked in place, anything else is
// looked up on PATH.
func Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInterpreterNotFound)
	}

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		if err := checkExecutable(name); err != nil {
			return "", err
		}

		return filepath.Clean(name), nil
	}

	if p, ok := lookPath(name); ok {
		return p, nil
	}

	return "", fmt.Errorf("%w: %s not found in PATH", ErrInterpreterNotFound, name)
}

// Default searches PATH for each of DefaultCandidates and returns the first match.
func Default() (string, error) {
	for _, c := range DefaultCandidates {
		if p, ok := lookPath(c); ok {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: none of %s found in PATH", ErrInterpreterNotFound, strings.Join(DefaultCandidates, ", "))
}

// Select picks the interpreter from the first non-empty value in names, or falls
// back to Default when they are all empty.
func Select(names ...string) (string, error) {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return Resolve(n)
		}
	}

	return Default()
}

func lookPath(command string) (string, bool) {
	names := []string{command}
	if runtime.GOOS == "windows" && filepath.Ext(command) == "" {
		names = append(names, command+".exe")
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}

		for _, n := range names {
			candidate := filepath.Join(dir, n)
			if checkExecutable(candidate) == nil {
				return candidate, true
			}
		}
	}

	return "", false
}

func checkExecutable(path string) error {
	info, err := FS.Stat(path)
	if err != nil {
		return errors.Join(ErrInterpreterNotFound, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotExecutable, path)
	}

	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%w: %s", ErrNotExecutable, path)
	}

	return nil
}
