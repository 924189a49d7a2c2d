// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linker

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// LinkFunc creates the hard link. afero has no hard-link support, so this
// always acts on the OS filesystem. It can be replaced for testing.
var LinkFunc = os.Link

var (
	// ErrLinkExists is returned when the output path already exists.
	ErrLinkExists = errors.New("wheel output path already exists")
	// ErrCrossDevice is returned when the artifact and the output path are on different filesystems.
	ErrCrossDevice = errors.New("cannot hard-link across filesystems")
	// ErrLink is returned for any other hard-link failure.
	ErrLink = errors.New("failed to link wheel")
)

func link(src, dst string) error {
	err := LinkFunc(src, dst)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return errors.Join(ErrLinkExists, err)
	case errors.Is(err, syscall.EXDEV):
		return errors.Join(ErrCrossDevice, err)
	default:
		return errors.Join(ErrLink, err)
	}
}
