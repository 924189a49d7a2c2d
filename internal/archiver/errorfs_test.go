// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package archiver

import (
	"os"

	"github.com/spf13/afero"
)

// errorFS is a filesystem wrapper that returns os.ErrPermission for one path.
type errorFS struct {
	afero.Fs
	errorPath string
}

func (e *errorFS) Create(name string) (afero.File, error) {
	if name == e.errorPath {
		return nil, os.ErrPermission
	}

	return e.Fs.Create(name)
}

func (e *errorFS) MkdirAll(path string, perm os.FileMode) error {
	if path == e.errorPath {
		return os.ErrPermission
	}

	return e.Fs.MkdirAll(path, perm)
}

func (e *errorFS) Open(name string) (afero.File, error) {
	if name == e.errorPath {
		return nil, os.ErrPermission
	}

	return e.Fs.Open(name)
}

func (e *errorFS) Rename(oldname, newname string) error {
	if newname == e.errorPath {
		return os.ErrPermission
	}

	return e.Fs.Rename(oldname, newname)
}
