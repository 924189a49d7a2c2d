// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package archiver

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/flate"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	// ArchiveExt is appended to the destination directory to name the archive.
	ArchiveExt = ".zip"
	tmpSuffix  = ".tmp"
)

var (
	// ErrArchiveWrite is returned when the archive cannot be written.
	ErrArchiveWrite = errors.New("failed to write archive")
	// ErrUnknownCompression is returned for a compression name other than deflate or store.
	ErrUnknownCompression = errors.New("unknown compression method")
)

// Compression selects how files are stored in the archive.
type Compression string

const (
	// CompressionDeflate compresses files with deflate. It is the default.
	CompressionDeflate Compression = "deflate"
	// CompressionStore stores files uncompressed.
	CompressionStore Compression = "store"
)

// ParseCompression converts a config or flag value to a Compression.
// An empty string means CompressionDeflate.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompressionDeflate, nil
	case CompressionDeflate, CompressionStore:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

func (c Compression) method() uint16 {
	if c == CompressionStore {
		return zip.Store
	}

	return zip.Deflate
}

// ArchivePath returns the archive path for dir: dir with any trailing
// separators removed and ".zip" appended.
func ArchivePath(dir string) string {
	return filepath.Clean(dir) + ArchiveExt
}

// Zip writes every entry below srcDir into a zip archive at dst.
// Entry names are relative to srcDir with forward slashes, in lexical order.
// dst is replaced only once the archive has been written completely.
func Zip(ctx context.Context, fs afero.Fs, srcDir, dst string, compression Compression) (err error) {
	logger := ctxlog.Logger(ctx).With("src", srcDir, "dst", dst)
	tmp := dst + tmpSuffix

	f, err := fs.Create(tmp)
	if err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}

	defer func() {
		if err != nil {
			if rmErr := fs.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Debug("could not remove partial archive", "path", tmp, "error", rmErr)
			}
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})

	var entries int

	walkErr := afero.Walk(fs, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if path == srcDir || path == tmp || path == dst {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		added, err := addEntry(fs, zw, path, filepath.ToSlash(rel), info, compression)
		if err != nil {
			return err
		}

		if !added {
			logger.Debug("skipping entry that is not a file or directory", "path", path)
			return nil
		}

		entries++

		return nil
	})

	var result *multierror.Error
	if walkErr != nil {
		result = multierror.Append(result, walkErr)
	}

	if cerr := zw.Close(); cerr != nil {
		result = multierror.Append(result, fmt.Errorf("closing zip writer: %w", cerr))
	}

	if cerr := f.Close(); cerr != nil {
		result = multierror.Append(result, fmt.Errorf("closing %s: %w", tmp, cerr))
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}

	if err := fs.Rename(tmp, dst); err != nil {
		return errors.Join(ErrArchiveWrite, err)
	}

	logger.Info("archive written", "entries", entries)

	return nil
}

// addEntry writes one archive entry for path. It reports false, without
// error, for entries that are neither files nor directories after following
// symlinks, including dangling links.
func addEntry(fs afero.Fs, zw *zip.Writer, path, name string, info os.FileInfo, compression Compression) (bool, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := fs.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		if err != nil {
			return false, err
		}

		info = target
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, err
	}

	switch {
	case info.IsDir():
		hdr.Name = name + "/"
		hdr.Method = zip.Store

		_, err := zw.CreateHeader(hdr)

		return err == nil, err
	case info.Mode().IsRegular():
		hdr.Name = name
		hdr.Method = compression.method()
	default:
		return false, nil
	}

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return false, err
	}

	src, err := fs.Open(path)
	if err != nil {
		return false, err
	}

	defer src.Close() //nolint:errcheck

	if _, err := io.Copy(w, src); err != nil {
		return false, fmt.Errorf("adding %s: %w", name, err)
	}

	return true, nil
}
