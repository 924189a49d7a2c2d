// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package archiver

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readZip returns the entries of the archive at path, name to content.
// Directory entries map to an empty string.
func readZip(t *testing.T, fs afero.Fs, path string) ([]string, map[string]string) {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	contents := make(map[string]string, len(zr.File))

	for _, f := range zr.File {
		names = append(names, f.Name)

		rc, err := f.Open()
		require.NoError(t, err)

		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		contents[f.Name] = string(b)
	}

	return names, contents
}

func populate(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()

	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
}

func TestArchivePath(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{dir: "/tmp/out", want: "/tmp/out.zip"},
		{dir: "/tmp/out/", want: "/tmp/out.zip"},
		{dir: "out", want: "out.zip"},
		{dir: "./build/site-packages//", want: "build/site-packages.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.want), ArchivePath(filepath.FromSlash(tt.dir)))
		})
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{in: "", want: CompressionDeflate},
		{in: "deflate", want: CompressionDeflate},
		{in: " STORE ", want: CompressionStore},
		{in: "bzip2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCompression)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZip(t *testing.T) {
	for _, compression := range []Compression{CompressionDeflate, CompressionStore} {
		t.Run(string(compression), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			populate(t, fs, map[string]string{
				"/work/out/pkg.whl":                 "wheel bytes",
				"/work/out/pkg/__init__.py":         "VERSION = '1.0'\n",
				"/work/out/pkg-1.0.dist-info/RECORD": "pkg/__init__.py,,\n",
			})

			require.NoError(t, Zip(context.Background(), fs, "/work/out", "/work/out.zip", compression))

			names, contents := readZip(t, fs, "/work/out.zip")
			assert.Equal(t, []string{
				"pkg/",
				"pkg/__init__.py",
				"pkg-1.0.dist-info/",
				"pkg-1.0.dist-info/RECORD",
				"pkg.whl",
			}, names)
			assert.Equal(t, "wheel bytes", contents["pkg.whl"])
			assert.Equal(t, "VERSION = '1.0'\n", contents["pkg/__init__.py"])

			_, err := fs.Stat("/work/out.zip" + tmpSuffix)
			assert.ErrorIs(t, err, os.ErrNotExist, "temporary archive should be gone")
		})
	}
}

func TestZip_Methods(t *testing.T) {
	fs := afero.NewMemMapFs()
	populate(t, fs, map[string]string{"/src/a.txt": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"})

	require.NoError(t, Zip(context.Background(), fs, "/src", "/src.zip", CompressionStore))

	data, err := afero.ReadFile(fs, "/src.zip")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, zip.Store, zr.File[0].Method)
}

func TestZip_EmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0o755))

	require.NoError(t, Zip(context.Background(), fs, "/empty", "/empty.zip", CompressionDeflate))

	names, _ := readZip(t, fs, "/empty.zip")
	assert.Empty(t, names)
}

func TestZip_OverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	populate(t, fs, map[string]string{
		"/out/new.whl": "new",
		"/out.zip":     "stale archive",
	})

	require.NoError(t, Zip(context.Background(), fs, "/out", "/out.zip", CompressionDeflate))

	names, _ := readZip(t, fs, "/out.zip")
	assert.Equal(t, []string{"new.whl"}, names)
}

func TestZip_Errors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		err := Zip(context.Background(), fs, "/missing", "/missing.zip", CompressionDeflate)
		require.ErrorIs(t, err, ErrArchiveWrite)

		ok, _ := afero.Exists(fs, "/missing.zip")
		assert.False(t, ok)
		ok, _ = afero.Exists(fs, "/missing.zip"+tmpSuffix)
		assert.False(t, ok, "partial archive should be removed")
	})

	t.Run("archive not writable", func(t *testing.T) {
		base := afero.NewMemMapFs()
		populate(t, base, map[string]string{"/out/pkg.whl": "x"})
		fs := &errorFS{Fs: base, errorPath: "/out.zip" + tmpSuffix}

		err := Zip(context.Background(), fs, "/out", "/out.zip", CompressionDeflate)
		require.ErrorIs(t, err, ErrArchiveWrite)
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("source file unreadable", func(t *testing.T) {
		base := afero.NewMemMapFs()
		populate(t, base, map[string]string{"/out/pkg.whl": "x", "/out/z.txt": "y"})
		fs := &errorFS{Fs: base, errorPath: "/out/z.txt"}

		err := Zip(context.Background(), fs, "/out", "/out.zip", CompressionDeflate)
		require.ErrorIs(t, err, ErrArchiveWrite)

		ok, _ := afero.Exists(base, "/out.zip")
		assert.False(t, ok, "no archive should be left behind")
		ok, _ = afero.Exists(base, "/out.zip"+tmpSuffix)
		assert.False(t, ok, "partial archive should be removed")
	})

	t.Run("rename fails", func(t *testing.T) {
		base := afero.NewMemMapFs()
		populate(t, base, map[string]string{"/out/pkg.whl": "x"})
		fs := &errorFS{Fs: base, errorPath: "/out.zip"}

		err := Zip(context.Background(), fs, "/out", "/out.zip", CompressionDeflate)
		require.ErrorIs(t, err, ErrArchiveWrite)
	})

	t.Run("context cancelled", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		populate(t, fs, map[string]string{"/out/pkg.whl": "x"})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Zip(ctx, fs, "/out", "/out.zip", CompressionDeflate)
		require.ErrorIs(t, err, ErrArchiveWrite)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestZip_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.whl"), []byte("real"), 0o644))

	if err := os.Symlink(filepath.Join(dir, "real.whl"), filepath.Join(src, "link.whl")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	fs := afero.NewOsFs()
	require.NoError(t, Zip(context.Background(), fs, src, src+ArchiveExt, CompressionDeflate))

	_, contents := readZip(t, fs, src+ArchiveExt)
	assert.Equal(t, map[string]string{"link.whl": "real"}, contents)
}

func TestZip_SkipsDanglingSymlink(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "pkg.whl"), []byte("wheel"), 0o644))

	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(src, "dangling")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	fs := afero.NewOsFs()
	require.NoError(t, Zip(context.Background(), fs, src, src+ArchiveExt, CompressionDeflate))

	names, contents := readZip(t, fs, src+ArchiveExt)
	assert.Equal(t, []string{"pkg.whl"}, names)
	assert.Equal(t, "wheel", contents["pkg.whl"])
}
