// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package settings

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/wheelwrap/internal/archiver"
	"github.com/matt-FFFFFF/wheelwrap/internal/config"
	"github.com/matt-FFFFFF/wheelwrap/internal/interpreter"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `interpreter: /opt/py/bin/python3
interpreter_args: ["-I"]
env:
  PIP_NO_INDEX: "1"
compression: store
allow_build_failure: true
artifact_pattern: "*.whl"
`

func setup(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("executable bit checks do not apply on windows")
	}

	fs := afero.NewMemMapFs()
	for _, p := range []string{"/opt/py/bin/python3", "/usr/bin/python3", "/usr/local/bin/python3.13"} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("#!/bin/sh\n"), 0o755))
		require.NoError(t, fs.Chmod(p, 0o755))
	}

	stubs := gostub.Stub(&interpreter.FS, fs)
	t.Cleanup(stubs.Reset)
	t.Setenv("PATH", "/usr/bin"+string(os.PathListSeparator)+"/usr/local/bin")

	cfgPath := filepath.Join(t.TempDir(), "wheelwrap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o600))

	return cfgPath
}

func boolPtr(b bool) *bool { return &b }

func TestResolve_Defaults(t *testing.T) {
	setup(t)

	s, err := Resolve(context.Background(), Input{})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python3", s.Interpreter)
	assert.Equal(t, archiver.CompressionDeflate, s.Compression)
	assert.False(t, s.AllowBuildFailure)
	assert.Empty(t, s.ArtifactPattern)
	assert.Empty(t, s.InterpreterArgs)
	assert.Equal(t, []string{"-m", "pip"}, s.Args([]string{"-m", "pip"}))
}

func TestResolve_ConfigFile(t *testing.T) {
	cfgPath := setup(t)

	s, err := Resolve(context.Background(), Input{ConfigURL: cfgPath})
	require.NoError(t, err)
	assert.Equal(t, "/opt/py/bin/python3", s.Interpreter)
	assert.Equal(t, archiver.CompressionStore, s.Compression)
	assert.True(t, s.AllowBuildFailure)
	assert.Equal(t, "*.whl", s.ArtifactPattern)
	assert.Equal(t, map[string]string{"PIP_NO_INDEX": "1"}, s.Env)
	assert.Equal(t, []string{"-I", "-m", "build"}, s.Args([]string{"-m", "build"}))
}

func TestResolve_InputOverridesConfigFile(t *testing.T) {
	cfgPath := setup(t)

	s, err := Resolve(context.Background(), Input{
		ConfigURL:         cfgPath,
		Interpreter:       "python3.13",
		Compression:       "deflate",
		AllowBuildFailure: boolPtr(false),
		ArtifactPattern:   "*.tar.gz",
	})
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/python3.13", s.Interpreter)
	assert.Equal(t, archiver.CompressionDeflate, s.Compression)
	assert.False(t, s.AllowBuildFailure)
	assert.Equal(t, "*.tar.gz", s.ArtifactPattern)
}

func TestResolve_Errors(t *testing.T) {
	cfgPath := setup(t)

	tests := []struct {
		name    string
		in      Input
		wantErr error
	}{
		{
			name:    "missing config file",
			in:      Input{ConfigURL: filepath.Join(filepath.Dir(cfgPath), "missing.yaml")},
			wantErr: config.ErrGetConfigFile,
		},
		{
			name:    "bad compression",
			in:      Input{Compression: "xz"},
			wantErr: archiver.ErrUnknownCompression,
		},
		{
			name:    "unknown interpreter",
			in:      Input{Interpreter: "pypy3"},
			wantErr: interpreter.ErrInterpreterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrSettings)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSettings_Config(t *testing.T) {
	s := &Settings{
		Interpreter:     "/usr/bin/python3",
		InterpreterArgs: []string{"-I"},
		Compression:     archiver.CompressionStore,
		ArtifactPattern: "*.whl",
	}

	got := s.Config()
	assert.Equal(t, "/usr/bin/python3", got.Interpreter)
	assert.Equal(t, "store", got.Compression)
	require.NoError(t, got.Validate())
}
