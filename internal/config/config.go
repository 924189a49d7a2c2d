// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/wheelwrap/internal/archiver"
)

var (
	// ErrUnsupportedFormat is returned for a config file extension other than yaml, yml, toml or hcl.
	ErrUnsupportedFormat = errors.New("unsupported config file format")
	// ErrParseConfig is returned when the file cannot be decoded.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrInvalidConfig is returned when a decoded value is not acceptable.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the settings that can be given in a config file.
// Every field is optional; the zero value means "use the default".
type Config struct {
	Interpreter       string            `yaml:"interpreter,omitempty" toml:"interpreter,omitempty" hcl:"interpreter,optional"`
	InterpreterArgs   []string          `yaml:"interpreter_args,omitempty" toml:"interpreter_args,omitempty" hcl:"interpreter_args,optional"`
	Env               map[string]string `yaml:"env,omitempty" toml:"env,omitempty" hcl:"env,optional"`
	Compression       string            `yaml:"compression,omitempty" toml:"compression,omitempty" hcl:"compression,optional"`
	AllowBuildFailure bool              `yaml:"allow_build_failure" toml:"allow_build_failure" hcl:"allow_build_failure,optional"`
	ArtifactPattern   string            `yaml:"artifact_pattern,omitempty" toml:"artifact_pattern,omitempty" hcl:"artifact_pattern,optional"`
}

// Format is a config file syntax.
type Format string

const (
	// FormatYAML is YAML, decoded with goccy/go-yaml.
	FormatYAML Format = "yaml"
	// FormatTOML is TOML, decoded with pelletier/go-toml.
	FormatTOML Format = "toml"
	// FormatHCL is native HCL syntax.
	FormatHCL Format = "hcl"
)

// FormatFromName picks the format from the file extension of name.
func FormatFromName(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Parse decodes data, choosing the format from name, and validates the result.
func Parse(name string, data []byte) (*Config, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}

	cfg := new(Config)

	switch format {
	case FormatYAML:
		err = yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField())
	case FormatTOML:
		err = decodeTOML(data, cfg)
	case FormatHCL:
		err = decodeHCL(name, data, cfg)
	}

	if err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have a restricted set of forms.
func (c *Config) Validate() error {
	if _, err := archiver.ParseCompression(c.Compression); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if c.ArtifactPattern != "" {
		if _, err := filepath.Match(c.ArtifactPattern, ""); err != nil {
			return fmt.Errorf("%w: artifact_pattern %q: %w", ErrInvalidConfig, c.ArtifactPattern, err)
		}
	}

	for k := range c.Env {
		if k == "" || strings.Contains(k, "=") {
			return fmt.Errorf("%w: env key %q", ErrInvalidConfig, k)
		}
	}

	return nil
}

// YAML renders c as YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
