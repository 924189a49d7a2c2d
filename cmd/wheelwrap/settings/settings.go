// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package settings holds the global flags of the wheelwrap CLI and merges them
// with the environment and the optional config file.
package settings

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/matt-FFFFFF/wheelwrap/internal/archiver"
	"github.com/matt-FFFFFF/wheelwrap/internal/config"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
	"github.com/matt-FFFFFF/wheelwrap/internal/interpreter"
	"github.com/urfave/cli/v3"
)

// Global flag names.
const (
	ConfigFlag            = "config"
	InterpreterFlag       = "interpreter"
	CompressionFlag       = "compression"
	AllowBuildFailureFlag = "allow-build-failure"
	ArtifactPatternFlag   = "artifact-pattern"
	LogFormatFlag         = "log-format"
)

// ErrSettings is returned when the effective settings cannot be worked out.
var ErrSettings = errors.New("failed to resolve settings")

// Flags returns the global flags. They must be given before the subcommand name.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage: "URL of a YAML, TOML or HCL config file. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			Sources:  cli.EnvVars(config.EnvVar),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      InterpreterFlag,
			Aliases:   []string{"i"},
			Usage:     "Python interpreter to run, as a path or a name looked up in PATH",
			Sources:   cli.EnvVars(interpreter.EnvVar),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:        CompressionFlag,
			Usage:       "Archive compression, deflate or store",
			DefaultText: string(archiver.CompressionDeflate),
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        AllowBuildFailureFlag,
			Usage:       "Link the wheel even when the build exits non-zero",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:        ArtifactPatternFlag,
			Usage:       "Glob the built artifact's file name must match",
			DefaultText: "*",
			OnlyOnce:    true,
		},
		&cli.StringFlag{
			Name:     LogFormatFlag,
			Usage:    "Log output format, pretty or json",
			Value:    "pretty",
			OnlyOnce: true,
		},
	}
}

// Input is what the user asked for on the command line and in the environment.
// A nil pointer or empty string means "not given".
type Input struct {
	ConfigURL         string
	Interpreter       string
	Compression       string
	AllowBuildFailure *bool
	ArtifactPattern   string
}

// InputFromCommand reads the global flags of cmd's root command.
func InputFromCommand(cmd *cli.Command) Input {
	root := cmd.Root()

	in := Input{
		ConfigURL:       root.String(ConfigFlag),
		Interpreter:     root.String(InterpreterFlag),
		Compression:     root.String(CompressionFlag),
		ArtifactPattern: root.String(ArtifactPatternFlag),
	}

	if root.IsSet(AllowBuildFailureFlag) {
		v := root.Bool(AllowBuildFailureFlag)
		in.AllowBuildFailure = &v
	}

	return in
}

// Settings are the effective values used by the subcommands.
type Settings struct {
	ConfigURL         string
	Interpreter       string
	InterpreterArgs   []string
	Env               map[string]string
	Compression       archiver.Compression
	AllowBuildFailure bool
	ArtifactPattern   string
}

// Resolve merges in with the config file it names, if any, and resolves the interpreter.
// Values from in take precedence over the config file.
func Resolve(ctx context.Context, in Input) (*Settings, error) {
	cfg := new(config.Config)

	if in.ConfigURL != "" {
		loaded, err := config.Load(ctx, in.ConfigURL)
		if err != nil {
			return nil, errors.Join(ErrSettings, err)
		}

		cfg = loaded
	}

	s := &Settings{
		ConfigURL:         in.ConfigURL,
		InterpreterArgs:   slices.Clone(cfg.InterpreterArgs),
		Env:               maps.Clone(cfg.Env),
		AllowBuildFailure: cfg.AllowBuildFailure,
		ArtifactPattern:   firstNonEmpty(in.ArtifactPattern, cfg.ArtifactPattern),
	}

	if in.AllowBuildFailure != nil {
		s.AllowBuildFailure = *in.AllowBuildFailure
	}

	compression, err := archiver.ParseCompression(firstNonEmpty(in.Compression, cfg.Compression))
	if err != nil {
		return nil, errors.Join(ErrSettings, err)
	}

	s.Compression = compression

	path, err := interpreter.Select(in.Interpreter, cfg.Interpreter)
	if err != nil {
		return nil, errors.Join(ErrSettings, err)
	}

	s.Interpreter = path

	ctxlog.Debug(ctx, "settings resolved",
		"interpreter", s.Interpreter,
		"config", s.ConfigURL,
		"compression", string(s.Compression),
	)

	return s, nil
}

// Config returns s in config file form.
func (s *Settings) Config() *config.Config {
	return &config.Config{
		Interpreter:       s.Interpreter,
		InterpreterArgs:   s.InterpreterArgs,
		Env:               s.Env,
		Compression:       string(s.Compression),
		AllowBuildFailure: s.AllowBuildFailure,
		ArtifactPattern:   s.ArtifactPattern,
	}
}

// Args returns the interpreter arguments followed by args.
func (s *Settings) Args(args []string) []string {
	return slices.Concat(s.InterpreterArgs, args)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
