// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/wheelwrap/internal/ctxlog"
)

// EnvVar names the environment variable holding the config file URL.
const EnvVar = "WHEELWRAP_CONFIG"

// ErrGetConfigFile is returned when the config file cannot be fetched or read.
var ErrGetConfigFile = errors.New("failed to get config file")

// Load fetches the config file at url and parses it.
// url uses go-getter syntax, so it can be a local path or a remote source
// such as git::https://example.com/repo.git//wheelwrap.yaml?ref=main.
func Load(ctx context.Context, url string) (*Config, error) {
	data, name, err := getURL(ctx, url)
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "config file fetched", "url", url, "name", name, "bytes", len(data))

	cfg, err := Parse(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	return cfg, nil
}

// getURL retrieves the file at url using go-getter and returns its content
// and base name. The temporary download directory is removed before returning.
func getURL(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", ErrGetConfigFile
	}

	tmpDir, err := os.MkdirTemp("", "wheelwrap-getter-*")
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string

	// Remote sources are fetched as a directory and the file read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return nil, "", errors.Join(ErrGetConfigFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return nil, "", fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	data, err := os.ReadFile(filepath.Join(res.Dst, fileName))
	if err != nil {
		return nil, "", errors.Join(ErrGetConfigFile, err)
	}

	return data, fileName, nil
}

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	minimumGetterParts    = 3 // scheme, host and path
)

// splitFileNameFromGetterURL splits a go-getter URL whose subdirectory part
// ends in a file into the URL of the containing directory and the file name.
// A query string such as ?ref=main is kept on the returned URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var query string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if path, q, ok := strings.Cut(last, goGetterRefSeparator); ok {
		last, query = path, q
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if query != "" {
		newURL += goGetterRefSeparator + query
	}

	return newURL, fileName
}
