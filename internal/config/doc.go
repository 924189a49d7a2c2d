// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads optional wheelwrap settings from a YAML, TOML or HCL file.
// Files are fetched with go-getter, so any source it understands can be used.
package config
