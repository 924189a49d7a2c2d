// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linker runs a wheel build into the directory of a requested output
// path and hard-links the single artifact it produced to that path.
package linker
