// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package archiver installs a package into a directory by running the
// interpreter, then zips that directory into a sibling "<dir>.zip".
//
// The directory is created first (idempotently). A child that fails aborts the
// run before anything is archived, and nothing is cleaned up. The archive is
// written to a temporary file next to its final name and renamed into place,
// so a failed archive step never leaves a truncated zip behind.
package archiver
