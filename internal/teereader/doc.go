// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader watches a stream of child process output and remembers its
// last meaningful line, so a failure can be reported with the child's own
// final message while the stream itself is passed through untouched.
package teereader
