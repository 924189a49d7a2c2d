// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether wheelwrap's own log output should carry ANSI
// color codes and applies them. NO_COLOR and FORCE_COLOR are honoured before
// falling back to terminal detection on stderr.
package color
