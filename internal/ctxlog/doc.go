// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger is a pretty console handler on stderr. The level is read
// once from WHEELWRAP_LOG_LEVEL ("DEBUG", "INFO", "WARN" or "ERROR", anything
// else means "WARN") and can be changed later through LevelVar.
package ctxlog
