// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package process runs a single child process on behalf of wheelwrap.
//
// The child shares wheelwrap's stdin and stdout. Its stderr is streamed to the
// configured writer through a teereader so the last line can be quoted when the
// child fails. Run blocks until the child exits; there is no timeout. Termination
// signals received by wheelwrap are forwarded to the child, and the child is
// killed on a repeated signal or when the context is cancelled.
package process
