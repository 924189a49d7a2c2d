// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"io"
	"strings"
	"sync"
)

// LastLineTeeReader wraps an io.Reader, remembering the last non-blank line that
// passed through it. It does not retain the rest of the stream.
// It is safe for concurrent use.
type LastLineTeeReader struct {
	reader         io.Reader
	lastLine       string
	partialBuilder strings.Builder // incomplete trailing line
	mu             sync.RWMutex
}

// NewLastLineTeeReader creates a new LastLineTeeReader that wraps the given reader.
func NewLastLineTeeReader(r io.Reader) *LastLineTeeReader {
	return &LastLineTeeReader{
		reader: r,
	}
}

// Read implements io.Reader.
func (lt *LastLineTeeReader) Read(p []byte) (n int, err error) {
	n, err = lt.reader.Read(p)
	if n > 0 {
		lt.mu.Lock()
		defer lt.mu.Unlock()

		lt.processNewData(string(p[:n]))
	}

	return n, err //nolint:wrapcheck
}

// processNewData must be called with the write lock held.
func (lt *LastLineTeeReader) processNewData(data string) {
	lt.partialBuilder.WriteString(data)

	lines := strings.Split(lt.partialBuilder.String(), "\n")
	if len(lines) == 1 {
		return
	}

	// The final element is whatever follows the last newline, possibly empty.
	rest := lines[len(lines)-1]
	for i := len(lines) - 2; i >= 0; i-- {
		if line := strings.TrimRight(lines[i], "\r"); strings.TrimSpace(line) != "" {
			lt.lastLine = line
			break
		}
	}

	lt.partialBuilder.Reset()
	lt.partialBuilder.WriteString(rest)
}

// GetLastLine returns the last complete, non-blank line read so far.
// If no such line exists yet the trailing partial line is returned instead, so
// output that never ends in a newline is still reported.
// If maxLength > 3 and the line is longer, it is truncated and "..." appended.
func (lt *LastLineTeeReader) GetLastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	result := lt.lastLine
	if partial := strings.TrimSpace(lt.partialBuilder.String()); partial != "" {
		result = partial
	}

	if maxLength > 3 && len(result) > maxLength {
		result = result[:maxLength-3] + "..."
	}

	return result
}

// GetPartialLine returns the data after the last newline.
func (lt *LastLineTeeReader) GetPartialLine() string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.partialBuilder.String()
}
