// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layoutjson

import (
	"fmt"
	"unicode/utf8"
)

// ParseError reports sidecar text that cannot be mapped to a Document.
// Line and Column are 1-based; Column counts runes. Both are zero when
// the position is unknown.
type ParseError struct {
	Line   int
	Column int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	message := e.Reason
	if e.Err != nil {
		if message == "" {
			message = e.Err.Error()
		} else {
			message += ": " + e.Err.Error()
		}
	}
	if e.Line == 0 {
		return message
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// position converts a byte offset in text to a 1-based line and column.
func position(text []byte, offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	line = 1
	lineStart := 0
	for index := range offset {
		if text[index] == '\n' {
			line++
			lineStart = index + 1
		}
	}
	return line, utf8.RuneCount(text[lineStart:offset]) + 1
}
