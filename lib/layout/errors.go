// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import "fmt"

// DecodeError reports bytes that do not conform to the layout format.
// Offset is the byte position of the offending field, or -1 when the
// underlying decoder does not report positions.
type DecodeError struct {
	Offset int
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	message := e.Reason
	if e.Err != nil {
		if message == "" {
			message = e.Err.Error()
		} else {
			message += ": " + e.Err.Error()
		}
	}
	if e.Offset < 0 {
		return message
	}
	return fmt.Sprintf("at byte %d: %s", e.Offset, message)
}

func (e *DecodeError) Unwrap() error { return e.Err }
