// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// maxLengthBytes is the longest LEB128 encoding of a non-negative int32.
const maxLengthBytes = 5

// reader is the decoding cursor over a layout byte slice. The first
// failure is recorded in err and turns every later read into a no-op
// returning a zero value, so decode functions check err once at the
// end instead of after every field.
type reader struct {
	data   []byte
	offset int
	err    error
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = &DecodeError{Offset: r.offset, Reason: fmt.Sprintf(format, args...)}
	}
}

func (r *reader) remaining() int {
	return len(r.data) - r.offset
}

// take returns the next n bytes and advances the cursor.
func (r *reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.remaining() {
		r.fail("truncated %s: need %d bytes, have %d", what, n, r.remaining())
		return nil
	}
	chunk := r.data[r.offset : r.offset+n]
	r.offset += n
	return chunk
}

func (r *reader) uint8(what string) uint8 {
	chunk := r.take(1, what)
	if chunk == nil {
		return 0
	}
	return chunk[0]
}

func (r *reader) int32(what string) int32 {
	chunk := r.take(4, what)
	if chunk == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(chunk))
}

func (r *reader) float32(what string) float32 {
	chunk := r.take(4, what)
	if chunk == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(chunk))
}

// bool accepts only 0 and 1. Any other byte would decode to true and
// re-encode as 1, breaking byte-for-byte round trips.
func (r *reader) bool(what string) bool {
	start := r.offset
	value := r.uint8(what)
	if r.err != nil {
		return false
	}
	if value > 1 {
		r.offset = start
		r.fail("%s: invalid bool byte 0x%02x", what, value)
		return false
	}
	return value == 1
}

// length reads an unsigned LEB128 string length. Only the minimal
// encoding is accepted.
func (r *reader) length(what string) int {
	if r.err != nil {
		return 0
	}
	start := r.offset
	var value uint64
	for index := 0; index < maxLengthBytes; index++ {
		b := r.uint8(what + " length")
		if r.err != nil {
			return 0
		}
		value |= uint64(b&0x7f) << (7 * index)
		if b&0x80 != 0 {
			continue
		}
		if index > 0 && b == 0 {
			r.offset = start
			r.fail("%s length: non-minimal encoding", what)
			return 0
		}
		if value > math.MaxInt32 {
			r.offset = start
			r.fail("%s length: %d exceeds int32", what, value)
			return 0
		}
		return int(value)
	}
	r.offset = start
	r.fail("%s length: encoding longer than %d bytes", what, maxLengthBytes)
	return 0
}

func (r *reader) string(what string) string {
	n := r.length(what)
	chunk := r.take(n, what)
	if chunk == nil {
		return ""
	}
	if !utf8.Valid(chunk) {
		r.offset -= n
		r.fail("%s: invalid UTF-8", what)
		return ""
	}
	return string(chunk)
}

// count reads an int32 element count. minItemSize bounds the count by
// the bytes left so that a corrupt count cannot trigger a huge
// allocation.
func (r *reader) count(what string, minItemSize int) int {
	start := r.offset
	value := r.int32(what + " count")
	if r.err != nil {
		return 0
	}
	if value < 0 {
		r.offset = start
		r.fail("%s count: negative value %d", what, value)
		return 0
	}
	if int(value) > r.remaining()/minItemSize {
		r.offset = start
		r.fail("%s count: %d exceeds remaining %d bytes", what, value, r.remaining())
		return 0
	}
	return int(value)
}

func (r *reader) vec2(what string) Vec2 {
	return Vec2{X: r.float32(what + ".x"), Y: r.float32(what + ".y")}
}

func (r *reader) vec3(what string) Vec3 {
	return Vec3{X: r.float32(what + ".x"), Y: r.float32(what + ".y"), Z: r.float32(what + ".z")}
}

func (r *reader) quaternion(what string) Quaternion {
	return Quaternion{
		X: r.float32(what + ".x"),
		Y: r.float32(what + ".y"),
		Z: r.float32(what + ".z"),
		W: r.float32(what + ".w"),
	}
}
