// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// writer is the encoding counterpart of reader. Like reader it keeps
// the first error and ignores writes after it.
type writer struct {
	buffer bytes.Buffer
	err    error
}

func (w *writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf(format, args...)
	}
}

func (w *writer) uint8(value uint8) {
	if w.err != nil {
		return
	}
	w.buffer.WriteByte(value)
}

func (w *writer) int32(value int32) {
	if w.err != nil {
		return
	}
	w.buffer.Write(binary.LittleEndian.AppendUint32(nil, uint32(value)))
}

func (w *writer) float32(value float32) {
	if w.err != nil {
		return
	}
	w.buffer.Write(binary.LittleEndian.AppendUint32(nil, math.Float32bits(value)))
}

func (w *writer) bool(value bool) {
	if value {
		w.uint8(1)
	} else {
		w.uint8(0)
	}
}

func (w *writer) length(n int) {
	if w.err != nil {
		return
	}
	value := uint32(n)
	for value >= 0x80 {
		w.buffer.WriteByte(byte(value) | 0x80)
		value >>= 7
	}
	w.buffer.WriteByte(byte(value))
}

func (w *writer) string(what, value string) {
	if w.err != nil {
		return
	}
	if len(value) > math.MaxInt32 {
		w.fail("%s: string of %d bytes is too long", what, len(value))
		return
	}
	if !utf8.ValidString(value) {
		w.fail("%s: invalid UTF-8", what)
		return
	}
	w.length(len(value))
	w.buffer.WriteString(value)
}

func (w *writer) count(what string, n int) {
	if n > math.MaxInt32 {
		w.fail("%s: %d items is too many", what, n)
		return
	}
	w.int32(int32(n))
}

func (w *writer) vec2(value Vec2) {
	w.float32(value.X)
	w.float32(value.Y)
}

func (w *writer) vec3(value Vec3) {
	w.float32(value.X)
	w.float32(value.Y)
	w.float32(value.Z)
}

func (w *writer) quaternion(value Quaternion) {
	w.float32(value.X)
	w.float32(value.Y)
	w.float32(value.Z)
	w.float32(value.W)
}

func (w *writer) material(what string, value Material) {
	if !value.Valid() {
		w.fail("%s: unknown material %d", what, uint8(value))
		return
	}
	w.uint8(uint8(value))
}
