// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package layout defines the sandbox layout [Document] and the codecs
// that translate it to and from bytes.
//
// A Document is a small header (version, theme, budget) followed by an
// ordered list of records. Records are a closed tagged union: each
// concrete type (Joint, Edge, Spring, Piston, Vehicle, Checkpoint,
// Platform) reports its [Kind], and decoders pick the concrete shape from
// the tag through an explicit dispatch table rather than reflection.
//
// Two codecs implement [Codec]:
//
//   - [Binary]: the native little-endian format. Strings carry an
//     unsigned LEB128 length prefix, bools are a single 0/1 byte, floats
//     are IEEE-754 float32 bits, and lists carry an int32 count. Decode
//     rejects anything whose re-encoding would differ (non-minimal
//     lengths, bool bytes other than 0 and 1, invalid UTF-8, trailing
//     bytes), so encode(decode(b)) == b for every accepted input.
//   - [CBOR]: the same document as Core Deterministic CBOR via
//     lib/codec, for tooling that prefers a self-describing format.
//
// Decode failures are reported as *[DecodeError].
package layout
