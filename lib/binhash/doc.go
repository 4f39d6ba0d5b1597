// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content digests for layout files.
//
// The backup guard hashes the source layout and the freshly written
// backup and refuses to continue a conversion unless the two digests
// match, so a backup that was silently truncated or corrupted on its
// way to disk is never trusted. The directory runner also attaches
// digests to its debug log events, which makes it possible to tell from
// the log alone whether a layout changed between runs.
//
// The API surface is three functions:
//
//   - [HashFile] streams a file through BLAKE3 with constant memory
//     usage regardless of file size
//   - [HashBytes] hashes bytes already in memory
//   - [FormatDigest] converts a digest to its hex string form for log
//     output
//
// This package has no dependencies on other polyconverter packages.
package binhash
