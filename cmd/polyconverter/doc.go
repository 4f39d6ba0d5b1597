// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Polyconverter converts the sandbox layouts in a folder into editable
// JSON sidecars and applies edited sidecars back to their layouts.
//
// Run it with no arguments inside a folder of layouts:
//
//	polyconverter
//
// Each "name.layout" without a sidecar gets "name.layout.json". Each
// sidecar that differs from its layout is written back, after a
// one-time copy of the original is saved as "name.layout.backup".
// Results are printed in order of importance once the folder has been
// processed.
//
// Exit status is 0 after a completed run (even when some files
// failed; they are reported), 1 if the folder cannot be listed, and 2
// for usage or configuration errors.
package main
