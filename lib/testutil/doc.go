// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test fixtures for polyconverter
// packages.
//
// [SampleDocument] returns a layout that exercises every record kind,
// and [EncodeLayout] turns it into bytes with a given codec. Tests that
// drive the conversion pipeline or the directory runner build their
// fixture directories with [WriteFile] and compare before/after state
// with [Snapshot], which captures every file name and its contents so
// that idempotence checks reduce to a single equality.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
