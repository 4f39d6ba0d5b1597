// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backup keeps a one-time safety copy of a layout before it is
// first overwritten.
//
// A backup is created at most once per layout: if anything already
// occupies the backup path, Ensure leaves it alone. The copy is made
// with an exclusive create, so even a backup that appears between the
// existence check and the copy is never overwritten. With verification
// enabled the copy is re-read and its BLAKE3 digest compared with the
// source, and a mismatching copy is removed.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/polyconverter/lib/binhash"
)

// Status reports what Ensure did.
type Status int

const (
	// Skipped means a backup already existed and nothing was written.
	Skipped Status = iota

	// Created means Ensure made a new backup during this call.
	Created
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Created:
		return "created"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Error reports a failure to establish a backup. The conversion that
// asked for the backup must not write anything.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backup %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Guard creates backups. The zero value copies without verification and
// logs nothing.
type Guard struct {
	// Verify compares BLAKE3 digests of the source and the copy.
	Verify bool

	Logger *slog.Logger
}

// Ensure makes sure a backup of layoutPath exists at backupPath. Any
// existing entry at backupPath, including a dangling symlink or a
// directory, counts as a backup. Failures are returned as *Error and
// leave no partial copy behind.
func (g *Guard) Ensure(layoutPath, backupPath string) (Status, error) {
	if _, err := os.Lstat(backupPath); err == nil {
		return Skipped, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Skipped, &Error{Path: backupPath, Err: fmt.Errorf("checking for an existing backup: %w", err)}
	}

	size, err := copyExclusive(layoutPath, backupPath)
	if err != nil {
		return Skipped, &Error{Path: backupPath, Err: err}
	}

	logger := g.logger()
	if g.Verify {
		digest, err := verify(layoutPath, backupPath)
		if err != nil {
			os.Remove(backupPath)
			return Skipped, &Error{Path: backupPath, Err: err}
		}
		logger.Debug("backup verified",
			"file", backupPath,
			"bytes", size,
			"digest", binhash.FormatDigest(digest),
		)
	}

	logger.Info("backup created", "source", layoutPath, "file", backupPath, "bytes", size)
	return Created, nil
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return g.Logger
}

// copyExclusive copies source to destination, failing if destination
// exists. On failure after destination was created, it is removed.
func copyExclusive(source, destination string) (int64, error) {
	input, err := os.Open(source)
	if err != nil {
		return 0, fmt.Errorf("opening source: %w", err)
	}
	defer input.Close()

	info, err := input.Stat()
	if err != nil {
		return 0, fmt.Errorf("inspecting source: %w", err)
	}

	output, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("creating backup file: %w", err)
	}

	size, err := io.Copy(output, input)
	if err != nil {
		output.Close()
		os.Remove(destination)
		return 0, fmt.Errorf("copying: %w", err)
	}
	if err := output.Sync(); err != nil {
		output.Close()
		os.Remove(destination)
		return 0, fmt.Errorf("syncing backup file: %w", err)
	}
	if err := output.Close(); err != nil {
		os.Remove(destination)
		return 0, fmt.Errorf("closing backup file: %w", err)
	}
	return size, nil
}

func verify(source, backup string) (binhash.Digest, error) {
	want, err := binhash.HashFile(source)
	if err != nil {
		return binhash.Digest{}, fmt.Errorf("verifying backup: %w", err)
	}
	got, err := binhash.HashFile(backup)
	if err != nil {
		return binhash.Digest{}, fmt.Errorf("verifying backup: %w", err)
	}
	if got != want {
		return binhash.Digest{}, fmt.Errorf("verifying backup: digest %s does not match source digest %s",
			binhash.FormatDigest(got), binhash.FormatDigest(want))
	}
	return got, nil
}
