// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch converts every layout and sidecar in one directory.
//
// The directory is listed once, up front, without recursion. Entries
// are handled in name order:
//
//   - backups are counted and otherwise ignored
//   - sidecars are converted into their layout
//   - layouts are converted into a new sidecar, unless one exists
//   - everything else is ignored
//
// Files produced during the run are not revisited until the next run.
// One file failing, even by panicking, never stops the others: the
// failure becomes a Fatal entry in the diagnostic log scoped to that
// file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/bureau-foundation/polyconverter/lib/convert"
	"github.com/bureau-foundation/polyconverter/lib/diaglog"
	"github.com/bureau-foundation/polyconverter/lib/layoutpath"
)

// Converter performs the per-file conversions. *convert.Pipeline
// implements it.
type Converter interface {
	LayoutToJSON(layoutPath string) (convert.Result, error)
	JSONToLayout(sidecarPath string) (convert.Result, error)
}

// DirectoryError reports that the directory itself could not be listed.
// Nothing was converted.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// Summary counts what a run saw.
type Summary struct {
	// Processed is the number of files handed to a conversion,
	// whatever the outcome.
	Processed int

	// Backups is the number of backup files seen.
	Backups int

	// SkippedLayouts is the number of layouts left alone because their
	// sidecar exists.
	SkippedLayouts int

	// Failed is the number of files that ended in a Fatal entry.
	Failed int
}

// Counts returns the totals that select the diagnostic summary line.
func (s Summary) Counts() diaglog.Counts {
	return diaglog.Counts{Processed: s.Processed, Backups: s.Backups}
}

// Runner processes one directory.
type Runner struct {
	Directory string
	Converter Converter
	Log       *diaglog.Log
	Logger    *slog.Logger

	// Started, if set, is called once the directory has been listed
	// and before the first file is processed.
	Started func()
}

// Run lists the directory and processes its entries. A listing failure
// returns a *DirectoryError. Cancellation is checked between files; a
// cancelled run returns the summary so far and the context's error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	logger := r.logger()

	names, err := listFiles(r.Directory)
	if err != nil {
		return summary, &DirectoryError{Path: r.Directory, Err: err}
	}
	logger.Debug("listed directory", "directory", r.Directory, "files", len(names))

	if r.Started != nil {
		r.Started()
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		path := filepath.Join(r.Directory, name)
		kind := layoutpath.Classify(name)
		switch kind {
		case layoutpath.Backup:
			summary.Backups++
			logger.Debug("skipping backup", "file", name, "kind", kind.String())

		case layoutpath.JSONSidecar:
			summary.Processed++
			r.process(&summary, path, kind, r.Converter.JSONToLayout)

		case layoutpath.Layout:
			if exists(layoutpath.SidecarPath(path)) {
				summary.SkippedLayouts++
				logger.Debug("skipping layout with sidecar", "file", name, "kind", kind.String())
				continue
			}
			summary.Processed++
			r.process(&summary, path, kind, r.Converter.LayoutToJSON)

		default:
			logger.Debug("ignoring file", "file", name, "kind", kind.String())
		}
	}

	logger.Info("directory processed",
		"directory", r.Directory,
		"processed", summary.Processed,
		"backups", summary.Backups,
		"skipped_layouts", summary.SkippedLayouts,
		"failed", summary.Failed,
	)
	return summary, nil
}

// process runs one conversion and records its outcomes. Errors and
// panics become a Fatal entry.
func (r *Runner) process(summary *Summary, path string, kind layoutpath.Kind, conversion func(string) (convert.Result, error)) {
	logger := r.logger()
	result, err := safely(path, conversion)
	if err != nil {
		summary.Failed++
		logger.Error("conversion failed", "file", path, "kind", kind.String(), "error", err)
		r.Log.Add(diaglog.Entry{
			Category: diaglog.Fatal,
			Message: fmt.Sprintf("Couldn't convert \"%s\". See below for details.\n///%v\n///",
				layoutpath.DisplayName(path), err),
		})
		return
	}
	logger.Debug("converted", "file", path, "kind", kind.String(), "outcomes", result.Categories())
	r.Log.Add(result.Outcomes...)
}

// safely calls conversion, turning a panic into an error that carries
// the stack.
func safely(path string, conversion func(string) (convert.Result, error)) (result convert.Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v\n%s", recovered, debug.Stack())
		}
	}()
	return conversion(path)
}

// listFiles returns the names of the regular files in directory, and of
// the symlinks that resolve to regular files, sorted by name.
func listFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		switch {
		case entry.Type().IsRegular():
			names = append(names, entry.Name())
		case entry.Type()&fs.ModeSymlink != 0:
			// Dangling links and links to directories are skipped.
			info, err := os.Stat(filepath.Join(directory, entry.Name()))
			if err == nil && info.Mode().IsRegular() {
				names = append(names, entry.Name())
			}
		}
	}
	return names, nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
