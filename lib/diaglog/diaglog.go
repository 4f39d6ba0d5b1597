// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package diaglog collects the user-facing result lines of a conversion
// run and prints them in a fixed order.
//
// Every converted file contributes zero or more [Entry] values. Entries
// are printed after the whole directory has been processed, sorted by
// [Category] so that failures come first and informational lines last;
// within a category the order of arrival is kept. Each line is rendered
// as "<marker> <message>", for example:
//
//	[Fatal Error] Couldn't convert "a.layout". See below for details.
//	[Error] Invalid json content in "b.layout.json": line 3, column 7: ...
//	[@] Made backup "c.layout.backup"
//	[+] Created "d.layout.json"
//	[*] Applied changes to "c.layout"
//	[>] Done.
//
// The log is for people. Structured operational logging goes through
// log/slog to stderr and is unrelated.
package diaglog

import (
	"fmt"
	"slices"
)

// Category classifies an entry. The declaration order is the print
// order.
type Category int

const (
	// Fatal marks an unexpected failure while converting one file.
	Fatal Category = iota

	// Error marks an expected, recoverable failure such as invalid
	// input or a failed write.
	Error

	// BackupMade reports that a one-time backup was written.
	BackupMade

	// Created reports a newly created output file.
	Created

	// Applied reports that an existing layout was rewritten.
	Applied

	// Reserved is printed after Applied and is not produced by the
	// converter itself.
	Reserved

	// Info is a status or summary line.
	Info

	// NoChange records a file that needed no work. It has no marker
	// and is never printed.
	NoChange
)

var categoryNames = [...]string{
	Fatal:      "fatal",
	Error:      "error",
	BackupMade: "backup",
	Created:    "created",
	Applied:    "applied",
	Reserved:   "reserved",
	Info:       "info",
	NoChange:   "no-change",
}

var categoryMarkers = [...]string{
	Fatal:      "[Fatal Error]",
	Error:      "[Error]",
	BackupMade: "[@]",
	Created:    "[+]",
	Applied:    "[*]",
	Reserved:   "[.]",
	Info:       "[>]",
	NoChange:   "",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Marker returns the bracketed prefix printed before messages of this
// category.
func (c Category) Marker() string {
	if c >= 0 && int(c) < len(categoryMarkers) {
		return categoryMarkers[c]
	}
	return ""
}

// Entry is one result line.
type Entry struct {
	Category Category
	Message  string
}

// Log accumulates entries for later printing. The zero value is ready
// to use.
type Log struct {
	entries []Entry
}

// Add appends entries, discarding any with an empty message or without
// a marker.
func (l *Log) Add(entries ...Entry) {
	for _, entry := range entries {
		if entry.Message == "" || entry.Category.Marker() == "" {
			continue
		}
		l.entries = append(l.entries, entry)
	}
}

// Len returns the number of printable entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns the printable entries in print order: stable-sorted
// by category.
func (l *Log) Entries() []Entry {
	sorted := slices.Clone(l.entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return int(a.Category) - int(b.Category)
	})
	return sorted
}

// Counts are the directory totals that select the summary line.
type Counts struct {
	// Processed is the number of files handed to a conversion.
	Processed int

	// Backups is the number of backup files seen and skipped.
	Backups int
}

// SummaryLine returns the closing message for a run that printed the
// given number of entries.
func SummaryLine(printed int, counts Counts) string {
	switch {
	case printed > 0:
		return "Done."
	case counts.Processed > 0:
		return "All files checked, no changes to apply."
	case counts.Backups == 0:
		return "There are no layout files to convert in this folder."
	default:
		return "The only layouts detected are backups and were ignored."
	}
}
