// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package layoutpath classifies files in a layout directory by suffix
// and derives the sibling paths that pair a binary layout with its JSON
// sidecar and its backup.
//
// All functions are pure: they inspect the path string only and never
// touch the filesystem.
package layoutpath

import "strings"

// Recognized suffixes. SidecarSuffix and BackupSuffix both extend
// LayoutSuffix, so classification checks them first.
const (
	LayoutSuffix  = ".layout"
	SidecarSuffix = ".layout.json"
	BackupSuffix  = ".layout.backup"
)

// Kind identifies what role a file plays in a layout directory.
type Kind int

const (
	// Unrecognized files are ignored by the converter.
	Unrecognized Kind = iota
	// Layout is a binary layout file.
	Layout
	// JSONSidecar is the human-editable JSON form of a layout.
	JSONSidecar
	// Backup is the pre-overwrite copy of a layout.
	Backup
)

// String returns the lowercase name of the kind, used in log attributes.
func (k Kind) String() string {
	switch k {
	case Layout:
		return "layout"
	case JSONSidecar:
		return "json"
	case Backup:
		return "backup"
	default:
		return "unrecognized"
	}
}

// Classify returns the kind of path based on its suffix. The most
// specific suffix wins: "a.layout.json" is a JSONSidecar, never a
// Layout.
func Classify(path string) Kind {
	switch {
	case strings.HasSuffix(path, BackupSuffix):
		return Backup
	case strings.HasSuffix(path, SidecarSuffix):
		return JSONSidecar
	case strings.HasSuffix(path, LayoutSuffix):
		return Layout
	default:
		return Unrecognized
	}
}

// Stem returns path with its recognized suffix removed. Unrecognized
// paths are returned unchanged.
func Stem(path string) string {
	switch Classify(path) {
	case Backup:
		return strings.TrimSuffix(path, BackupSuffix)
	case JSONSidecar:
		return strings.TrimSuffix(path, SidecarSuffix)
	case Layout:
		return strings.TrimSuffix(path, LayoutSuffix)
	default:
		return path
	}
}

// SidecarPath returns the JSON sidecar path paired with a layout path.
func SidecarPath(layoutPath string) string {
	return Stem(layoutPath) + SidecarSuffix
}

// BackupPath returns the backup path paired with a layout path.
func BackupPath(layoutPath string) string {
	return Stem(layoutPath) + BackupSuffix
}

// LayoutPathFromSidecar returns the layout path a sidecar converts into.
func LayoutPathFromSidecar(sidecarPath string) string {
	return Stem(sidecarPath) + LayoutSuffix
}

// BackupPathFromSidecar returns the backup path guarding the layout a
// sidecar converts into.
func BackupPathFromSidecar(sidecarPath string) string {
	return Stem(sidecarPath) + BackupSuffix
}

// DisplayName returns the final element of path. Both '/' and '\' are
// treated as separators so that names render the same regardless of
// where the directory listing came from.
func DisplayName(path string) string {
	return path[strings.LastIndexAny(path, `/\`)+1:]
}
