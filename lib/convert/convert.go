// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package convert performs the two per-file conversions: a binary layout
// into a new JSON sidecar, and an edited sidecar back into the layout.
//
// Expected failures (undecodable layouts, invalid JSON, failed writes,
// failed backups) are not Go errors: they are reported as outcomes in
// the returned [Result] so that the caller can print them and move on.
// A returned error means something unexpected happened (the input
// could not be read, a parsed document could not be encoded) and the
// caller decides how to report it.
//
// JSONToLayout never rewrites a layout whose bytes would not change,
// and never rewrites an existing layout without a backup being in
// place first.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/polyconverter/lib/atomicfile"
	"github.com/bureau-foundation/polyconverter/lib/backup"
	"github.com/bureau-foundation/polyconverter/lib/binhash"
	"github.com/bureau-foundation/polyconverter/lib/diaglog"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutpath"
)

// Mapper translates between a Document and sidecar text.
type Mapper interface {
	Marshal(document *layout.Document) ([]byte, error)
	Unmarshal(data []byte) (*layout.Document, error)
}

// Guard establishes a backup before an existing layout is overwritten.
// *backup.Guard implements it.
type Guard interface {
	Ensure(layoutPath, backupPath string) (backup.Status, error)
}

// newFileMode is the permission of sidecars and layouts created from
// scratch. Existing files keep their mode.
const newFileMode = 0o644

// Pipeline holds the collaborators shared by both conversions.
type Pipeline struct {
	Codec  layout.Codec
	Mapper Mapper
	Guard  Guard
	Logger *slog.Logger
}

// Result lists what a conversion did, in the order it happened. A
// result holds at most two outcomes.
type Result struct {
	Outcomes []diaglog.Entry
}

func (r *Result) add(category diaglog.Category, format string, args ...any) {
	r.Outcomes = append(r.Outcomes, diaglog.Entry{Category: category, Message: fmt.Sprintf(format, args...)})
}

// Categories returns the category of each outcome.
func (r Result) Categories() []diaglog.Category {
	categories := make([]diaglog.Category, len(r.Outcomes))
	for index, outcome := range r.Outcomes {
		categories[index] = outcome.Category
	}
	return categories
}

// LayoutToJSON decodes the layout at layoutPath and writes its sidecar
// next to it, replacing any sidecar already there. Callers skip layouts
// whose sidecar exists.
func (p *Pipeline) LayoutToJSON(layoutPath string) (Result, error) {
	var result Result
	sidecarPath := layoutpath.SidecarPath(layoutPath)
	logger := p.logger().With("file", layoutPath)

	data, err := os.ReadFile(layoutPath)
	if err != nil {
		return result, fmt.Errorf("reading layout: %w", err)
	}
	logger.Debug("read layout",
		"kind", layoutpath.Layout.String(),
		"bytes", len(data),
		"digest", binhash.FormatDigest(binhash.HashBytes(data)),
	)

	document, err := p.Codec.Decode(data)
	if err != nil {
		logger.Debug("layout did not decode", "error", err)
		result.add(diaglog.Error, "Couldn't read layout \"%s\": %v", layoutpath.DisplayName(layoutPath), err)
		return result, nil
	}
	logger.Debug("decoded layout", "records", len(document.Records), "kinds", layout.SortedKinds(document))

	text, err := p.Mapper.Marshal(document)
	if err != nil {
		result.add(diaglog.Error, "Failed to serialize \"%s\": %v", layoutpath.DisplayName(layoutPath), err)
		return result, nil
	}

	if err := atomicfile.Write(sidecarPath, text, newFileMode); err != nil {
		result.add(diaglog.Error, "Failed to save file \"%s\": %v", layoutpath.DisplayName(sidecarPath), err)
		return result, nil
	}

	logger.Debug("wrote sidecar", "sidecar", sidecarPath, "bytes", len(text))
	result.add(diaglog.Created, "Created \"%s\"", layoutpath.DisplayName(sidecarPath))
	return result, nil
}

// JSONToLayout parses the sidecar at sidecarPath, encodes it, and brings
// the sibling layout up to date.
//
// Outcomes:
//   - layout missing: Created
//   - layout identical to the encoding: NoChange, nothing written
//   - layout differs, first time: BackupMade then Applied
//   - layout differs, backup already present: Applied
func (p *Pipeline) JSONToLayout(sidecarPath string) (Result, error) {
	var result Result
	layoutPath := layoutpath.LayoutPathFromSidecar(sidecarPath)
	backupPath := layoutpath.BackupPathFromSidecar(sidecarPath)
	logger := p.logger().With("file", sidecarPath)

	text, err := os.ReadFile(sidecarPath)
	if err != nil {
		return result, fmt.Errorf("reading sidecar: %w", err)
	}
	logger.Debug("read sidecar", "kind", layoutpath.JSONSidecar.String(), "bytes", len(text))

	document, err := p.Mapper.Unmarshal(text)
	if err != nil {
		logger.Debug("sidecar did not parse", "error", err)
		result.add(diaglog.Error, "Invalid json content in \"%s\": %v", layoutpath.DisplayName(sidecarPath), err)
		return result, nil
	}

	encoded, err := p.Codec.Encode(document)
	if err != nil {
		return result, fmt.Errorf("encoding layout from %s: %w", sidecarPath, err)
	}

	existing, err := os.ReadFile(layoutPath)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("reading existing layout: %w", err)
	}

	if existed && bytes.Equal(existing, encoded) {
		logger.Debug("layout unchanged",
			"layout", layoutPath,
			"digest", binhash.FormatDigest(binhash.HashBytes(encoded)),
		)
		result.Outcomes = append(result.Outcomes, diaglog.Entry{Category: diaglog.NoChange})
		return result, nil
	}

	if existed {
		status, err := p.Guard.Ensure(layoutPath, backupPath)
		if err != nil {
			var backupError *backup.Error
			if !errors.As(err, &backupError) {
				return result, fmt.Errorf("backing up %s: %w", layoutPath, err)
			}
			result.add(diaglog.Error, "Failed to create backup file \"%s\": %v. Conversion aborted.",
				layoutpath.DisplayName(backupPath), backupError.Err)
			return result, nil
		}
		if status == backup.Created {
			result.add(diaglog.BackupMade, "Made backup \"%s\"", layoutpath.DisplayName(backupPath))
		}
	}

	if err := atomicfile.Write(layoutPath, encoded, newFileMode); err != nil {
		result.add(diaglog.Error, "Failed to save file \"%s\": %v", layoutpath.DisplayName(layoutPath), err)
		return result, nil
	}

	logger.Debug("wrote layout",
		"layout", layoutPath,
		"bytes", len(encoded),
		"digest", binhash.FormatDigest(binhash.HashBytes(encoded)),
	)
	if existed {
		result.add(diaglog.Applied, "Applied changes to \"%s\"", layoutpath.DisplayName(layoutPath))
	} else {
		result.add(diaglog.Created, "Converted json file into \"%s\"", layoutpath.DisplayName(layoutPath))
	}
	return result, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
