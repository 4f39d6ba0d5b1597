// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package diaglog

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode selects whether markers are colored.
type ColorMode string

const (
	// ColorAuto colors markers when the output is a terminal and the
	// environment (NO_COLOR, CLICOLOR_FORCE) allows it.
	ColorAuto ColorMode = "auto"

	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a color mode name. The empty string means
// ColorAuto.
func ParseColorMode(name string) (ColorMode, error) {
	switch ColorMode(name) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(name), nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always, or never)", name)
	}
}

// Printer writes entries to the user. Styling only ever wraps the
// marker; the text of a line is the same with and without color.
type Printer struct {
	writer io.Writer
	styles map[Category]lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, mode ColorMode) *Printer {
	profile := colorProfile(w, mode)

	// SetColorProfile is needed in addition to WithProfile: the
	// renderer otherwise re-detects the profile from the environment.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return &Printer{
		writer: w,
		styles: map[Category]lipgloss.Style{
			Fatal:      renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Error:      renderer.NewStyle().Foreground(lipgloss.Color("1")),
			BackupMade: renderer.NewStyle().Foreground(lipgloss.Color("3")),
			Created:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
			Applied:    renderer.NewStyle().Foreground(lipgloss.Color("6")),
			Reserved:   renderer.NewStyle().Faint(true),
			Info:       renderer.NewStyle().Foreground(lipgloss.Color("4")),
		},
	}
}

func colorProfile(w io.Writer, mode ColorMode) termenv.Profile {
	switch mode {
	case ColorAlways:
		return termenv.ANSI256
	case ColorNever:
		return termenv.Ascii
	}
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(file).EnvColorProfile()
}

// Line writes a single entry.
func (p *Printer) Line(entry Entry) {
	marker := entry.Category.Marker()
	if style, ok := p.styles[entry.Category]; ok {
		marker = style.Render(marker)
	}
	fmt.Fprintf(p.writer, "%s %s\n", marker, entry.Message)
}

// Status writes an informational line immediately.
func (p *Printer) Status(message string) {
	p.Line(Entry{Category: Info, Message: message})
}

// Print writes every entry of log in print order and returns how many
// lines were written.
func (p *Printer) Print(log *Log) int {
	entries := log.Entries()
	for _, entry := range entries {
		p.Line(entry)
	}
	return len(entries)
}

// Finish prints log followed by the summary line chosen from counts.
func (p *Printer) Finish(log *Log, counts Counts) {
	printed := p.Print(log)
	p.Status(SummaryLine(printed, counts))
}
