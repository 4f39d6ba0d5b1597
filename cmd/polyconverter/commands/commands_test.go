// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/polyconverter/cmd/polyconverter/cli"
	"github.com/bureau-foundation/polyconverter/lib/config"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutjson"
	"github.com/bureau-foundation/polyconverter/lib/testutil"
)

// harness runs the command tree against in-memory output.
type harness struct {
	ctx    context.Context
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   bytes.Buffer
	level  slog.Level
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	return &harness{ctx: context.Background()}
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	return newRoot(&environment{
		ctx:    h.ctx,
		stdout: &h.stdout,
		stderr: &h.stderr,
		newLogger: func(level slog.Level) *slog.Logger {
			h.level = level
			return slog.New(slog.NewJSONHandler(&h.logs, &slog.HandlerOptions{Level: level}))
		},
	}).Execute(args)
}

func TestConvertFreshLayout(t *testing.T) {
	h := newHarness(t)
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument()))

	if err := h.run("--dir", directory); err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "[>] Working...\n[+] Created \"bridge.layout.json\"\n[>] Done.\n"
	if h.stdout.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", h.stdout.String(), want)
	}

	if err := h.run("-d", directory); err != nil {
		t.Fatalf("second convert: %v", err)
	}
	want = "[>] Working...\n[>] All files checked, no changes to apply.\n"
	if h.stdout.String() != want {
		t.Errorf("second run output:\n%s\nwant:\n%s", h.stdout.String(), want)
	}
	if h.level != slog.LevelInfo {
		t.Errorf("log level = %v, want info", h.level)
	}
}

func TestConvertAppliesEditedSidecar(t *testing.T) {
	h := newHarness(t)
	directory := t.TempDir()
	original := testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument())
	layoutPath := testutil.WriteFile(t, directory, "bridge.layout", original)
	if err := h.run("-d", directory); err != nil {
		t.Fatalf("convert: %v", err)
	}

	edited := testutil.SampleDocument()
	edited.Budget = 1
	sidecar, err := layoutjson.Marshal(edited)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	testutil.WriteFile(t, directory, "bridge.layout.json", sidecar)

	if err := h.run("-d", directory); err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "[>] Working...\n[@] Made backup \"bridge.layout.backup\"\n[*] Applied changes to \"bridge.layout\"\n[>] Done.\n"
	if h.stdout.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", h.stdout.String(), want)
	}
	if got := testutil.ReadFile(t, layoutPath+".backup"); !bytes.Equal(got, original) {
		t.Error("backup does not hold the original layout")
	}
	if got := testutil.ReadFile(t, layoutPath); !bytes.Equal(got, testutil.EncodeLayout(t, layout.Binary{}, edited)) {
		t.Error("layout does not hold the edited document")
	}
}

func TestConvertEmptyDirectory(t *testing.T) {
	h := newHarness(t)
	if err := h.run("-d", t.TempDir()); err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := "[>] Working...\n[>] There are no layout files to convert in this folder.\n"
	if h.stdout.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", h.stdout.String(), want)
	}
}

func TestConvertMissingDirectory(t *testing.T) {
	h := newHarness(t)
	missing := filepath.Join(t.TempDir(), "nowhere")

	err := h.run("-d", missing)
	code, report := cli.ExitCode(err)
	if code != cli.ExitFailure || report {
		t.Errorf("ExitCode(%v) = (%d, %v), want (1, false)", err, code, report)
	}
	output := h.stdout.String()
	if !strings.HasPrefix(output, "[Fatal Error] Couldn't access files: ") || !strings.HasSuffix(output, ".\n") {
		t.Errorf("output = %q", output)
	}
	if strings.Contains(output, "Working...") {
		t.Error("Working line printed for an unreadable folder")
	}
}

func TestConvertUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"--format", "zip"}, "format"},
		{"unknown color", []string{"--color", "rainbow"}, "color"},
		{"positional argument", []string{"--dir", ".", "extra"}, `unexpected argument "extra"`},
		{"unknown flag", []string{"--frmat", "cbor"}, "did you mean --format"},
		{"missing config file", []string{"--config", "/nonexistent/polyconverter.yaml"}, "loading config"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(test.args...)
			if code, _ := cli.ExitCode(err); code != cli.ExitUsage {
				t.Errorf("ExitCode(%v) = %d, want %d", err, code, cli.ExitUsage)
			}
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %v does not mention %q", err, test.want)
			}
			if h.stdout.Len() != 0 {
				t.Errorf("stdout written on a usage error: %q", h.stdout.String())
			}
		})
	}
}

func TestConvertConfigFile(t *testing.T) {
	h := newHarness(t)
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "tower.layout", testutil.EncodeLayout(t, layout.CBOR{}, testutil.SampleDocument()))

	configDirectory := t.TempDir()
	configPath := testutil.WriteFile(t, configDirectory, "polyconverter.yaml",
		[]byte("directory: "+directory+"\nformat: cbor\ncolor: never\nlog_level: warn\n"))

	if err := h.run("--config", configPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(h.stdout.String(), `[+] Created "tower.layout.json"`) {
		t.Errorf("output:\n%s", h.stdout.String())
	}
	if h.level != slog.LevelWarn {
		t.Errorf("log level = %v, want warn", h.level)
	}

	// --verbose wins over the file.
	if err := h.run("--config", configPath, "-v"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if h.level != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", h.level)
	}
}

func TestConvertConfigFromEnvironment(t *testing.T) {
	h := newHarness(t)
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "tower.layout", testutil.EncodeLayout(t, layout.CBOR{}, testutil.SampleDocument()))
	configPath := testutil.WriteFile(t, t.TempDir(), "polyconverter.yaml", []byte("format: cbor\n"))
	t.Setenv(config.EnvironmentVariable, configPath)

	if err := h.run("-d", directory); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(h.stdout.String(), `[+] Created "tower.layout.json"`) {
		t.Errorf("output:\n%s", h.stdout.String())
	}
}

func TestConvertInvalidConfig(t *testing.T) {
	h := newHarness(t)
	configPath := testutil.WriteFile(t, t.TempDir(), "polyconverter.yaml", []byte("format: zip\nbogus: 1\n"))

	err := h.run("--config", configPath)
	if code, _ := cli.ExitCode(err); code != cli.ExitUsage {
		t.Errorf("ExitCode(%v) = %d, want %d", err, code, cli.ExitUsage)
	}
}

func TestConvertInterrupted(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.ctx = ctx

	directory := t.TempDir()
	testutil.WriteFile(t, directory, "bridge.layout", testutil.EncodeLayout(t, layout.Binary{}, testutil.SampleDocument()))

	err := h.run("-d", directory)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if code, report := cli.ExitCode(err); code != cli.ExitFailure || !report {
		t.Errorf("ExitCode = (%d, %v), want (1, true)", code, report)
	}
	if _, statErr := os.Stat(filepath.Join(directory, "bridge.layout.json")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("a cancelled run converted a file")
	}
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	if err := h.run("version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "polyconverter ") {
		t.Errorf("version output = %q", h.stdout.String())
	}
	if err := h.run("version", "extra"); err == nil {
		t.Error("version accepted an argument")
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	h := newHarness(t)
	if err := h.run("--help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	help := h.stderr.String()
	for _, want := range []string{"decode", "validate", "version", "--dir", "--format", "--verbose"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}
