// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/polyconverter/cmd/polyconverter/cli"
	"github.com/bureau-foundation/polyconverter/lib/diaglog"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutjson"
	"github.com/bureau-foundation/polyconverter/lib/layoutpath"
)

type validateParams struct {
	formatParams
	Color string `flag:"color" desc:"colored markers: auto, always, or never" default:"auto"`
}

func validateCommand(env *environment) *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check that files convert without loss",
		Description: `Check each file without writing anything.

A layout (or backup) must decode, re-encode to identical bytes, and
survive a trip through sidecar JSON unchanged. A sidecar must parse
and encode to a layout.

Exits with status 1 if any file fails.`,
		Usage: "polyconverter validate <file>... [flags]",
		Examples: []cli.Example{
			{
				Description: "Check every layout in the current folder",
				Command:     "polyconverter validate *.layout",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("validate needs at least one file")
			}
			codec, err := params.codec()
			if err != nil {
				return err
			}
			colorMode, err := diaglog.ParseColorMode(params.Color)
			if err != nil {
				return cli.Validation("%w", err)
			}

			printer := diaglog.NewPrinter(env.stdout, colorMode)
			failed := 0
			for _, path := range args {
				name := layoutpath.DisplayName(path)
				records, err := validateFile(codec, path)
				if err != nil {
					failed++
					printer.Line(diaglog.Entry{Category: diaglog.Error, Message: fmt.Sprintf("\"%s\": %v", name, err)})
					continue
				}
				printer.Line(diaglog.Entry{Category: diaglog.Info, Message: fmt.Sprintf("\"%s\" is valid: %s", name, records)})
			}
			if failed > 0 {
				return &cli.ExitError{Code: cli.ExitFailure}
			}
			return nil
		},
	}
}

// validateFile checks one file and describes its records.
func validateFile(codec layout.Codec, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if layoutpath.Classify(path) == layoutpath.JSONSidecar {
		document, err := layoutjson.Unmarshal(data)
		if err != nil {
			return "", err
		}
		if _, err := codec.Encode(document); err != nil {
			return "", err
		}
		return describeRecords(document), nil
	}

	document, err := codec.Decode(data)
	if err != nil {
		return "", err
	}
	encoded, err := codec.Encode(document)
	if err != nil {
		return "", err
	}
	if offset := firstDifference(data, encoded); offset >= 0 {
		return "", fmt.Errorf("re-encoding changes the layout at byte %d", offset)
	}

	sidecar, err := layoutjson.Marshal(document)
	if err != nil {
		return "", err
	}
	mapped, err := layoutjson.Unmarshal(sidecar)
	if err != nil {
		return "", fmt.Errorf("sidecar does not parse back: %w", err)
	}
	remapped, err := codec.Encode(mapped)
	if err != nil {
		return "", err
	}
	if offset := firstDifference(data, remapped); offset >= 0 {
		return "", fmt.Errorf("a trip through JSON changes the layout at byte %d", offset)
	}
	return describeRecords(document), nil
}

// firstDifference returns the first offset where a and b differ, or -1
// when they are equal.
func firstDifference(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	limit := min(len(a), len(b))
	for index := range limit {
		if a[index] != b[index] {
			return index
		}
	}
	return limit
}

func describeRecords(document *layout.Document) string {
	kinds := layout.SortedKinds(document)
	if len(kinds) == 0 {
		return fmt.Sprintf("%d records", len(document.Records))
	}
	names := make([]string, len(kinds))
	for index, kind := range kinds {
		names[index] = kind.String()
	}
	return fmt.Sprintf("%d records (%s)", len(document.Records), strings.Join(names, ", "))
}
