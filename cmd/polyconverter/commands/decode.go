// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/polyconverter/cmd/polyconverter/cli"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutjson"
)

// formatParams is shared by the commands that read layouts.
type formatParams struct {
	Format string `flag:"format" desc:"layout format: binary or cbor" default:"binary"`
}

func (p formatParams) codec() (layout.Codec, error) {
	codec, err := layout.CodecByName(p.Format)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return codec, nil
}

type decodeParams struct {
	formatParams
}

func decodeCommand(env *environment) *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Print a layout as sidecar JSON",
		Description: `Decode one layout and write its sidecar JSON to stdout. Nothing is
written to disk, so this is safe to run on backups.`,
		Usage: "polyconverter decode <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the records of a backup",
				Command:     "polyconverter decode level1.layout.backup",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("decode", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("decode takes exactly one file, got %d arguments", len(args))
			}
			codec, err := params.codec()
			if err != nil {
				return err
			}
			document, err := readLayout(codec, args[0])
			if err != nil {
				return err
			}
			data, err := layoutjson.Marshal(document)
			if err != nil {
				return cli.Internal("%s: %w", args[0], err)
			}
			_, err = env.stdout.Write(data)
			return err
		},
	}
}

// readLayout reads and decodes the layout at path.
func readLayout(codec layout.Codec, path string) (*layout.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("%w", err)
		}
		return nil, cli.Internal("%w", err)
	}
	document, err := codec.Decode(data)
	if err != nil {
		return nil, cli.Internal("%s: %w", path, err)
	}
	return document, nil
}
