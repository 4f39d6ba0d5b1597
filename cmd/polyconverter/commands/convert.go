// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/polyconverter/cmd/polyconverter/cli"
	"github.com/bureau-foundation/polyconverter/lib/backup"
	"github.com/bureau-foundation/polyconverter/lib/batch"
	"github.com/bureau-foundation/polyconverter/lib/config"
	"github.com/bureau-foundation/polyconverter/lib/convert"
	"github.com/bureau-foundation/polyconverter/lib/diaglog"
	"github.com/bureau-foundation/polyconverter/lib/layout"
	"github.com/bureau-foundation/polyconverter/lib/layoutjson"
)

// convertParams are the root command's flags. Empty values leave the
// configuration untouched.
type convertParams struct {
	Directory  string `flag:"dir,d"     desc:"folder containing the layouts (default \".\")"`
	ConfigPath string `flag:"config"    desc:"YAML config file (default: $POLYCONVERTER_CONFIG)"`
	Format     string `flag:"format"    desc:"layout format: binary or cbor"`
	Color      string `flag:"color"     desc:"colored markers: auto, always, or never"`
	Verbose    bool   `flag:"verbose,v" desc:"debug logging on stderr"`
}

func convertCommand(env *environment) *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "polyconverter",
		Summary: "Convert layouts to JSON sidecars and back",
		Description: `Convert every layout in a folder to an editable JSON sidecar, and
apply edited sidecars back to their layouts.

A layout without a sidecar gets one ("name.layout.json"). A sidecar
whose content differs from its layout is written back into the layout;
the first time a layout is overwritten, its original is kept as
"name.layout.backup". Backups are never converted or replaced.

Results are printed once the whole folder has been processed, errors
first. A failure on one file never stops the others.`,
		Usage: "polyconverter [flags]\n  polyconverter <command> [flags]",
		Examples: []cli.Example{
			{
				Description: "Convert the layouts in the current folder",
				Command:     "polyconverter",
			},
			{
				Description: "Convert another folder of CBOR layouts with debug logs",
				Command:     "polyconverter -d ~/levels --format cbor -v",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("polyconverter", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q\n\nRun 'polyconverter --help' for usage.", args[0])
			}
			cfg, err := loadConfig(params)
			if err != nil {
				return err
			}
			return runConvert(env, cfg)
		},
	}
}

// loadConfig reads the configuration named by --config or
// POLYCONVERTER_CONFIG, falling back to the defaults, and applies the
// flag overrides.
func loadConfig(params convertParams) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case params.ConfigPath != "":
		cfg, err = config.LoadFile(params.ConfigPath)
	case hasConfigEnvironment():
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, cli.Validation("loading config: %w", err)
	}

	if params.Directory != "" {
		cfg.Directory = params.Directory
	}
	if params.Format != "" {
		cfg.Format = params.Format
	}
	if params.Color != "" {
		cfg.Color = params.Color
	}
	if params.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

func hasConfigEnvironment() bool {
	return os.Getenv(config.EnvironmentVariable) != ""
}

func runConvert(env *environment, cfg *config.Config) error {
	level, err := cli.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cli.Validation("%w", err)
	}
	codec, err := layout.CodecByName(cfg.Format)
	if err != nil {
		return cli.Validation("%w", err)
	}
	colorMode, err := diaglog.ParseColorMode(cfg.Color)
	if err != nil {
		return cli.Validation("%w", err)
	}

	logger := env.newLogger(level).With("command", "convert", "format", cfg.Format)
	printer := diaglog.NewPrinter(env.stdout, colorMode)
	log := &diaglog.Log{}

	runner := &batch.Runner{
		Directory: cfg.Directory,
		Converter: &convert.Pipeline{
			Codec:  codec,
			Mapper: layoutjson.Mapper{},
			Guard:  &backup.Guard{Verify: cfg.Backup.Verify, Logger: logger},
			Logger: logger,
		},
		Log:     log,
		Logger:  logger,
		Started: func() { printer.Status("Working...") },
	}

	summary, err := runner.Run(env.ctx)
	if err != nil {
		var directoryError *batch.DirectoryError
		if errors.As(err, &directoryError) {
			printer.Line(diaglog.Entry{
				Category: diaglog.Fatal,
				Message:  fmt.Sprintf("Couldn't access files: %v.", directoryError.Err),
			})
			return &cli.ExitError{Code: cli.ExitFailure}
		}
		// Interrupted: show what was done before stopping.
		printer.Print(log)
		return cli.Internal("conversion interrupted: %w", err)
	}

	printer.Finish(log, summary.Counts())
	return nil
}
