// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the polyconverter command tree. The root
// command converts a folder; subcommands inspect single files without
// touching anything on disk.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/polyconverter/cmd/polyconverter/cli"
	"github.com/bureau-foundation/polyconverter/lib/version"
)

// environment is what commands read from and write to. Tests replace
// every field.
type environment struct {
	ctx       context.Context
	stdout    io.Writer
	stderr    io.Writer
	newLogger func(level slog.Level) *slog.Logger
}

// Root builds the complete polyconverter command tree. ctx cancels a
// running conversion between files.
func Root(ctx context.Context) *cli.Command {
	return newRoot(&environment{
		ctx:       ctx,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		newLogger: cli.NewCommandLogger,
	})
}

func newRoot(env *environment) *cli.Command {
	root := convertCommand(env)
	root.Subcommands = []*cli.Command{
		decodeCommand(env),
		validateCommand(env),
		{
			Name:    "version",
			Summary: "Print version information",
			Run: func(args []string) error {
				if len(args) > 0 {
					return cli.Validation("version takes no arguments, got %q", args[0])
				}
				fmt.Fprintf(env.stdout, "polyconverter %s\n", version.Full())
				return nil
			},
		},
	}
	root.HelpOutput = env.stderr
	return root
}
