// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for polyconverter.
//
// The central type is [Command], which represents a named command with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. The tree is assembled in cmd/polyconverter/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams]. When a user types an unknown subcommand or flag,
// the framework computes Levenshtein edit distance against the known
// names and suggests the closest match (threshold: distance <= 3).
//
// Errors returned to main carry their exit status: [ExitError] for
// handled non-zero exits and [ToolError] for categorized failures. See
// [ExitCode].
package cli
