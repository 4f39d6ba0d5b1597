// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for polyconverter.
//
// Configuration is loaded from a single file named by either the
// POLYCONVERTER_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search: a run without either uses [Default], and the
// file in use is always the one the operator named.
//
// Variable expansion is performed on the directory after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values; command-line flags do,
// and that merge happens in the command, not here.
//
// Key exports:
//
//   - [Config] -- directory, layout format, color mode, log level, and
//     backup settings
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends on no other polyconverter packages.
package config
