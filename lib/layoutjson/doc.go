// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package layoutjson maps a layout.Document to and from its JSON sidecar
// form.
//
// A sidecar is an object with "version", "theme", "budget" and a
// "records" array. Each record is an object whose "type" member names
// the record kind ("joint", "edge", ...) and selects the shape of the
// remaining members:
//
//	{
//	  "version": 26,
//	  "theme": "Western",
//	  "budget": 45000,
//	  "records": [
//	    { "type": "joint", "guid": "j-1", "position": { "x": -4, "y": 0, "z": 0 }, ... }
//	  ]
//	}
//
// Marshal writes two-space indented JSON and then applies Compact, which
// folds every record onto a single line. Unmarshal accepts JSONC (line
// and block comments, trailing commas) so that hand-edited sidecars can
// be annotated, rejects unknown members and unknown record types, and
// reports failures as a *ParseError carrying the line and column in the
// original text.
package layoutjson
