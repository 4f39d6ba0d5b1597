// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layoutjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/polyconverter/lib/layout"
)

// Mapper adapts the package functions to the document mapper interface
// used by the conversion pipeline.
type Mapper struct{}

// Marshal calls the package-level Marshal.
func (Mapper) Marshal(document *layout.Document) ([]byte, error) { return Marshal(document) }

// Unmarshal calls the package-level Unmarshal.
func (Mapper) Unmarshal(data []byte) (*layout.Document, error) { return Unmarshal(data) }

type documentJSON struct {
	Version int32  `json:"version"`
	Theme   string `json:"theme"`
	Budget  int32  `json:"budget"`
	Records []any  `json:"records"`
}

// Marshal renders document as compacted sidecar JSON. NaN and infinite
// floats are written as the strings "NaN", "Infinity" and "-Infinity".
func Marshal(document *layout.Document) ([]byte, error) {
	if document == nil {
		return nil, fmt.Errorf("encoding layout JSON: nil document")
	}

	wire := documentJSON{
		Version: document.Version,
		Theme:   document.Theme,
		Budget:  document.Budget,
		Records: make([]any, 0, len(document.Records)),
	}
	for index, record := range document.Records {
		value, err := encodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("encoding layout JSON: record %d: %w", index, err)
		}
		wire.Records = append(wire.Records, value)
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(wire); err != nil {
		return nil, fmt.Errorf("encoding layout JSON: %w", err)
	}
	return Compact(buffer.Bytes()), nil
}

var (
	// nestedIndent matches a line break followed by the indentation of
	// anything nested deeper than a record.
	nestedIndent = regexp.MustCompile(`(\r\n|\r|\n)( ){6,}`)

	// closingIndent matches the line break before a record's closing
	// bracket.
	closingIndent = regexp.MustCompile(`(\r\n|\r|\n)( ){4,}(\}|\])`)
)

// Compact folds indented JSON so that each record sits on one line:
// line breaks followed by six or more spaces become a single space, then
// line breaks followed by four or more spaces and a closing bracket
// become a space before the bracket. Only whitespace outside strings is
// touched, so the result parses to the same value.
func Compact(data []byte) []byte {
	data = nestedIndent.ReplaceAll(data, []byte(" "))
	return closingIndent.ReplaceAll(data, []byte(" $3"))
}

// Unmarshal parses sidecar text into a Document. Every failure is a
// *ParseError.
func Unmarshal(data []byte) (*layout.Document, error) {
	// ToJSON blanks comments and trailing commas in place, so offsets
	// into text are offsets into data.
	text := jsonc.ToJSON(data)

	var whole json.RawMessage
	if err := json.Unmarshal(text, &whole); err != nil {
		// A SyntaxError offset counts the offending byte itself.
		offset := len(data)
		var syntaxError *json.SyntaxError
		if errors.As(err, &syntaxError) {
			offset = int(syntaxError.Offset) - 1
		}
		return nil, newParseError(data, offset, trimJSONPrefix(err.Error()), nil)
	}

	p := &parser{
		source:  data,
		text:    text,
		decoder: json.NewDecoder(bytes.NewReader(text)),
	}
	return p.document()
}
