// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layoutjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bureau-foundation/polyconverter/lib/layout"
)

// parser walks the top level of a sidecar with a streaming decoder so
// that every member and record can be located in the source text. Its
// input is already known to be syntactically valid JSON.
type parser struct {
	source  []byte
	text    []byte
	decoder *json.Decoder
}

func (p *parser) document() (*layout.Document, error) {
	start := p.position()
	token, err := p.decoder.Token()
	if err != nil {
		return nil, p.errorAt(start, trimJSONPrefix(err.Error()), nil)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, p.errorAt(start, "expected a JSON object at the top level", nil)
	}

	document := &layout.Document{Records: []layout.Record{}}
	seen := make(map[string]bool)
	for p.decoder.More() {
		keyOffset := p.position()
		token, err := p.decoder.Token()
		if err != nil {
			return nil, p.errorAt(keyOffset, trimJSONPrefix(err.Error()), nil)
		}
		key, _ := token.(string)
		if seen[key] {
			return nil, p.errorAt(keyOffset, fmt.Sprintf("duplicate member %q", key), nil)
		}
		seen[key] = true

		switch key {
		case "version":
			err = p.value(key, &document.Version)
		case "theme":
			err = p.value(key, &document.Theme)
		case "budget":
			err = p.value(key, &document.Budget)
		case "records":
			document.Records, err = p.records()
		default:
			return nil, p.errorAt(keyOffset, fmt.Sprintf("unknown member %q", key), nil)
		}
		if err != nil {
			return nil, err
		}
	}

	// The closing brace, then nothing but whitespace.
	if _, err := p.decoder.Token(); err != nil {
		return nil, p.errorAt(p.position(), trimJSONPrefix(err.Error()), nil)
	}
	trailing := p.position()
	if _, err := p.decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, p.errorAt(trailing, "unexpected content after the document", nil)
	}
	return document, nil
}

// value decodes the next value into target.
func (p *parser) value(name string, target any) error {
	start := p.position()
	var raw json.RawMessage
	if err := p.decoder.Decode(&raw); err != nil {
		return p.errorAt(start, name, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return p.jsonError(start, name, err)
	}
	return nil
}

func (p *parser) records() ([]layout.Record, error) {
	start := p.position()
	token, err := p.decoder.Token()
	if err != nil {
		return nil, p.errorAt(start, "records", err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return nil, p.errorAt(start, "records: expected an array", nil)
	}

	records := []layout.Record{}
	for index := 0; p.decoder.More(); index++ {
		recordStart := p.position()
		var raw json.RawMessage
		if err := p.decoder.Decode(&raw); err != nil {
			return nil, p.errorAt(recordStart, fmt.Sprintf("records[%d]", index), err)
		}
		record, err := p.record(index, recordStart, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	closing := p.position()
	if _, err := p.decoder.Token(); err != nil {
		return nil, p.errorAt(closing, "records", err)
	}
	return records, nil
}

func (p *parser) record(index, start int, raw json.RawMessage) (layout.Record, error) {
	label := fmt.Sprintf("records[%d]", index)

	if len(raw) == 0 || raw[0] != '{' {
		return nil, p.errorAt(start, label+": expected an object", nil)
	}
	fields, err := members(raw, start)
	if err != nil {
		return nil, p.jsonError(start, label, err)
	}

	typeIndex := slices.IndexFunc(fields, func(m member) bool { return m.name == "type" })
	if typeIndex < 0 {
		return nil, p.errorAt(start, label+`: missing "type"`, nil)
	}
	var typeName string
	if err := json.Unmarshal(fields[typeIndex].value, &typeName); err != nil {
		return nil, p.errorAt(fields[typeIndex].valueOffset, label+`: "type" must be a string`, nil)
	}
	kind, ok := layout.ParseKind(typeName)
	if !ok {
		return nil, p.errorAt(start, fmt.Sprintf("%s: unknown record type %q", label, typeName), nil)
	}

	record, err := decodeRecord(kind, slices.Delete(fields, typeIndex, typeIndex+1))
	if err != nil {
		return nil, p.jsonError(start, fmt.Sprintf("%s (%s)", label, kind), err)
	}
	return record, nil
}

// position returns the offset of the next token, skipping whitespace
// and the separators the decoder has not consumed yet.
func (p *parser) position() int {
	return skipSeparators(p.text, int(p.decoder.InputOffset()))
}

// skipSeparators advances offset past whitespace, commas and colons.
func skipSeparators(text []byte, offset int) int {
	for offset < len(text) {
		switch text[offset] {
		case ' ', '\t', '\r', '\n', ',', ':':
			offset++
			continue
		}
		break
	}
	return offset
}

// jsonError converts an error from decoding a value that starts at
// start. A fieldError carries its own offset into the text.
func (p *parser) jsonError(start int, label string, err error) *ParseError {
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return p.errorAt(start, fmt.Sprintf("%s: cannot use %s as %s", label, typeError.Value, typeError.Type), nil)
	}
	var memberError *fieldError
	if errors.As(err, &memberError) {
		return p.errorAt(memberError.offset, label+": "+memberError.reason, nil)
	}
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return p.errorAt(start+int(syntaxError.Offset), label+": "+trimJSONPrefix(err.Error()), nil)
	}
	return p.errorAt(start, label+": "+trimJSONPrefix(err.Error()), nil)
}

func (p *parser) errorAt(offset int, reason string, err error) *ParseError {
	return newParseError(p.source, offset, reason, err)
}

func newParseError(source []byte, offset int, reason string, err error) *ParseError {
	line, column := position(source, offset)
	return &ParseError{Line: line, Column: column, Reason: reason, Err: err}
}

func trimJSONPrefix(message string) string {
	return strings.TrimPrefix(message, "json: ")
}
