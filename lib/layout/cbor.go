// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/polyconverter/lib/codec"
)

// CBOR stores a Document as Core Deterministic CBOR. Records travel as
// {1: tag, 2: body} envelopes so the body shape is chosen by the tag,
// the same way the binary format dispatches. Decode accepts only the
// exact bytes Encode would produce for the decoded document.
type CBOR struct{}

type cborDocument struct {
	Version int32        `cbor:"1,keyasint"`
	Theme   string       `cbor:"2,keyasint"`
	Budget  int32        `cbor:"3,keyasint"`
	Records []cborRecord `cbor:"4,keyasint"`
}

type cborRecord struct {
	Kind Kind             `cbor:"1,keyasint"`
	Body codec.RawMessage `cbor:"2,keyasint"`
}

// maxDiagnosticLength bounds the CBOR diagnostic notation quoted in a
// DecodeError.
const maxDiagnosticLength = 120

var cborBodies = map[Kind]func(body []byte) (Record, error){
	KindJoint:      decodeCBORBody[Joint],
	KindEdge:       decodeCBORBody[Edge],
	KindSpring:     decodeCBORBody[Spring],
	KindPiston:     decodeCBORBody[Piston],
	KindVehicle:    decodeCBORBody[Vehicle],
	KindCheckpoint: decodeCBORBody[Checkpoint],
	KindPlatform:   decodeCBORBody[Platform],
}

func decodeCBORBody[T Record](body []byte) (Record, error) {
	var record T
	if err := codec.Unmarshal(body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Decode parses a CBOR layout.
func (CBOR) Decode(data []byte) (*Document, error) {
	var wire cborDocument
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, &DecodeError{Offset: -1, Reason: "invalid CBOR layout", Err: err}
	}

	document := &Document{
		Version: wire.Version,
		Theme:   wire.Theme,
		Budget:  wire.Budget,
		Records: make([]Record, 0, len(wire.Records)),
	}
	for index, envelope := range wire.Records {
		decode, ok := cborBodies[envelope.Kind]
		if !ok {
			return nil, &DecodeError{Offset: -1, Reason: fmt.Sprintf("record %d: unknown tag %d", index, uint8(envelope.Kind))}
		}
		record, err := decode(envelope.Body)
		if err != nil {
			return nil, &DecodeError{
				Offset: -1,
				Reason: fmt.Sprintf("record %d (%s) body %s", index, envelope.Kind, diagnose(envelope.Body)),
				Err:    err,
			}
		}
		document.Records = append(document.Records, record)
	}

	// Anything the wire structs dropped or reordered shows up as a
	// difference here, so an unedited round trip stays byte-stable.
	canonical, err := CBOR{}.Encode(document)
	if err != nil {
		return nil, &DecodeError{Offset: -1, Reason: "invalid CBOR layout", Err: err}
	}
	if !bytes.Equal(canonical, data) {
		return nil, &DecodeError{Offset: -1, Reason: "not in deterministic CBOR form"}
	}
	return document, nil
}

// Encode serializes document as deterministic CBOR.
func (CBOR) Encode(document *Document) ([]byte, error) {
	if document == nil {
		return nil, fmt.Errorf("encode layout: nil document")
	}

	wire := cborDocument{
		Version: document.Version,
		Theme:   document.Theme,
		Budget:  document.Budget,
		Records: make([]cborRecord, 0, len(document.Records)),
	}
	for index, record := range document.Records {
		if record == nil {
			return nil, fmt.Errorf("encode layout: record %d: nil record", index)
		}
		if _, ok := cborBodies[record.Kind()]; !ok {
			return nil, fmt.Errorf("encode layout: record %d: unsupported record type %T", index, record)
		}
		body, err := codec.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode layout: record %d: %w", index, err)
		}
		wire.Records = append(wire.Records, cborRecord{Kind: record.Kind(), Body: body})
	}

	data, err := codec.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

func diagnose(body []byte) string {
	notation, err := codec.Diagnose(body)
	if err != nil {
		return fmt.Sprintf("(%d bytes, undiagnosable)", len(body))
	}
	if len(notation) > maxDiagnosticLength {
		notation = notation[:maxDiagnosticLength] + "..."
	}
	return notation
}
