// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layoutjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/bureau-foundation/polyconverter/lib/layout"
)

// Records are read and written by walking the json tags of the layout
// record structs. Member names match exactly, nested vectors are
// objects, and non-finite floats travel as the strings "NaN",
// "Infinity" and "-Infinity".

// recordTypes maps each kind to the struct that holds its members.
var recordTypes = map[layout.Kind]reflect.Type{
	layout.KindJoint:      reflect.TypeFor[layout.Joint](),
	layout.KindEdge:       reflect.TypeFor[layout.Edge](),
	layout.KindSpring:     reflect.TypeFor[layout.Spring](),
	layout.KindPiston:     reflect.TypeFor[layout.Piston](),
	layout.KindVehicle:    reflect.TypeFor[layout.Vehicle](),
	layout.KindCheckpoint: reflect.TypeFor[layout.Checkpoint](),
	layout.KindPlatform:   reflect.TypeFor[layout.Platform](),
}

var nonFiniteFloats = map[string]float64{
	"NaN":       math.NaN(),
	"Infinity":  math.Inf(1),
	"-Infinity": math.Inf(-1),
}

type structField struct {
	name  string
	index int
}

// fieldsOf lists the json-tagged fields of t in declaration order.
func fieldsOf(t reflect.Type) []structField {
	fields := make([]structField, 0, t.NumField())
	for index := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(index).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, structField{name: name, index: index})
	}
	return fields
}

// namedValue is one member of an object.
type namedValue struct {
	name  string
	value any
}

// object is a JSON object whose members keep their order.
type object []namedValue

// MarshalJSON renders the members in order without HTML escaping.
func (o object) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)

	// Encode terminates every value with a newline.
	encode := func(value any) error {
		if err := encoder.Encode(value); err != nil {
			return err
		}
		buffer.Truncate(buffer.Len() - 1)
		return nil
	}

	buffer.WriteByte('{')
	for index, member := range o {
		if index > 0 {
			buffer.WriteByte(',')
		}
		if err := encode(member.name); err != nil {
			return nil, err
		}
		buffer.WriteByte(':')
		if err := encode(member.value); err != nil {
			return nil, fmt.Errorf("%s: %w", member.name, err)
		}
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

// encodeRecord returns the JSON shape of record: a "type" member
// followed by the record's fields.
func encodeRecord(record layout.Record) (object, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}
	value := reflect.ValueOf(record)
	if recordTypes[record.Kind()] != value.Type() {
		return nil, fmt.Errorf("unsupported record type %T", record)
	}
	return append(object{{name: "type", value: record.Kind().String()}}, encodeStruct(value)...), nil
}

func encodeStruct(value reflect.Value) object {
	fields := fieldsOf(value.Type())
	result := make(object, 0, len(fields))
	for _, field := range fields {
		result = append(result, namedValue{name: field.name, value: encodeValue(value.Field(field.index))})
	}
	return result
}

func encodeValue(value reflect.Value) any {
	switch value.Kind() {
	case reflect.Struct:
		return encodeStruct(value)
	case reflect.Float32:
		number := value.Float()
		switch {
		case math.IsNaN(number):
			return "NaN"
		case math.IsInf(number, 1):
			return "Infinity"
		case math.IsInf(number, -1):
			return "-Infinity"
		}
		return float32(number)
	case reflect.Slice:
		if value.IsNil() {
			return reflect.MakeSlice(value.Type(), 0, 0).Interface()
		}
	}
	return value.Interface()
}

// member is one name/value pair of an object in the sidecar text.
// Offsets are relative to the start of the text.
type member struct {
	name        string
	offset      int
	value       json.RawMessage
	valueOffset int
}

// fieldError reports a problem with a record member at an offset in the
// sidecar text.
type fieldError struct {
	offset int
	reason string
}

func (e *fieldError) Error() string { return e.reason }

// members splits the JSON object raw, which starts at offset base, into
// its members and rejects names that repeat.
func members(raw json.RawMessage, base int) ([]member, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	next := func() int { return skipSeparators(raw, int(decoder.InputOffset())) }

	if token, err := decoder.Token(); err != nil || token != json.Delim('{') {
		return nil, &fieldError{offset: base, reason: "expected an object"}
	}
	var result []member
	seen := make(map[string]bool)
	for decoder.More() {
		offset := next()
		token, err := decoder.Token()
		if err != nil {
			return nil, &fieldError{offset: base + offset, reason: trimJSONPrefix(err.Error())}
		}
		name, _ := token.(string)
		if seen[name] {
			return nil, &fieldError{offset: base + offset, reason: fmt.Sprintf("duplicate field %q", name)}
		}
		seen[name] = true

		valueOffset := next()
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, &fieldError{offset: base + valueOffset, reason: trimJSONPrefix(err.Error())}
		}
		result = append(result, member{name: name, offset: base + offset, value: value, valueOffset: base + valueOffset})
	}
	return result, nil
}

// decodeRecord builds a record of kind from its members, excluding
// "type".
func decodeRecord(kind layout.Kind, fields []member) (layout.Record, error) {
	target := reflect.New(recordTypes[kind]).Elem()
	if err := decodeFields(fields, target, ""); err != nil {
		return nil, err
	}
	record := target.Interface().(layout.Record)
	if vehicle, ok := record.(layout.Vehicle); ok && vehicle.Checkpoints == nil {
		vehicle.Checkpoints = []string{}
		record = vehicle
	}
	return record, nil
}

func decodeFields(fields []member, target reflect.Value, prefix string) error {
	declared := fieldsOf(target.Type())
	for _, m := range fields {
		path := prefix + m.name
		index := -1
		for _, field := range declared {
			if field.name == m.name {
				index = field.index
				break
			}
		}
		if index < 0 {
			return &fieldError{offset: m.offset, reason: fmt.Sprintf("unknown field %q", path)}
		}
		if err := decodeField(m, target.Field(index), path); err != nil {
			return err
		}
	}
	return nil
}

// decodeField stores one member into field. A null leaves the field at
// its zero value.
func decodeField(m member, field reflect.Value, path string) error {
	if string(m.value) == "null" {
		return nil
	}
	switch field.Kind() {
	case reflect.Struct:
		if m.value[0] != '{' {
			return &fieldError{offset: m.valueOffset, reason: fmt.Sprintf("field %q: expected an object", path)}
		}
		nested, err := members(m.value, m.valueOffset)
		if err != nil {
			return err
		}
		return decodeFields(nested, field, path+".")
	case reflect.Float32:
		return decodeFloat(m, field, path)
	}
	if err := json.Unmarshal(m.value, field.Addr().Interface()); err != nil {
		return valueError(m, path, err)
	}
	return nil
}

func decodeFloat(m member, field reflect.Value, path string) error {
	if m.value[0] == '"' {
		var name string
		if err := json.Unmarshal(m.value, &name); err != nil {
			return valueError(m, path, err)
		}
		number, ok := nonFiniteFloats[name]
		if !ok {
			return &fieldError{offset: m.valueOffset, reason: fmt.Sprintf("field %q: cannot use string as float32", path)}
		}
		field.SetFloat(number)
		return nil
	}
	var number float32
	if err := json.Unmarshal(m.value, &number); err != nil {
		return valueError(m, path, err)
	}
	field.SetFloat(float64(number))
	return nil
}

func valueError(m member, path string, err error) error {
	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		return &fieldError{
			offset: m.valueOffset,
			reason: fmt.Sprintf("field %q: cannot use %s as %s", path, typeError.Value, typeError.Type),
		}
	}
	return &fieldError{offset: m.valueOffset, reason: fmt.Sprintf("field %q: %s", path, trimJSONPrefix(err.Error()))}
}
