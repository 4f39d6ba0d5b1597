// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import (
	"fmt"
	"slices"
)

// Codec translates between layout bytes and a Document.
type Codec interface {
	// Decode parses data. Malformed input returns a *DecodeError.
	Decode(data []byte) (*Document, error)

	// Encode serializes document. For any document produced by Decode,
	// Encode reproduces the original bytes exactly.
	Encode(document *Document) ([]byte, error)
}

// CodecByName returns the codec registered under name ("binary" or
// "cbor").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "binary":
		return Binary{}, nil
	case "cbor":
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("unknown layout format %q (want \"binary\" or \"cbor\")", name)
	}
}

// minRecordSize is the smallest possible encoded record: a tag byte.
const minRecordSize = 1

// Binary is the native little-endian sandbox layout format.
type Binary struct{}

// recordDecoders is the dispatch table from tag byte to record shape.
var recordDecoders = map[Kind]func(r *reader) Record{
	KindJoint: func(r *reader) Record {
		return Joint{
			GUID:     r.string("joint guid"),
			Position: r.vec3("joint position"),
			IsAnchor: r.bool("joint is_anchor"),
			IsSplit:  r.bool("joint is_split"),
		}
	},
	KindEdge: func(r *reader) Record {
		return Edge{
			Material:   decodeMaterial(r),
			NodeA:      r.string("edge node_a"),
			NodeB:      r.string("edge node_b"),
			JointAPart: r.int32("edge joint_a_part"),
			JointBPart: r.int32("edge joint_b_part"),
		}
	},
	KindSpring: func(r *reader) Record {
		return Spring{
			NodeA:           r.string("spring node_a"),
			NodeB:           r.string("spring node_b"),
			Stiffness:       r.float32("spring stiffness"),
			Damping:         r.float32("spring damping"),
			NormalizedValue: r.float32("spring normalized_value"),
		}
	},
	KindPiston: func(r *reader) Record {
		return Piston{
			NodeA:           r.string("piston node_a"),
			NodeB:           r.string("piston node_b"),
			NormalizedValue: r.float32("piston normalized_value"),
		}
	},
	KindVehicle: func(r *reader) Record {
		vehicle := Vehicle{
			DisplayName:    r.string("vehicle display_name"),
			Position:       r.vec2("vehicle position"),
			Rotation:       r.quaternion("vehicle rotation"),
			TargetSpeed:    r.float32("vehicle target_speed"),
			Mass:           r.float32("vehicle mass"),
			Braking:        r.bool("vehicle braking"),
			StartTimeDelay: r.float32("vehicle start_time_delay"),
		}
		// Each checkpoint reference is at least its one-byte length.
		count := r.count("vehicle checkpoints", 1)
		vehicle.Checkpoints = make([]string, 0, count)
		for range count {
			vehicle.Checkpoints = append(vehicle.Checkpoints, r.string("vehicle checkpoint"))
		}
		return vehicle
	},
	KindCheckpoint: func(r *reader) Record {
		return Checkpoint{
			GUID:        r.string("checkpoint guid"),
			Position:    r.vec2("checkpoint position"),
			StopVehicle: r.bool("checkpoint stop_vehicle"),
		}
	},
	KindPlatform: func(r *reader) Record {
		return Platform{
			Position: r.vec2("platform position"),
			Width:    r.float32("platform width"),
			Height:   r.float32("platform height"),
			Flipped:  r.bool("platform flipped"),
		}
	},
}

func decodeMaterial(r *reader) Material {
	start := r.offset
	material := Material(r.uint8("edge material"))
	if r.err == nil && !material.Valid() {
		r.offset = start
		r.fail("edge material: unknown value %d", uint8(material))
	}
	return material
}

// Decode parses a binary layout. The whole input must be consumed.
func (Binary) Decode(data []byte) (*Document, error) {
	r := newReader(data)

	document := &Document{
		Version: r.int32("version"),
		Theme:   r.string("theme"),
		Budget:  r.int32("budget"),
	}

	count := r.count("records", minRecordSize)
	document.Records = make([]Record, 0, count)
	for index := 0; index < count && r.err == nil; index++ {
		tagOffset := r.offset
		kind := Kind(r.uint8("record tag"))
		if r.err != nil {
			break
		}
		decode, ok := recordDecoders[kind]
		if !ok {
			r.offset = tagOffset
			r.fail("record %d: unknown tag %d", index, uint8(kind))
			break
		}
		document.Records = append(document.Records, decode(r))
	}

	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() > 0 {
		return nil, &DecodeError{Offset: r.offset, Reason: fmt.Sprintf("%d trailing bytes after last record", r.remaining())}
	}
	return document, nil
}

// Encode serializes document into the binary layout format.
func (Binary) Encode(document *Document) ([]byte, error) {
	if document == nil {
		return nil, fmt.Errorf("encode layout: nil document")
	}

	w := &writer{}
	w.int32(document.Version)
	w.string("theme", document.Theme)
	w.int32(document.Budget)
	w.count("records", len(document.Records))

	for index, record := range document.Records {
		if err := encodeRecord(w, record); err != nil {
			return nil, fmt.Errorf("encode layout: record %d: %w", index, err)
		}
	}

	if w.err != nil {
		return nil, fmt.Errorf("encode layout: %w", w.err)
	}
	return w.buffer.Bytes(), nil
}

func encodeRecord(w *writer, record Record) error {
	switch value := record.(type) {
	case Joint:
		w.uint8(uint8(KindJoint))
		w.string("guid", value.GUID)
		w.vec3(value.Position)
		w.bool(value.IsAnchor)
		w.bool(value.IsSplit)
	case Edge:
		w.uint8(uint8(KindEdge))
		w.material("material", value.Material)
		w.string("node_a", value.NodeA)
		w.string("node_b", value.NodeB)
		w.int32(value.JointAPart)
		w.int32(value.JointBPart)
	case Spring:
		w.uint8(uint8(KindSpring))
		w.string("node_a", value.NodeA)
		w.string("node_b", value.NodeB)
		w.float32(value.Stiffness)
		w.float32(value.Damping)
		w.float32(value.NormalizedValue)
	case Piston:
		w.uint8(uint8(KindPiston))
		w.string("node_a", value.NodeA)
		w.string("node_b", value.NodeB)
		w.float32(value.NormalizedValue)
	case Vehicle:
		w.uint8(uint8(KindVehicle))
		w.string("display_name", value.DisplayName)
		w.vec2(value.Position)
		w.quaternion(value.Rotation)
		w.float32(value.TargetSpeed)
		w.float32(value.Mass)
		w.bool(value.Braking)
		w.float32(value.StartTimeDelay)
		w.count("checkpoints", len(value.Checkpoints))
		for _, checkpoint := range value.Checkpoints {
			w.string("checkpoint", checkpoint)
		}
	case Checkpoint:
		w.uint8(uint8(KindCheckpoint))
		w.string("guid", value.GUID)
		w.vec2(value.Position)
		w.bool(value.StopVehicle)
	case Platform:
		w.uint8(uint8(KindPlatform))
		w.vec2(value.Position)
		w.float32(value.Width)
		w.float32(value.Height)
		w.bool(value.Flipped)
	case nil:
		return fmt.Errorf("nil record")
	default:
		return fmt.Errorf("unsupported record type %T", record)
	}
	return w.err
}

// SortedKinds returns the kinds present in document, in tag order,
// without duplicates. Used for debug logging.
func SortedKinds(document *Document) []Kind {
	var kinds []Kind
	for _, record := range document.Records {
		if record == nil {
			continue
		}
		if !slices.Contains(kinds, record.Kind()) {
			kinds = append(kinds, record.Kind())
		}
	}
	slices.Sort(kinds)
	return kinds
}
