// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/bureau-foundation/polyconverter/lib/layout"
)

// SampleDocument returns a small bridge layout containing one record of
// every kind. Each call returns a fresh value that the caller may
// modify.
func SampleDocument() *layout.Document {
	return &layout.Document{
		Version: 26,
		Theme:   "Pine Mountains",
		Budget:  12500,
		Records: []layout.Record{
			layout.Joint{GUID: "anchor-west", Position: layout.Vec3{X: -6}, IsAnchor: true},
			layout.Joint{GUID: "anchor-east", Position: layout.Vec3{X: 6}, IsAnchor: true},
			layout.Joint{GUID: "deck-mid", Position: layout.Vec3{Y: 0.25}, IsSplit: true},
			layout.Edge{Material: layout.MaterialRoad, NodeA: "anchor-west", NodeB: "deck-mid"},
			layout.Edge{Material: layout.MaterialSteel, NodeA: "deck-mid", NodeB: "anchor-east", JointBPart: 1},
			layout.Spring{NodeA: "anchor-west", NodeB: "deck-mid", Stiffness: 0.6, Damping: 0.2, NormalizedValue: 0.5},
			layout.Piston{NodeA: "deck-mid", NodeB: "anchor-east", NormalizedValue: 0.75},
			layout.Vehicle{
				DisplayName:    "Compact Car",
				Position:       layout.Vec2{X: -12, Y: 1},
				Rotation:       layout.Quaternion{W: 1},
				TargetSpeed:    3,
				Mass:           900,
				StartTimeDelay: 0.5,
				Checkpoints:    []string{"finish"},
			},
			layout.Checkpoint{GUID: "finish", Position: layout.Vec2{X: 12, Y: 1}, StopVehicle: true},
			layout.Platform{Position: layout.Vec2{X: 14, Y: -0.5}, Width: 4, Height: 1},
		},
	}
}

// EncodeLayout encodes document with codec, failing the test on error.
func EncodeLayout(t *testing.T, codec layout.Codec, document *layout.Document) []byte {
	t.Helper()
	data, err := codec.Encode(document)
	if err != nil {
		t.Fatalf("encoding layout: %v", err)
	}
	return data
}
