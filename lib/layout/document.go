// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import "fmt"

// Document is the decoded form of a sandbox layout file. A Document is
// owned by whichever conversion step currently holds it; nothing in this
// package retains references after Decode or Encode returns.
type Document struct {
	Version int32
	Theme   string
	Budget  int32
	Records []Record
}

// Kind is the tag that selects a record's concrete shape. The numeric
// value is the tag byte written to the binary format.
type Kind uint8

const (
	KindJoint      Kind = 1
	KindEdge       Kind = 2
	KindSpring     Kind = 3
	KindPiston     Kind = 4
	KindVehicle    Kind = 5
	KindCheckpoint Kind = 6
	KindPlatform   Kind = 7
)

// Kinds lists every record kind in tag order. Dispatch tables in this
// package and in layoutjson are checked against it in tests.
var Kinds = []Kind{
	KindJoint,
	KindEdge,
	KindSpring,
	KindPiston,
	KindVehicle,
	KindCheckpoint,
	KindPlatform,
}

var kindNames = map[Kind]string{
	KindJoint:      "joint",
	KindEdge:       "edge",
	KindSpring:     "spring",
	KindPiston:     "piston",
	KindVehicle:    "vehicle",
	KindCheckpoint: "checkpoint",
	KindPlatform:   "platform",
}

// String returns the name used as the "type" field in JSON.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the kind whose name is name.
func ParseKind(name string) (Kind, bool) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, true
		}
	}
	return 0, false
}

// Record is one entry of a layout. The set of implementations is
// closed: Joint, Edge, Spring, Piston, Vehicle, Checkpoint, Platform.
type Record interface {
	Kind() Kind
}

// Joint is a node that edges, springs and pistons attach to.
type Joint struct {
	GUID     string `json:"guid"`
	Position Vec3   `json:"position"`
	IsAnchor bool   `json:"is_anchor"`
	IsSplit  bool   `json:"is_split"`
}

// Edge is a structural member between two joints.
type Edge struct {
	Material   Material `json:"material"`
	NodeA      string   `json:"node_a"`
	NodeB      string   `json:"node_b"`
	JointAPart int32    `json:"joint_a_part"`
	JointBPart int32    `json:"joint_b_part"`
}

// Spring is a spring attached between two joints.
type Spring struct {
	NodeA           string  `json:"node_a"`
	NodeB           string  `json:"node_b"`
	Stiffness       float32 `json:"stiffness"`
	Damping         float32 `json:"damping"`
	NormalizedValue float32 `json:"normalized_value"`
}

// Piston is a hydraulic piston attached between two joints.
type Piston struct {
	NodeA           string  `json:"node_a"`
	NodeB           string  `json:"node_b"`
	NormalizedValue float32 `json:"normalized_value"`
}

// Vehicle is a vehicle placed in the level, with the checkpoints it
// must visit in order.
type Vehicle struct {
	DisplayName    string     `json:"display_name"`
	Position       Vec2       `json:"position"`
	Rotation       Quaternion `json:"rotation"`
	TargetSpeed    float32    `json:"target_speed"`
	Mass           float32    `json:"mass"`
	Braking        bool       `json:"braking"`
	StartTimeDelay float32    `json:"start_time_delay"`
	Checkpoints    []string   `json:"checkpoints"`
}

// Checkpoint is a waypoint vehicles drive through.
type Checkpoint struct {
	GUID        string `json:"guid"`
	Position    Vec2   `json:"position"`
	StopVehicle bool   `json:"stop_vehicle"`
}

// Platform is a static platform.
type Platform struct {
	Position Vec2    `json:"position"`
	Width    float32 `json:"width"`
	Height   float32 `json:"height"`
	Flipped  bool    `json:"flipped"`
}

func (Joint) Kind() Kind      { return KindJoint }
func (Edge) Kind() Kind       { return KindEdge }
func (Spring) Kind() Kind     { return KindSpring }
func (Piston) Kind() Kind     { return KindPiston }
func (Vehicle) Kind() Kind    { return KindVehicle }
func (Checkpoint) Kind() Kind { return KindCheckpoint }
func (Platform) Kind() Kind   { return KindPlatform }
