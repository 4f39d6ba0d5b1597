// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package layout

import "fmt"

// Vec2 is a two-component float32 vector.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Vec3 is a three-component float32 vector.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Quaternion is a rotation stored as four float32 components.
type Quaternion struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// Material is the building material of an edge. It is stored as one
// byte in the binary format and as its name everywhere else.
type Material uint8

const (
	MaterialRoad           Material = 1
	MaterialReinforcedRoad Material = 2
	MaterialWood           Material = 3
	MaterialSteel          Material = 4
	MaterialHydraulics     Material = 5
	MaterialRope           Material = 6
	MaterialCable          Material = 7
	MaterialSpring         Material = 8
)

var materialNames = map[Material]string{
	MaterialRoad:           "road",
	MaterialReinforcedRoad: "reinforced_road",
	MaterialWood:           "wood",
	MaterialSteel:          "steel",
	MaterialHydraulics:     "hydraulics",
	MaterialRope:           "rope",
	MaterialCable:          "cable",
	MaterialSpring:         "spring",
}

// Valid reports whether m is a known material.
func (m Material) Valid() bool {
	_, ok := materialNames[m]
	return ok
}

func (m Material) String() string {
	if name, ok := materialNames[m]; ok {
		return name
	}
	return fmt.Sprintf("material(%d)", uint8(m))
}

// MarshalText encodes the material as its name. Unknown values are an
// error so that they never reach a sidecar as an unparseable string.
func (m Material) MarshalText() ([]byte, error) {
	name, ok := materialNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown material %d", uint8(m))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a material name.
func (m *Material) UnmarshalText(text []byte) error {
	for material, name := range materialNames {
		if name == string(text) {
			*m = material
			return nil
		}
	}
	return fmt.Errorf("unknown material %q", text)
}
