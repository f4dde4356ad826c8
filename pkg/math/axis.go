// Package math provides the small geometry types shared by the UV tools.
package math

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis names a coordinate axis.
type Axis int

// Axis constants. X and Y double as U and V in parameter space.
const (
	AxisX Axis = 0
	AxisY Axis = 1
	AxisZ Axis = 2
)

// String returns the lowercase axis name.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Valid reports whether a is one of the three axes.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// Is2D reports whether a is usable in UV space.
func (a Axis) Is2D() bool {
	return a == AxisX || a == AxisY
}

// Perpendicular returns the other UV axis (X <-> Y).
func (a Axis) Perpendicular() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// Unit returns the unit vector along a.
func (a Axis) Unit() mgl64.Vec3 {
	var v mgl64.Vec3
	if a.Valid() {
		v[a] = 1
	}
	return v
}

// ParseAxis accepts x/y/z (and u/v as aliases for x/y), case-insensitive.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "u":
		return AxisX, nil
	case "y", "v":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return AxisX, fmt.Errorf("unknown axis %q", s)
	}
}

// MarshalYAML writes the axis as its name.
func (a Axis) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML reads an axis name.
func (a *Axis) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseAxis(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
