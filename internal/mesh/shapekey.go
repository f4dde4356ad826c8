package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BasisKeyName is the conventional name of the first shape key.
const BasisKeyName = "Basis"

// ShapeKeyIndex looks up a shape key by name.
func (m *Mesh) ShapeKeyIndex(name string) (int, bool) {
	for i, k := range m.ShapeKeys {
		if k.Name == name {
			return i, true
		}
	}
	return -1, false
}

// AddShapeKey creates a key initialised from the current vertex positions.
func (m *Mesh) AddShapeKey(name string) (int, error) {
	if _, ok := m.ShapeKeyIndex(name); ok {
		return -1, fmt.Errorf("%w: shape key %q", ErrDuplicateName, name)
	}
	co := make([]mgl64.Vec3, len(m.Verts))
	for i, v := range m.Verts {
		co[i] = v.Co
	}
	m.ShapeKeys = append(m.ShapeKeys, ShapeKey{Name: name, Co: co})
	return len(m.ShapeKeys) - 1, nil
}

// EnsureShapeKey returns the named key, creating it if needed.
func (m *Mesh) EnsureShapeKey(name string) int {
	if idx, ok := m.ShapeKeyIndex(name); ok {
		return idx
	}
	idx, _ := m.AddShapeKey(name)
	return idx
}

// EvaluatedPositions mixes every non-basis key into the basis:
// basis + sum(clamp(value) * (key - basis)). Without keys it returns the
// vertex positions.
func (m *Mesh) EvaluatedPositions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Verts))
	if len(m.ShapeKeys) == 0 {
		for i, v := range m.Verts {
			out[i] = v.Co
		}
		return out
	}

	basis := m.ShapeKeys[0].Co
	copy(out, basis)
	for _, key := range m.ShapeKeys[1:] {
		w := mgl64.Clamp(key.Value, 0, 1)
		if w == 0 {
			continue
		}
		for i := range out {
			out[i] = out[i].Add(key.Co[i].Sub(basis[i]).Mul(w))
		}
	}
	return out
}
