package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Clone returns a deep copy. Operations that mutate in place are not
// transactional; callers wanting rollback snapshot with Clone first.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Verts:     append([]Vertex(nil), m.Verts...),
		Faces:     make([]Face, len(m.Faces)),
		Loops:     append([]Loop(nil), m.Loops...),
		UVLayers:  make([]UVLayer, len(m.UVLayers)),
		ActiveUV:  m.ActiveUV,
		Seams:     make(map[EdgeKey]bool, len(m.Seams)),
		ShapeKeys: make([]ShapeKey, len(m.ShapeKeys)),
		LockGroup: m.LockGroup,
	}
	for i, f := range m.Faces {
		c.Faces[i] = Face{Loops: append([]int(nil), f.Loops...), Select: f.Select}
	}
	for i, layer := range m.UVLayers {
		c.UVLayers[i] = UVLayer{Name: layer.Name, UV: append([]mgl64.Vec2(nil), layer.UV...)}
	}
	for k, v := range m.Seams {
		c.Seams[k] = v
	}
	for i, key := range m.ShapeKeys {
		c.ShapeKeys[i] = ShapeKey{Name: key.Name, Value: key.Value, Co: append([]mgl64.Vec3(nil), key.Co...)}
	}
	c.rebuildUVIndex()
	return c
}

// Validate checks that every cross reference is in range and consistent.
func (m *Mesh) Validate() error {
	owner := make([]int, len(m.Loops))
	for i := range owner {
		owner[i] = -1
	}

	for f, face := range m.Faces {
		if len(face.Loops) < 3 {
			return fmt.Errorf("face %d: %w: %d corners", f, ErrDegenerate, len(face.Loops))
		}
		for _, l := range face.Loops {
			if l < 0 || l >= len(m.Loops) {
				return fmt.Errorf("face %d: %w: loop %d", f, ErrBadIndex, l)
			}
			if owner[l] != -1 {
				return fmt.Errorf("loop %d: %w: used by faces %d and %d", l, ErrInconsistent, owner[l], f)
			}
			owner[l] = f
			if m.Loops[l].Face != f {
				return fmt.Errorf("loop %d: %w: points at face %d, owned by %d", l, ErrInconsistent, m.Loops[l].Face, f)
			}
		}
	}

	for l, loop := range m.Loops {
		if owner[l] == -1 {
			return fmt.Errorf("loop %d: %w: not in any face", l, ErrInconsistent)
		}
		if loop.Vert < 0 || loop.Vert >= len(m.Verts) {
			return fmt.Errorf("loop %d: %w: vertex %d", l, ErrBadIndex, loop.Vert)
		}
	}

	for _, layer := range m.UVLayers {
		if len(layer.UV) != len(m.Loops) {
			return fmt.Errorf("UV layer %q: %w: %d values for %d loops", layer.Name, ErrInconsistent, len(layer.UV), len(m.Loops))
		}
	}
	if m.ActiveUV >= len(m.UVLayers) {
		return fmt.Errorf("%w: active UV %d", ErrBadIndex, m.ActiveUV)
	}
	for _, key := range m.ShapeKeys {
		if len(key.Co) != len(m.Verts) {
			return fmt.Errorf("shape key %q: %w: %d positions for %d vertices", key.Name, ErrInconsistent, len(key.Co), len(m.Verts))
		}
	}
	return nil
}

// Compact removes vertices no loop references and remaps loops, seams and
// shape keys. It returns the number of vertices removed.
func (m *Mesh) Compact() int {
	return m.CompactKeeping(nil)
}

// LooseVerts reports, per vertex, whether no loop references it.
func (m *Mesh) LooseVerts() []bool {
	loose := make([]bool, len(m.Verts))
	for i := range loose {
		loose[i] = true
	}
	for _, loop := range m.Loops {
		loose[loop.Vert] = false
	}
	return loose
}

// CompactKeeping is Compact that spares the unreferenced vertices flagged
// in keep, typically the LooseVerts taken before an edit. keep may be
// shorter than Verts.
func (m *Mesh) CompactKeeping(keep []bool) int {
	used := make([]bool, len(m.Verts))
	copy(used, keep)
	for _, loop := range m.Loops {
		used[loop.Vert] = true
	}

	remap := make([]int, len(m.Verts))
	verts := m.Verts[:0]
	for i, v := range m.Verts {
		if !used[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(verts)
		verts = append(verts, v)
	}
	removed := len(m.Verts) - len(verts)
	if removed == 0 {
		return 0
	}
	m.Verts = verts

	for i := range m.Loops {
		m.Loops[i].Vert = remap[m.Loops[i].Vert]
	}
	for k := range m.ShapeKeys {
		key := &m.ShapeKeys[k]
		co := key.Co[:0]
		for i, p := range key.Co {
			if remap[i] >= 0 {
				co = append(co, p)
			}
		}
		key.Co = co
	}

	seams := make(map[EdgeKey]bool, len(m.Seams))
	for k, on := range m.Seams {
		a, b := remap[k[0]], remap[k[1]]
		if on && a >= 0 && b >= 0 {
			seams[NewEdgeKey(a, b)] = true
		}
	}
	m.Seams = seams

	return removed
}
