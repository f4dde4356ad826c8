package mesh

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultUVLayerName is used when a face with UVs is added to a mesh that
// has no UV layer yet.
const DefaultUVLayerName = "UVMap"

// AddVertex appends a vertex and extends every shape key with its position.
func (m *Mesh) AddVertex(co mgl64.Vec3) int {
	m.Verts = append(m.Verts, Vertex{Co: co})
	for i := range m.ShapeKeys {
		m.ShapeKeys[i].Co = append(m.ShapeKeys[i].Co, co)
	}
	return len(m.Verts) - 1
}

// DuplicateVertex appends a copy of vertex v, including its shape key
// positions, and returns the new index.
func (m *Mesh) DuplicateVertex(v int) int {
	m.Verts = append(m.Verts, m.Verts[v])
	for i := range m.ShapeKeys {
		key := &m.ShapeKeys[i]
		key.Co = append(key.Co, key.Co[v])
	}
	return len(m.Verts) - 1
}

// AddFace appends a polygon over the given vertices. uvs may be nil; when
// given it must have one entry per corner and is written to the active layer
// (a layer named DefaultUVLayerName is created if the mesh has none).
func (m *Mesh) AddFace(verts []int, uvs []mgl64.Vec2) (int, error) {
	if len(verts) < 3 {
		return -1, fmt.Errorf("%w: %d corners", ErrDegenerate, len(verts))
	}
	if uvs != nil && len(uvs) != len(verts) {
		return -1, fmt.Errorf("%w: %d UVs for %d corners", ErrInconsistent, len(uvs), len(verts))
	}
	seen := make(map[int]bool, len(verts))
	for _, v := range verts {
		if v < 0 || v >= len(m.Verts) {
			return -1, fmt.Errorf("%w: vertex %d", ErrBadIndex, v)
		}
		if seen[v] {
			return -1, fmt.Errorf("%w: vertex %d repeated", ErrDegenerate, v)
		}
		seen[v] = true
	}

	if uvs != nil && m.ActiveUV < 0 {
		if _, err := m.AddUVLayer(DefaultUVLayerName); err != nil {
			return -1, err
		}
	}

	faceIdx := len(m.Faces)
	face := Face{Loops: make([]int, len(verts))}
	for i, v := range verts {
		l := len(m.Loops)
		m.Loops = append(m.Loops, Loop{Vert: v, Face: faceIdx})
		for j := range m.UVLayers {
			var uv mgl64.Vec2
			if uvs != nil && j == m.ActiveUV {
				uv = uvs[i]
			}
			m.UVLayers[j].UV = append(m.UVLayers[j].UV, uv)
		}
		face.Loops[i] = l
	}
	m.Faces = append(m.Faces, face)

	return faceIdx, nil
}

// AddUVLayer creates a zeroed UV layer. The first layer becomes active.
func (m *Mesh) AddUVLayer(name string) (int, error) {
	if _, ok := m.UVLayerIndex(name); ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	m.UVLayers = append(m.UVLayers, UVLayer{
		Name: name,
		UV:   make([]mgl64.Vec2, len(m.Loops)),
	})
	idx := len(m.UVLayers) - 1
	m.uvIndex[name] = idx
	if m.ActiveUV < 0 {
		m.ActiveUV = idx
	}
	return idx, nil
}

// UVLayerIndex looks up a UV layer by name.
func (m *Mesh) UVLayerIndex(name string) (int, bool) {
	if m.uvIndex == nil || len(m.uvIndex) != len(m.UVLayers) {
		m.rebuildUVIndex()
	}
	idx, ok := m.uvIndex[name]
	return idx, ok
}

func (m *Mesh) rebuildUVIndex() {
	m.uvIndex = make(map[string]int, len(m.UVLayers))
	for i, layer := range m.UVLayers {
		m.uvIndex[layer.Name] = i
	}
}

// CopySuffix ends the names of layers made by CopyUVLayer.
const CopySuffix = "_Copy"

// RemoveUVLayer deletes the named UV layer. The active index keeps
// pointing at the same layer; removing the active layer makes its
// successor (or the new last layer) active.
func (m *Mesh) RemoveUVLayer(name string) error {
	idx, ok := m.UVLayerIndex(name)
	if !ok {
		return fmt.Errorf("%w: UV layer %q", ErrBadIndex, name)
	}
	m.UVLayers = append(m.UVLayers[:idx], m.UVLayers[idx+1:]...)
	switch {
	case m.ActiveUV > idx:
		m.ActiveUV--
	case m.ActiveUV == idx && idx >= len(m.UVLayers):
		m.ActiveUV = len(m.UVLayers) - 1
	}
	m.rebuildUVIndex()
	return nil
}

// CopyUVLayer duplicates the named layer as "<base>_Copy", where base is
// the source name with any trailing "_Copy" suffixes removed, and makes
// the copy active. An existing layer of that name is replaced. It returns
// the new layer's index.
func (m *Mesh) CopyUVLayer(src string) (int, error) {
	idx, ok := m.UVLayerIndex(src)
	if !ok {
		return -1, fmt.Errorf("%w: UV layer %q", ErrBadIndex, src)
	}
	uv := append([]mgl64.Vec2(nil), m.UVLayers[idx].UV...)

	base := src
	for strings.HasSuffix(base, CopySuffix) {
		base = strings.TrimSuffix(base, CopySuffix)
	}
	name := base + CopySuffix
	if _, exists := m.UVLayerIndex(name); exists {
		if err := m.RemoveUVLayer(name); err != nil {
			return -1, err
		}
	}

	dst, err := m.AddUVLayer(name)
	if err != nil {
		return -1, err
	}
	m.UVLayers[dst].UV = uv
	m.ActiveUV = dst
	return dst, nil
}

// SetActiveUV selects the active UV layer by name.
func (m *Mesh) SetActiveUV(name string) error {
	idx, ok := m.UVLayerIndex(name)
	if !ok {
		return fmt.Errorf("%w: UV layer %q", ErrBadIndex, name)
	}
	m.ActiveUV = idx
	return nil
}

// ActiveLayer returns the active UV layer or ErrNoActiveUV.
func (m *Mesh) ActiveLayer() (*UVLayer, error) {
	if m.ActiveUV < 0 || m.ActiveUV >= len(m.UVLayers) {
		return nil, ErrNoActiveUV
	}
	return &m.UVLayers[m.ActiveUV], nil
}

// UV returns the active-layer UV of loop l. Callers check ActiveLayer first.
func (m *Mesh) UV(l int) mgl64.Vec2 {
	return m.UVLayers[m.ActiveUV].UV[l]
}

// SetUV writes the active-layer UV of loop l.
func (m *Mesh) SetUV(l int, uv mgl64.Vec2) {
	m.UVLayers[m.ActiveUV].UV[l] = uv
}

func (m *Mesh) loopPos(l int) (face []int, pos int) {
	face = m.Faces[m.Loops[l].Face].Loops
	for i, fl := range face {
		if fl == l {
			return face, i
		}
	}
	return face, -1
}

// LoopNext returns the next loop around l's face.
func (m *Mesh) LoopNext(l int) int {
	face, i := m.loopPos(l)
	return face[(i+1)%len(face)]
}

// FaceLoopForVert returns the loop of face f that uses vertex v, or -1.
func (m *Mesh) FaceLoopForVert(f, v int) int {
	for _, l := range m.Faces[f].Loops {
		if m.Loops[l].Vert == v {
			return l
		}
	}
	return -1
}

// FaceVerts returns the vertex indices of face f in order.
func (m *Mesh) FaceVerts(f int) []int {
	loops := m.Faces[f].Loops
	out := make([]int, len(loops))
	for i, l := range loops {
		out[i] = m.Loops[l].Vert
	}
	return out
}

// VertLoops returns, per vertex, its loops in ascending index order.
func (m *Mesh) VertLoops() [][]int {
	out := make([][]int, len(m.Verts))
	for l, loop := range m.Loops {
		out[loop.Vert] = append(out[loop.Vert], l)
	}
	return out
}

// SelectedVerts marks every vertex used by a selected face.
func (m *Mesh) SelectedVerts() []bool {
	out := make([]bool, len(m.Verts))
	for _, f := range m.Faces {
		if !f.Select {
			continue
		}
		for _, l := range f.Loops {
			out[m.Loops[l].Vert] = true
		}
	}
	return out
}

// SelectAll sets face and UV-corner selection on the whole mesh.
func (m *Mesh) SelectAll(sel bool) {
	for i := range m.Faces {
		m.Faces[i].Select = sel
	}
	for i := range m.Loops {
		m.Loops[i].UVSelect = sel
	}
}

// HasSelection reports whether any face is selected.
func (m *Mesh) HasSelection() bool {
	for _, f := range m.Faces {
		if f.Select {
			return true
		}
	}
	return false
}

// Bounds returns the axis-aligned bounds of the vertex positions.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Verts) == 0 {
		return min, max
	}
	min = mgl64.Vec3{gomath.Inf(1), gomath.Inf(1), gomath.Inf(1)}
	max = mgl64.Vec3{gomath.Inf(-1), gomath.Inf(-1), gomath.Inf(-1)}
	for _, v := range m.Verts {
		for i := 0; i < 3; i++ {
			min[i] = gomath.Min(min[i], v.Co[i])
			max[i] = gomath.Max(max[i], v.Co[i])
		}
	}
	return min, max
}

// Dimensions returns the bounding box size.
func (m *Mesh) Dimensions() mgl64.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}
