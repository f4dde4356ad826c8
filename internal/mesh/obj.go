package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/uvtopo/pkg/formats"
)

// FromOBJ builds a mesh from parsed OBJ data. When the file carries texture
// coordinates they become the active layer; corners without one get (0,0).
func FromOBJ(obj *formats.OBJ) (*Mesh, error) {
	m := New(obj.Name)
	for _, p := range obj.Positions {
		m.AddVertex(mgl64.Vec3{p[0], p[1], p[2]})
	}

	hasUV := len(obj.TexCoords) > 0
	for i, f := range obj.Faces {
		verts := make([]int, len(f.Corners))
		var uvs []mgl64.Vec2
		if hasUV {
			uvs = make([]mgl64.Vec2, len(f.Corners))
		}
		for j, c := range f.Corners {
			verts[j] = c.Vertex
			if hasUV && c.TexCoord >= 0 {
				t := obj.TexCoords[c.TexCoord]
				uvs[j] = mgl64.Vec2{t[0], t[1]}
			}
		}
		if _, err := m.AddFace(verts, uvs); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
	}
	return m, nil
}

// ToOBJ converts the mesh for writing. positions overrides the vertex
// positions (e.g. an evaluated shape-key pose); nil uses Verts. One texture
// coordinate is written per loop from the active layer.
func (m *Mesh) ToOBJ(positions []mgl64.Vec3) *formats.OBJ {
	obj := &formats.OBJ{
		Name:      m.Name,
		Positions: make([][3]float64, len(m.Verts)),
		Faces:     make([]formats.OBJFace, len(m.Faces)),
	}
	for i, v := range m.Verts {
		p := v.Co
		if positions != nil {
			p = positions[i]
		}
		obj.Positions[i] = [3]float64{p[0], p[1], p[2]}
	}

	layer, err := m.ActiveLayer()
	hasUV := err == nil
	if hasUV {
		obj.TexCoords = make([][2]float64, len(m.Loops))
		for l, uv := range layer.UV {
			obj.TexCoords[l] = [2]float64{uv[0], uv[1]}
		}
	}

	for f, face := range m.Faces {
		corners := make([]formats.OBJCorner, len(face.Loops))
		for i, l := range face.Loops {
			corners[i] = formats.OBJCorner{Vertex: m.Loops[l].Vert, TexCoord: -1}
			if hasUV {
				corners[i].TexCoord = l
			}
		}
		obj.Faces[f] = formats.OBJFace{Corners: corners}
	}
	return obj
}
