// Package meshtest builds small meshes for tests.
package meshtest

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/uvtopo/internal/mesh"
)

// TwoTriangles returns two triangles sharing the edge (1,2):
//
//	2---3
//	| \ |
//	0---1
//
// UVs equal the XY positions, so the shared edge is UV-continuous unless
// seam is set. All faces are selected.
func TwoTriangles(seam bool) *mesh.Mesh {
	m := mesh.New("TwoTriangles")
	pts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	for _, p := range pts {
		m.AddVertex(p)
	}
	mustFace(m, []int{0, 1, 2}, xy(pts, 0, 1, 2))
	mustFace(m, []int{1, 3, 2}, xy(pts, 1, 3, 2))
	if seam {
		m.SetSeam(1, 2, true)
	}
	m.SelectAll(true)
	return m
}

// UnitSquare returns one quad covering [0,1]x[0,1] at z=0, selected.
func UnitSquare() *mesh.Mesh {
	return Grid(1, 1, 1)
}

// Grid returns an nx by ny grid of quads with the given cell size, lying in
// the XY plane from the origin. UVs equal XY. Vertex (i,j) has index
// j*(nx+1)+i. All faces are selected.
func Grid(nx, ny int, cell float64) *mesh.Mesh {
	m := mesh.New("Grid")
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AddVertex(mgl64.Vec3{float64(i) * cell, float64(j) * cell, 0})
		}
	}
	row := nx + 1
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*row + i
			verts := []int{a, a + 1, a + 1 + row, a + row}
			uvs := make([]mgl64.Vec2, 4)
			for k, v := range verts {
				uvs[k] = m.Verts[v].Co.Vec2()
			}
			mustFace(m, verts, uvs)
		}
	}
	m.SelectAll(true)
	return m
}

// Islands returns one mesh holding a separate quad per rectangle.
// Each rect is {minU, minV, width, height}; positions equal UVs.
func Islands(rects ...[4]float64) *mesh.Mesh {
	m := mesh.New("Islands")
	for _, r := range rects {
		u0, v0, w, h := r[0], r[1], r[2], r[3]
		corners := []mgl64.Vec2{{u0, v0}, {u0 + w, v0}, {u0 + w, v0 + h}, {u0, v0 + h}}
		verts := make([]int, 4)
		for i, c := range corners {
			verts[i] = m.AddVertex(c.Vec3(0))
		}
		mustFace(m, verts, corners)
	}
	m.SelectAll(true)
	return m
}

func xy(pts []mgl64.Vec3, idx ...int) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(idx))
	for i, v := range idx {
		out[i] = pts[v].Vec2()
	}
	return out
}

func mustFace(m *mesh.Mesh, verts []int, uvs []mgl64.Vec2) {
	if _, err := m.AddFace(verts, uvs); err != nil {
		panic(err)
	}
}
