package topology

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/uvtopo/internal/mesh"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

// Island is a set of faces connected through corners whose UVs coincide.
type Island struct {
	// Faces and Loops are sorted ascending.
	Faces []int
	Loops []int
	// BBox bounds the island's active-layer UVs.
	BBox pmath.Rect
}

// VertCount returns the number of distinct vertices the island touches.
func (is *Island) VertCount(m *mesh.Mesh) int {
	seen := make(map[int]struct{}, len(is.Loops))
	for _, l := range is.Loops {
		seen[m.Loops[l].Vert] = struct{}{}
	}
	return len(seen)
}

// Translate moves every UV of the island rigidly by d and keeps BBox in step.
func (is *Island) Translate(m *mesh.Mesh, d mgl64.Vec2) {
	for _, l := range is.Loops {
		m.SetUV(l, m.UV(l).Add(d))
	}
	is.BBox = is.BBox.Translate(d)
}

// FindIslands partitions every face of m into UV islands. Two faces join
// when some vertex they share has matching UVs in both within epsilon.
// Islands are ordered by their lowest face index.
func FindIslands(m *mesh.Mesh, epsilon float64) ([]Island, error) {
	if _, err := m.ActiveLayer(); err != nil {
		return nil, err
	}
	p := NewPredicate(epsilon)
	vertLoops := m.VertLoops()
	visited := make([]bool, len(m.Faces))

	var islands []Island
	for seed := range m.Faces {
		if visited[seed] {
			continue
		}
		is := Island{BBox: pmath.EmptyRect()}
		stack := []int{seed}
		visited[seed] = true
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			is.Faces = append(is.Faces, f)

			for _, l := range m.Faces[f].Loops {
				is.Loops = append(is.Loops, l)
				is.BBox.Extend(m.UV(l))
				for _, other := range vertLoops[m.Loops[l].Vert] {
					of := m.Loops[other].Face
					if visited[of] || !p.LoopsContinuous(m, l, other) {
						continue
					}
					visited[of] = true
					stack = append(stack, of)
				}
			}
		}
		sort.Ints(is.Faces)
		sort.Ints(is.Loops)
		islands = append(islands, is)
	}
	return islands, nil
}

// FindSelectedIslands returns the whole islands that hold at least one
// selected element. With syncSelect a face's Select flag counts; otherwise
// a UV-selected corner does. Unselected faces of such an island are kept.
func FindSelectedIslands(m *mesh.Mesh, epsilon float64, syncSelect bool) ([]Island, error) {
	islands, err := FindIslands(m, epsilon)
	if err != nil {
		return nil, err
	}
	out := islands[:0]
	for _, is := range islands {
		if is.selected(m, syncSelect) {
			out = append(out, is)
		}
	}
	return out, nil
}

func (is *Island) selected(m *mesh.Mesh, syncSelect bool) bool {
	if syncSelect {
		for _, f := range is.Faces {
			if m.Faces[f].Select {
				return true
			}
		}
		return false
	}
	for _, l := range is.Loops {
		if m.Loops[l].UVSelect {
			return true
		}
	}
	return false
}
