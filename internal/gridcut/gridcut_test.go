package gridcut_test

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/uvtopo/internal/gridcut"
	"github.com/Faultbox/uvtopo/internal/mesh"
	"github.com/Faultbox/uvtopo/internal/mesh/meshtest"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

// strip returns two quads side by side along X with the shared edge at
// x = split:
//
//	3---4-------5
//	|   |       |
//	0---1-------2
func strip(split float64) *mesh.Mesh {
	m := mesh.New("strip")
	pts := []mgl64.Vec3{{0, 0, 0}, {split, 0, 0}, {1, 0, 0}, {0, 1, 0}, {split, 1, 0}, {1, 1, 0}}
	for _, p := range pts {
		m.AddVertex(p)
	}
	for _, f := range [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}} {
		uvs := make([]mgl64.Vec2, len(f))
		for i, v := range f {
			uvs[i] = pts[v].Vec2()
		}
		if _, err := m.AddFace(f, uvs); err != nil {
			panic(err)
		}
	}
	m.SelectAll(true)
	return m
}

// faceSpan returns the min and max X of a face's vertices.
func faceSpan(m *mesh.Mesh, f int) (float64, float64) {
	lo, hi := gomath.Inf(1), gomath.Inf(-1)
	for _, v := range m.FaceVerts(f) {
		lo = gomath.Min(lo, m.Verts[v].Co[0])
		hi = gomath.Max(hi, m.Verts[v].Co[0])
	}
	return lo, hi
}

func TestCutPositions(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		interval float64
		want     []float64
	}{
		{"unit quarters", 0, 1, 0.25, []float64{0.25, 0.5, 0.75}},
		{"unaligned extent", 0.1, 0.9, 0.25, []float64{0.25, 0.5, 0.75}},
		{"too narrow", 0, 0.2, 0.25, nil},
		{"negative", -0.6, 0.1, 0.25, []float64{-0.5, -0.25, 0}},
		{"max on grid", 0.3, 1.0, 0.5, []float64{0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gridcut.CutPositions(tt.min, tt.max, tt.interval)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestCut_UnitSquareCount(t *testing.T) {
	m := meshtest.UnitSquare()
	opts := gridcut.Options{Axis: pmath.AxisX, Interval: 0.25}

	res, err := gridcut.Cut(m, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Cuts)
	assert.Equal(t, 3, res.FacesSplit)
	assert.Zero(t, res.Tagged)
	require.Len(t, m.Faces, 4)
	assert.Len(t, m.Verts, 10)

	spans := make(map[float64]float64)
	for f := range m.Faces {
		lo, hi := faceSpan(m, f)
		assert.InDelta(t, 0.25, hi-lo, 1e-9, "face %d", f)
		spans[gomath.Round(lo*4)/4] = hi
		assert.True(t, m.Faces[f].Select)
	}
	assert.Len(t, spans, 4)

	// UVs follow the positions.
	for l, loop := range m.Loops {
		assert.InDelta(t, m.Verts[loop.Vert].Co[0], m.UV(l)[0], 1e-9)
		assert.InDelta(t, m.Verts[loop.Vert].Co[1], m.UV(l)[1], 1e-9)
	}
}

func TestCut_DissolvesOldEdge(t *testing.T) {
	m := strip(0.4)
	var states []gridcut.State
	opts := gridcut.Options{
		Axis:        pmath.AxisX,
		Interval:    0.5,
		DissolveOld: true,
		OnState:     func(s gridcut.State, _ int) { states = append(states, s) },
	}

	res, err := gridcut.Cut(m, opts)
	require.NoError(t, err)

	assert.Equal(t, gridcut.Result{
		Cuts: 1, Tagged: 1, Dissolved: 1, VertsDissolved: 2, FacesSplit: 1,
	}, res)
	assert.Equal(t, []gridcut.State{
		gridcut.StateTagging, gridcut.StateCutting, gridcut.StateDissolving, gridcut.StateIdle,
	}, states)

	require.Len(t, m.Faces, 2)
	assert.Len(t, m.Verts, 6)
	for f := range m.Faces {
		assert.Len(t, m.Faces[f].Loops, 4, "face %d", f)
		lo, hi := faceSpan(m, f)
		assert.InDelta(t, 0.5, hi-lo, 1e-9, "face %d", f)
	}
}

func TestCut_KeepsLooseVertices(t *testing.T) {
	far := mgl64.Vec3{9, 9, 9}
	hasFar := func(m *mesh.Mesh) bool {
		for _, v := range m.Verts {
			if v.Co == far {
				return true
			}
		}
		return false
	}

	m := meshtest.UnitSquare()
	m.AddVertex(far)
	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 0.25})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cuts)
	assert.Len(t, m.Faces, 4)
	assert.Len(t, m.Verts, 11)
	assert.True(t, hasFar(m))

	// Dissolved vertices go, the loose one stays.
	m = strip(0.4)
	m.AddVertex(far)
	res, err = gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5, DissolveOld: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.VertsDissolved)
	assert.Len(t, m.Verts, 7)
	assert.True(t, hasFar(m))
	require.NoError(t, m.Validate())
}

func TestCut_CoincidentCutClearsTag(t *testing.T) {
	m := strip(0.5)
	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5, DissolveOld: true})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Cuts)
	assert.Equal(t, 1, res.Tagged)
	assert.Zero(t, res.Dissolved)
	assert.Zero(t, res.FacesSplit)
	assert.Len(t, m.Faces, 2)
	assert.Len(t, m.Verts, 6)
}

func TestCut_KeepsSeamAndBoundary(t *testing.T) {
	m := strip(0.4)
	m.SetSeam(1, 4, true)

	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5, DissolveOld: true})
	require.NoError(t, err)
	assert.Zero(t, res.Tagged)
	assert.Len(t, m.Faces, 3)
	assert.True(t, m.IsSeam(mesh.EdgeKey{1, 4}))
}

func TestCut_UnselectedNeighbourGetsVertex(t *testing.T) {
	m := meshtest.Grid(2, 1, 1)
	m.Faces[1].Select = false

	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisY, Interval: 0.5})
	require.NoError(t, err)

	assert.Equal(t, 1, res.FacesSplit)
	require.Len(t, m.Faces, 3)
	assert.Len(t, m.Verts, 8)

	// The untouched face now carries the midpoint of the shared edge.
	assert.False(t, m.Faces[1].Select)
	assert.Len(t, m.Faces[1].Loops, 5)
	idx := m.BuildEdgeIndex()
	for _, key := range idx.Keys {
		assert.LessOrEqual(t, len(idx.LinkLoops(key)), 2, "edge %v", key)
	}
}

func TestCut_InterpolatesAttributes(t *testing.T) {
	m := meshtest.UnitSquare()
	m.EnsureShapeKey(mesh.BasisKeyName)
	k := m.EnsureShapeKey("Bend")
	for v := range m.ShapeKeys[k].Co {
		x := m.Verts[v].Co[0]
		m.ShapeKeys[k].Co[v] = m.Verts[v].Co.Add(mgl64.Vec3{0, 0, 2 * x})
	}
	_, err := m.AddUVLayer("Second")
	require.NoError(t, err)
	for l := range m.Loops {
		m.UVLayers[1].UV[l] = m.UVLayers[0].UV[l].Mul(10)
	}
	m.SetSeam(0, 1, true)

	_, err = gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5})
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	mid := -1
	for v := range m.Verts {
		if m.Verts[v].Co == (mgl64.Vec3{0.5, 0, 0}) {
			mid = v
		}
	}
	require.GreaterOrEqual(t, mid, 0)
	assert.InDelta(t, 1.0, m.ShapeKeys[k].Co[mid][2], 1e-12)

	for l, loop := range m.Loops {
		if loop.Vert == mid {
			assert.InDelta(t, 5.0, m.UVLayers[1].UV[l][0], 1e-9)
		}
	}

	assert.True(t, m.IsSeam(mesh.NewEdgeKey(0, mid)))
	assert.True(t, m.IsSeam(mesh.NewEdgeKey(mid, 1)))
	assert.False(t, m.IsSeam(mesh.EdgeKey{0, 1}))
}

func TestCut_WorldMatrix(t *testing.T) {
	m := meshtest.UnitSquare()
	opts := gridcut.Options{Axis: pmath.AxisX, Interval: 0.5, World: mgl64.Translate3D(0.3, 0, 0)}

	res, err := gridcut.Cut(m, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cuts)
	assert.Len(t, m.Faces, 3)

	var xs []float64
	for _, v := range m.Verts {
		if v.Co[1] == 0 {
			xs = append(xs, v.Co[0])
		}
	}
	assert.ElementsMatch(t, []float64{0, 1, 0.2, 0.7}, roundAll(xs))
}

func roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = gomath.Round(x*1e9) / 1e9
	}
	return out
}

func TestCut_ConcaveFaceSkipped(t *testing.T) {
	m := mesh.New("u")
	pts := []mgl64.Vec3{{0, 0, 0}, {3, 0, 0}, {3, 2, 0}, {2, 2, 0}, {2, 1, 0}, {1, 1, 0}, {1, 2, 0}, {0, 2, 0}}
	verts := make([]int, len(pts))
	for i, p := range pts {
		verts[i] = m.AddVertex(p)
	}
	_, err := m.AddFace(verts, nil)
	require.NoError(t, err)
	m.SelectAll(true)

	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisY, Interval: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.FacesSplit)
	require.Len(t, m.Faces, 1)
	assert.Len(t, m.Faces[0].Loops, 12)
}

func TestCut_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts gridcut.Options
		prep func(*mesh.Mesh)
		want error
	}{
		{"zero interval", gridcut.Options{Axis: pmath.AxisX}, nil, mesh.ErrInvalidOption},
		{"nan interval", gridcut.Options{Axis: pmath.AxisX, Interval: gomath.NaN()}, nil, mesh.ErrInvalidOption},
		{"bad axis", gridcut.Options{Axis: pmath.Axis(4), Interval: 1}, nil, mesh.ErrInvalidOption},
		{"interval below minimum", gridcut.Options{Axis: pmath.AxisX, Interval: 1e-9}, nil, mesh.ErrInvalidOption},
		{"too many cuts", gridcut.Options{Axis: pmath.AxisX, Interval: gridcut.MinInterval}, func(m *mesh.Mesh) {
			for i := range m.Verts {
				m.Verts[i].Co = m.Verts[i].Co.Mul(2)
			}
		}, mesh.ErrInvalidOption},
		{"no selection", gridcut.Options{Axis: pmath.AxisX, Interval: 0.25}, func(m *mesh.Mesh) { m.SelectAll(false) }, mesh.ErrEmptySelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meshtest.UnitSquare()
			if tt.prep != nil {
				tt.prep(m)
			}
			before := m.Clone()

			_, err := gridcut.Cut(m, tt.opts)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, errors.Is(err, mesh.ErrConfiguration))
			assert.Equal(t, before.Verts, m.Verts)
			assert.Equal(t, before.Faces, m.Faces)
		})
	}
}

func TestCut_NothingToDo(t *testing.T) {
	m := meshtest.UnitSquare()
	res, err := gridcut.Cut(m, gridcut.Options{Axis: pmath.AxisX, Interval: 2, DissolveOld: true})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Len(t, m.Faces, 1)
}

func TestCutMeshes(t *testing.T) {
	a := meshtest.UnitSquare()
	b := meshtest.UnitSquare()
	b.SelectAll(false)

	results, err := gridcut.CutMeshes([]*mesh.Mesh{a, b}, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Cuts)
	assert.False(t, results[1].Changed())
	assert.Len(t, a.Faces, 2)
	assert.Len(t, b.Faces, 1)

	a.SelectAll(false)
	_, err = gridcut.CutMeshes([]*mesh.Mesh{a, b}, gridcut.Options{Axis: pmath.AxisX, Interval: 0.5})
	assert.ErrorIs(t, err, mesh.ErrEmptySelection)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dissolving", gridcut.StateDissolving.String())
	assert.Equal(t, "State(9)", gridcut.State(9).String())
}
