package flatten_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/uvtopo/internal/flatten"
	"github.com/Faultbox/uvtopo/internal/mesh"
	"github.com/Faultbox/uvtopo/internal/mesh/meshtest"
)

// lifted returns TwoTriangles raised off the UV plane so the two poses differ.
func lifted(seam bool) *mesh.Mesh {
	m := meshtest.TwoTriangles(seam)
	for i := range m.Verts {
		m.Verts[i].Co[2] = float64(i + 1)
	}
	return m
}

func TestMeshToUV_DualShape(t *testing.T) {
	src := lifted(true)
	before := src.Clone()

	out, res, err := flatten.MeshToUV(src, flatten.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	assert.Equal(t, "TwoTriangles_UV_Shape", out.Name)
	assert.Equal(t, 2, res.Split.VertsAdded)
	assert.Zero(t, res.Unmapped)
	assert.Len(t, out.Verts, 6)

	require.Len(t, out.ShapeKeys, 2)
	assert.Equal(t, mesh.BasisKeyName, out.ShapeKeys[0].Name)
	assert.Equal(t, flatten.PoseKeyName, out.ShapeKeys[1].Name)
	assert.Equal(t, 1.0, out.ShapeKeys[1].Value)

	// Basis keeps the 3D shape, the pose lays every vertex at its UV.
	for v := range out.Verts {
		assert.Equal(t, out.Verts[v].Co, out.ShapeKeys[0].Co[v])
	}
	for l, loop := range out.Loops {
		assert.Equal(t, out.UV(l).Vec3(0), out.ShapeKeys[1].Co[loop.Vert], "loop %d", l)
	}

	// Source untouched.
	assert.Equal(t, before.Verts, src.Verts)
	assert.Equal(t, before.Loops, src.Loops)
	assert.Empty(t, src.ShapeKeys)
}

func TestMeshToUV_Weight(t *testing.T) {
	opts := flatten.DefaultOptions()
	opts.Weight = 0.5

	out, _, err := flatten.MeshToUV(lifted(false), opts)
	require.NoError(t, err)

	pos := out.EvaluatedPositions()
	assert.InDelta(t, 0.5, pos[0][2], 1e-12)
	assert.InDelta(t, 2.0, pos[3][2], 1e-12)

	opts.Weight = 1.5
	_, _, err = flatten.MeshToUV(lifted(false), opts)
	assert.ErrorIs(t, err, mesh.ErrInvalidOption)
}

func TestMeshToUV_NoActiveUV(t *testing.T) {
	m := mesh.New("bare")
	_, _, err := flatten.MeshToUV(m, flatten.DefaultOptions())
	assert.ErrorIs(t, err, mesh.ErrNoActiveUV)
}

func TestBuildBlendTarget_UnmappedVertex(t *testing.T) {
	m := meshtest.TwoTriangles(false)
	loose := m.AddVertex(mgl64.Vec3{7, 8, 9})

	target, unmapped, err := flatten.BuildBlendTarget(m)
	require.NoError(t, err)
	assert.Equal(t, 1, unmapped)
	assert.Equal(t, mgl64.Vec3{7, 8, 9}, target[loose])
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, target[3])
}

func TestBuildBlendTarget_FirstLoopWins(t *testing.T) {
	m := meshtest.TwoTriangles(false)
	// Vertex 1 is used by loop 1 (face 0) and loop 3 (face 1).
	m.SetUV(3, mgl64.Vec2{0.9, 0.1})

	target, _, err := flatten.BuildBlendTarget(m)
	require.NoError(t, err)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, target[1])
}

func TestSyncShapeKey(t *testing.T) {
	m := lifted(false)

	k, err := flatten.SyncShapeKey(m, "")
	require.NoError(t, err)
	require.Len(t, m.ShapeKeys, 2)
	assert.Equal(t, 1, k)
	assert.Equal(t, flatten.LayoutKeyName, m.ShapeKeys[k].Name)
	assert.Equal(t, mgl64.Vec3{1, 1, 0}, m.ShapeKeys[k].Co[3])
	assert.Len(t, m.Verts, 4)

	// Running again updates in place.
	m.SetUV(4, mgl64.Vec2{2, 2})
	k2, err := flatten.SyncShapeKey(m, "")
	require.NoError(t, err)
	assert.Equal(t, k, k2)
	assert.Len(t, m.ShapeKeys, 2)
	assert.Equal(t, mgl64.Vec3{2, 2, 0}, m.ShapeKeys[k].Co[3])

	_, err = flatten.SyncShapeKey(m, mesh.BasisKeyName)
	assert.ErrorIs(t, err, mesh.ErrInvalidOption)
}
