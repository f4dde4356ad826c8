// Package flatten turns a mesh into a copy that can morph between its 3D
// shape and its flat UV layout through shape keys.
package flatten

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
	"github.com/Faultbox/uvtopo/internal/topology"
)

// Names used for the generated mesh and its shape keys.
const (
	MeshSuffix    = "_UV_Shape"
	PoseKeyName   = "UVSync"
	LayoutKeyName = "UV_Layout"
)

// Options configures MeshToUV.
type Options struct {
	// SplitEpsilon is the UV tolerance used when splitting seams.
	SplitEpsilon float64
	// Weight is the value given to the UV pose, 0 to 1.
	Weight float64
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		SplitEpsilon: topology.DefaultSplitEpsilon,
		Weight:       1,
	}
}

// Result reports what MeshToUV did.
type Result struct {
	Split topology.SplitResult
	// Unmapped counts vertices with no loop; they keep their 3D position.
	Unmapped int
}

// BuildBlendTarget returns one position per vertex: (u, v, 0) taken from the
// vertex's first loop. Vertices with no loop keep their current position.
// The second return value counts those vertices.
func BuildBlendTarget(m *mesh.Mesh) ([]mgl64.Vec3, int, error) {
	if _, err := m.ActiveLayer(); err != nil {
		return nil, 0, err
	}
	target := make([]mgl64.Vec3, len(m.Verts))
	seen := make([]bool, len(m.Verts))
	for l, loop := range m.Loops {
		if seen[loop.Vert] {
			continue
		}
		seen[loop.Vert] = true
		target[loop.Vert] = m.UV(l).Vec3(0)
	}

	unmapped := 0
	for v, ok := range seen {
		if !ok {
			target[v] = m.Verts[v].Co
			unmapped++
		}
	}
	return target, unmapped, nil
}

// MeshToUV builds a new mesh named <src.Name>_UV_Shape. The copy is split
// along UV seams so every vertex has a single UV, then gets two shape keys:
// the basis holding the 3D shape and a pose holding the flat layout, mixed
// in at opts.Weight. src is left untouched.
func MeshToUV(src *mesh.Mesh, opts Options) (*mesh.Mesh, Result, error) {
	var res Result
	if _, err := src.ActiveLayer(); err != nil {
		return nil, res, err
	}
	if opts.Weight < 0 || opts.Weight > 1 {
		return nil, res, fmt.Errorf("%w: weight %v outside [0,1]", mesh.ErrInvalidOption, opts.Weight)
	}

	out := src.Clone()
	out.Name = src.Name + MeshSuffix
	out.ShapeKeys = nil

	split, err := topology.SplitSeams(out, topology.NewPredicate(opts.SplitEpsilon))
	if err != nil {
		return nil, res, err
	}
	res.Split = split

	target, unmapped, err := BuildBlendTarget(out)
	if err != nil {
		return nil, res, err
	}
	res.Unmapped = unmapped

	if _, err := out.AddShapeKey(mesh.BasisKeyName); err != nil {
		return nil, res, err
	}
	k, err := out.AddShapeKey(PoseKeyName)
	if err != nil {
		return nil, res, err
	}
	out.ShapeKeys[k].Co = target
	out.ShapeKeys[k].Value = opts.Weight

	logger.Info("built UV shape mesh",
		zap.String("source", src.Name),
		zap.String("mesh", out.Name),
		zap.Int("verts", len(out.Verts)),
		zap.Int("verts_added", split.VertsAdded),
		zap.Int("unmapped", unmapped))

	return out, res, nil
}

// SyncShapeKey writes the flat UV layout into m as the shape key name
// (LayoutKeyName when empty) at full weight, creating the basis if m has no
// shape keys yet. m is not split, so a vertex on a seam takes the UV of its
// first loop. It returns the key index.
func SyncShapeKey(m *mesh.Mesh, name string) (int, error) {
	if name == "" {
		name = LayoutKeyName
	}
	if name == mesh.BasisKeyName {
		return 0, fmt.Errorf("%w: cannot overwrite the basis key", mesh.ErrInvalidOption)
	}
	target, unmapped, err := BuildBlendTarget(m)
	if err != nil {
		return 0, err
	}

	if len(m.ShapeKeys) == 0 {
		m.EnsureShapeKey(mesh.BasisKeyName)
	}
	k := m.EnsureShapeKey(name)
	m.ShapeKeys[k].Co = target
	m.ShapeKeys[k].Value = 1

	logger.Debug("synced layout shape key",
		zap.String("mesh", m.Name),
		zap.String("key", name),
		zap.Int("unmapped", unmapped))
	return k, nil
}
