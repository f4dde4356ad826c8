// Package topology classifies mesh edges by UV continuity, splits vertices
// along UV seams and finds UV islands.
package topology

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/uvtopo/internal/mesh"
)

// Default tolerances for UV equality.
const (
	DefaultSplitEpsilon  = 1e-6
	DefaultIslandEpsilon = 1e-5
)

// EdgeClass is the UV continuity class of an edge.
type EdgeClass int

// Edge classes.
const (
	Continuous EdgeClass = iota
	Discontinuous
	Boundary
	NonManifold
)

// String returns a human-readable class name.
func (c EdgeClass) String() string {
	switch c {
	case Continuous:
		return "Continuous"
	case Discontinuous:
		return "Discontinuous"
	case Boundary:
		return "Boundary"
	case NonManifold:
		return "NonManifold"
	default:
		return fmt.Sprintf("EdgeClass(%d)", int(c))
	}
}

// Predicate decides UV continuity within a distance tolerance.
// It holds no state, so results always reflect the mesh as it is now.
type Predicate struct {
	Epsilon float64
}

// NewPredicate returns a predicate with the given tolerance.
func NewPredicate(epsilon float64) Predicate {
	return Predicate{Epsilon: epsilon}
}

// Close reports whether two UVs are within tolerance.
func (p Predicate) Close(a, b mgl64.Vec2) bool {
	return a.Sub(b).Len() <= p.Epsilon
}

// LoopsContinuous compares the active-layer UVs of two loops.
func (p Predicate) LoopsContinuous(m *mesh.Mesh, a, b int) bool {
	return p.Close(m.UV(a), m.UV(b))
}

// Classify returns the class of one edge. m must have an active UV layer.
//
// Boundary and non-manifold edges are decided by face count, a seam flag
// makes any remaining edge Discontinuous, and otherwise both endpoints must
// carry matching UVs on the two faces. An edge whose two links sit in the
// same face, or whose endpoint is missing from the other face, is treated as
// Discontinuous.
func (p Predicate) Classify(m *mesh.Mesh, idx *mesh.EdgeIndex, key mesh.EdgeKey) EdgeClass {
	links := idx.LinkLoops(key)
	switch {
	case len(links) > 2:
		return NonManifold
	case !idx.IsManifold(key):
		return Boundary
	case m.IsSeam(key):
		return Discontinuous
	}

	fa, fb := m.Loops[links[0]].Face, m.Loops[links[1]].Face
	if fa == fb {
		return Discontinuous
	}
	for _, v := range key {
		la, lb := m.FaceLoopForVert(fa, v), m.FaceLoopForVert(fb, v)
		if la < 0 || lb < 0 {
			return Discontinuous
		}
		if !p.LoopsContinuous(m, la, lb) {
			return Discontinuous
		}
	}
	return Continuous
}

// EdgeClassification pairs an edge with its class.
type EdgeClassification struct {
	Key   mesh.EdgeKey
	Class EdgeClass
}

// ClassifyAll classifies every edge in edge-index order.
func (p Predicate) ClassifyAll(m *mesh.Mesh) ([]EdgeClassification, error) {
	if _, err := m.ActiveLayer(); err != nil {
		return nil, err
	}
	idx := m.BuildEdgeIndex()
	out := make([]EdgeClassification, len(idx.Keys))
	for i, key := range idx.Keys {
		out[i] = EdgeClassification{Key: key, Class: p.Classify(m, idx, key)}
	}
	return out, nil
}

// CountClasses tallies classifications by class.
func CountClasses(classes []EdgeClassification) map[EdgeClass]int {
	counts := make(map[EdgeClass]int, 4)
	for _, c := range classes {
		counts[c.Class]++
	}
	return counts
}

// EdgeSet is a set of edges.
type EdgeSet map[mesh.EdgeKey]bool

// CutSet returns every edge that is not Continuous.
func CutSet(classes []EdgeClassification) EdgeSet {
	cuts := make(EdgeSet)
	for _, c := range classes {
		if c.Class != Continuous {
			cuts[c.Key] = true
		}
	}
	return cuts
}
