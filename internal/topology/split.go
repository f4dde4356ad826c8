package topology

import (
	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
)

// SplitResult summarises one Split call.
type SplitResult struct {
	// EdgesCut counts shared edges (two or more faces) that were kept apart.
	EdgesCut int
	// VertsAdded counts duplicated vertices.
	VertsAdded int
	// NonManifold counts edges used by more than two faces; they are always cut.
	NonManifold int
}

// Split gives every group of loops that is joined by a continuous path its
// own vertex. Loops meet across an edge only when the edge has exactly two
// faces and is not in cuts; boundary and non-manifold edges never join.
// For each vertex the group holding its lowest loop keeps the original
// index and every further group gets a duplicate at the same position.
//
// Split mutates m in place. Running it again on its own output changes
// nothing, because every cut edge has become a boundary.
func Split(m *mesh.Mesh, cuts EdgeSet) SplitResult {
	var res SplitResult
	idx := m.BuildEdgeIndex()
	uf := newUnionFind(len(m.Loops))

	for _, key := range idx.Keys {
		links := idx.LinkLoops(key)
		if len(links) > 2 {
			res.NonManifold++
			res.EdgesCut++
			logger.Warn("non-manifold edge split conservatively",
				zap.Int("v0", key[0]), zap.Int("v1", key[1]), zap.Int("faces", len(links)))
			continue
		}
		if !idx.IsManifold(key) {
			continue
		}
		if cuts[key] {
			res.EdgesCut++
			continue
		}
		fa, fb := m.Loops[links[0]].Face, m.Loops[links[1]].Face
		if fa == fb {
			res.EdgesCut++
			continue
		}
		for _, v := range key {
			la, lb := m.FaceLoopForVert(fa, v), m.FaceLoopForVert(fb, v)
			if la >= 0 && lb >= 0 {
				uf.union(la, lb)
			}
		}
	}

	// Remember which face edges were seams before vertex indices change.
	seamEdges := make([]bool, len(m.Loops))
	for l := range m.Loops {
		seamEdges[l] = m.IsSeam(mesh.NewEdgeKey(m.Loops[l].Vert, m.Loops[m.LoopNext(l)].Vert))
	}

	vertLoops := m.VertLoops()
	for v, loops := range vertLoops {
		target := make(map[int]int, 1)
		for _, l := range loops {
			root := uf.find(l)
			nv, ok := target[root]
			if !ok {
				if len(target) == 0 {
					nv = v
				} else {
					nv = m.DuplicateVertex(v)
					res.VertsAdded++
				}
				target[root] = nv
			}
			m.Loops[l].Vert = nv
		}
	}

	seams := make(map[mesh.EdgeKey]bool)
	for l, seam := range seamEdges {
		if seam {
			seams[mesh.NewEdgeKey(m.Loops[l].Vert, m.Loops[m.LoopNext(l)].Vert)] = true
		}
	}
	m.Seams = seams

	logger.Debug("split mesh",
		zap.String("mesh", m.Name),
		zap.Int("edges_cut", res.EdgesCut),
		zap.Int("verts_added", res.VertsAdded),
		zap.Int("non_manifold", res.NonManifold))

	return res
}

// SplitSeams classifies every edge with p and splits along everything that
// is not Continuous. It fails before mutating when there is no active UV
// layer.
func SplitSeams(m *mesh.Mesh, p Predicate) (SplitResult, error) {
	classes, err := p.ClassifyAll(m)
	if err != nil {
		return SplitResult{}, err
	}
	return Split(m, CutSet(classes)), nil
}

// unionFind is a disjoint-set forest whose roots are always the lowest
// member, which keeps group order deterministic.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	switch {
	case ra < rb:
		u.parent[rb] = ra
	case rb < ra:
		u.parent[ra] = rb
	}
}
