package mesh

import "sort"

// EdgeKey identifies an edge by its vertex pair, smaller index first.
type EdgeKey [2]int

// NewEdgeKey returns the key for the edge between a and b.
func NewEdgeKey(a, b int) EdgeKey {
	if a < b {
		return EdgeKey{a, b}
	}
	return EdgeKey{b, a}
}

// EdgeIndex maps every edge to its link loops: for each face using the
// edge, the loop whose step to the next loop walks that edge.
// Keys are ordered by first appearance in face order.
type EdgeIndex struct {
	Keys  []EdgeKey
	links map[EdgeKey][]int
}

// BuildEdgeIndex derives the edge set from the face loops.
func (m *Mesh) BuildEdgeIndex() *EdgeIndex {
	idx := &EdgeIndex{links: make(map[EdgeKey][]int)}
	for _, f := range m.Faces {
		n := len(f.Loops)
		for i, l := range f.Loops {
			next := f.Loops[(i+1)%n]
			key := NewEdgeKey(m.Loops[l].Vert, m.Loops[next].Vert)
			if _, ok := idx.links[key]; !ok {
				idx.Keys = append(idx.Keys, key)
			}
			idx.links[key] = append(idx.links[key], l)
		}
	}
	return idx
}

// LinkLoops returns the link loops of an edge.
func (e *EdgeIndex) LinkLoops(key EdgeKey) []int {
	return e.links[key]
}

// IsManifold reports whether exactly two faces use the edge.
func (e *EdgeIndex) IsManifold(key EdgeKey) bool {
	return len(e.links[key]) == 2
}

// SetSeam flags or clears the seam on the edge between a and b.
func (m *Mesh) SetSeam(a, b int, seam bool) {
	if m.Seams == nil {
		m.Seams = make(map[EdgeKey]bool)
	}
	key := NewEdgeKey(a, b)
	if seam {
		m.Seams[key] = true
	} else {
		delete(m.Seams, key)
	}
}

// IsSeam reports whether the edge is user-flagged as a seam.
func (m *Mesh) IsSeam(key EdgeKey) bool {
	return m.Seams[key]
}

// SeamKeys returns the seam edges in sorted order.
func (m *Mesh) SeamKeys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(m.Seams))
	for k, on := range m.Seams {
		if on {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
