package gridcut

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/mesh"
)

// dissolve merges the two faces on each tagged edge, then removes the
// endpoints left sitting in the middle of a straight run.
func (c *cutter) dissolve() {
	faces := c.edgeFaces()
	ends := make(map[int]bool)

	for _, key := range sortedKeys(c.tags) {
		users := faces[key]
		if len(users) != 2 || users[0] == users[1] || c.m.IsSeam(key) {
			continue
		}
		ai, bi := users[0], users[1]
		old := [2][]corner{c.polys[ai].corners, c.polys[bi].corners}
		if !c.merge(ai, bi, key) {
			c.log.Debug("edge left in place", zap.Int("v0", key[0]), zap.Int("v1", key[1]))
			continue
		}
		unindex(faces, ai, old[0])
		unindex(faces, bi, old[1])
		index(faces, ai, c.polys[ai].corners)

		c.res.Dissolved++
		ends[key[0]] = true
		ends[key[1]] = true
	}

	verts := make([]int, 0, len(ends))
	for v := range ends {
		verts = append(verts, v)
	}
	sort.Ints(verts)

	vertEdges := make(map[int][]mesh.EdgeKey, len(verts))
	for key := range faces {
		for _, v := range key {
			if ends[v] {
				vertEdges[v] = append(vertEdges[v], key)
			}
		}
	}
	for _, v := range verts {
		if c.dissolveVert(v, faces, vertEdges) {
			c.res.VertsDissolved++
		}
	}
}

// merge joins polygon bi into ai across the shared edge key. bi is
// reversed first if the two faces disagree on winding. It refuses merges
// that would visit a vertex twice.
func (c *cutter) merge(ai, bi int, key mesh.EdgeKey) bool {
	a := c.polys[ai].corners
	b := c.polys[bi].corners

	i := findEdge(a, key[0], key[1])
	if i < 0 {
		i = findEdge(a, key[1], key[0])
	}
	if i < 0 {
		return false
	}
	x, y := a[i].vert, a[(i+1)%len(a)].vert

	j := findEdge(b, y, x)
	if j < 0 {
		b = reversed(b)
		j = findEdge(b, y, x)
		if j < 0 {
			return false
		}
	}

	// a from y around to x, then b strictly between x and y.
	merged := make([]corner, 0, len(a)+len(b)-2)
	merged = append(merged, a[i+1:]...)
	merged = append(merged, a[:i+1]...)
	rotB := append(append([]corner(nil), b[j+1:]...), b[:j+1]...)
	merged = append(merged, rotB[1:len(rotB)-1]...)

	seen := make(map[int]bool, len(merged))
	for _, cn := range merged {
		if seen[cn.vert] {
			return false
		}
		seen[cn.vert] = true
	}

	c.polys[ai].corners = merged
	c.polys[ai].selected = c.polys[ai].selected || c.polys[bi].selected
	c.polys[bi].dead = true
	return true
}

// dissolveVert removes v when it joins exactly two collinear edges and
// every face using it keeps at least three corners. faces and vertEdges
// are updated in place.
func (c *cutter) dissolveVert(v int, faces map[mesh.EdgeKey][]int, vertEdges map[int][]mesh.EdgeKey) bool {
	edges := vertEdges[v]
	if len(edges) != 2 {
		return false
	}
	p, q := other(edges[0], v), other(edges[1], v)
	pq := mesh.NewEdgeKey(p, q)
	if _, exists := faces[pq]; exists {
		return false
	}
	seam := c.m.IsSeam(edges[0])
	if seam != c.m.IsSeam(edges[1]) {
		return false
	}

	co := c.m.Verts
	u := co[v].Co.Sub(co[p].Co)
	w := co[q].Co.Sub(co[v].Co)
	lu, lw := u.Len(), w.Len()
	if lu == 0 || lw == 0 || u.Dot(w) <= 0 || u.Cross(w).Len() > collinearTolerance*lu*lw {
		return false
	}

	// Every face through v holds one of its two edges.
	var users []int
	for _, key := range edges {
		for _, pi := range faces[key] {
			if !containsInt(users, pi) {
				users = append(users, pi)
			}
		}
	}
	sort.Ints(users)
	for _, pi := range users {
		if len(c.polys[pi].corners) <= 3 {
			return false
		}
	}

	for _, pi := range users {
		old := c.polys[pi].corners
		corners := make([]corner, 0, len(old)-1)
		for _, cn := range old {
			if cn.vert != v {
				corners = append(corners, cn)
			}
		}
		unindex(faces, pi, old)
		index(faces, pi, corners)
		c.polys[pi].corners = corners
	}

	delete(vertEdges, v)
	replaceEdge(vertEdges, p, edges[0], pq)
	replaceEdge(vertEdges, q, edges[1], pq)
	if seam {
		c.m.SetSeam(p, v, false)
		c.m.SetSeam(v, q, false)
		c.m.SetSeam(p, q, true)
	}
	return true
}

func replaceEdge(vertEdges map[int][]mesh.EdgeKey, v int, from, to mesh.EdgeKey) {
	for i, key := range vertEdges[v] {
		if key == from {
			vertEdges[v][i] = to
			return
		}
	}
}

func containsInt(s []int, x int) bool {
	for _, y := range s {
		if y == x {
			return true
		}
	}
	return false
}

func findEdge(corners []corner, from, to int) int {
	n := len(corners)
	for i := range corners {
		if corners[i].vert == from && corners[(i+1)%n].vert == to {
			return i
		}
	}
	return -1
}

func reversed(corners []corner) []corner {
	out := make([]corner, len(corners))
	for i, cn := range corners {
		out[len(corners)-1-i] = cn
	}
	return out
}

func other(key mesh.EdgeKey, v int) int {
	if key[0] == v {
		return key[1]
	}
	return key[0]
}

func index(faces map[mesh.EdgeKey][]int, pi int, corners []corner) {
	n := len(corners)
	for i := range corners {
		key := mesh.NewEdgeKey(corners[i].vert, corners[(i+1)%n].vert)
		faces[key] = append(faces[key], pi)
	}
}

func unindex(faces map[mesh.EdgeKey][]int, pi int, corners []corner) {
	n := len(corners)
	for i := range corners {
		key := mesh.NewEdgeKey(corners[i].vert, corners[(i+1)%n].vert)
		users := faces[key]
		for k, u := range users {
			if u == pi {
				users = append(users[:k:k], users[k+1:]...)
				break
			}
		}
		if len(users) == 0 {
			delete(faces, key)
		} else {
			faces[key] = users
		}
	}
}
