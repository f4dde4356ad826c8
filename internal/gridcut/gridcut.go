// Package gridcut slices selected faces with evenly spaced axis-aligned
// planes and dissolves the old edges the new cuts make redundant.
package gridcut

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

const (
	// tagTolerance decides whether an edge runs across the cut axis.
	tagTolerance = 1e-5
	// alignTolerance trims cut positions that coincide with the extent.
	alignTolerance = 1e-6
	// snapDistance treats vertices this close to a plane as lying on it.
	snapDistance = 1e-4
	// collinearTolerance bounds the sine of the bend at a dissolved vertex.
	collinearTolerance = 1e-6
)

const (
	// MinInterval is the smallest accepted cut spacing.
	MinInterval = 1e-4
	// MaxCuts bounds the planes one Cut may apply to a mesh.
	MaxCuts = 10000
)

// State is the cutter's current phase.
type State int

// Phases, in order.
const (
	StateIdle State = iota
	StateTagging
	StateCutting
	StateDissolving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTagging:
		return "tagging"
	case StateCutting:
		return "cutting"
	case StateDissolving:
		return "dissolving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures Cut.
type Options struct {
	Axis     pmath.Axis
	Interval float64
	// DissolveOld removes pre-existing interior edges that run across the
	// axis once the new cuts are in.
	DissolveOld bool
	// World maps mesh coordinates to the space the grid is aligned in.
	// The zero matrix means identity.
	World mgl64.Mat4
	// OnState, when set, is called on every phase change. step is the cut
	// index while cutting and 0 otherwise.
	OnState func(state State, step int)
}

// DefaultOptions cuts along X every centimetre and dissolves old edges.
func DefaultOptions() Options {
	return Options{
		Axis:        pmath.AxisX,
		Interval:    0.01,
		DissolveOld: true,
	}
}

// Validate checks the options without touching any mesh.
func (o Options) Validate() error {
	if !o.Axis.Valid() {
		return fmt.Errorf("%w: axis %d", mesh.ErrInvalidOption, int(o.Axis))
	}
	if !(o.Interval >= MinInterval) || gomath.IsInf(o.Interval, 0) {
		return fmt.Errorf("%w: interval %v must be at least %v", mesh.ErrInvalidOption, o.Interval, MinInterval)
	}
	return nil
}

// Result counts what one Cut did.
type Result struct {
	// Cuts is the number of planes applied.
	Cuts int
	// Tagged is the number of old edges marked for dissolving.
	Tagged int
	// Dissolved is the number of tagged edges actually removed.
	Dissolved int
	// VertsDissolved counts in-line vertices removed after dissolving.
	VertsDissolved int
	// FacesSplit counts faces divided in two.
	FacesSplit int
	// Skipped counts faces left uncut because a plane crossed them more
	// than twice.
	Skipped int
}

// Changed reports whether the mesh was modified.
func (r Result) Changed() bool {
	return r.Cuts > 0 || r.Dissolved > 0
}

// CutPositions returns the grid positions k*interval strictly inside
// [min, max]. A position within alignTolerance of min is skipped, and the
// sequence stops before max-alignTolerance.
func CutPositions(min, max, interval float64) []float64 {
	k := gomath.Ceil(min / interval)
	if gomath.Abs(k*interval-min) < alignTolerance {
		k++
	}
	var out []float64
	for pos := k * interval; pos < max-alignTolerance; pos = k * interval {
		out = append(out, pos)
		k++
	}
	return out
}

// Cut slices the selected faces of m with planes perpendicular to
// opts.Axis every opts.Interval, then optionally dissolves old edges.
// Option and selection problems are reported before m is touched.
func Cut(m *mesh.Mesh, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if !m.HasSelection() {
		return Result{}, mesh.ErrEmptySelection
	}
	return newCutter(m, opts).run()
}

// CutMeshes runs Cut on each mesh in turn. Meshes without a selection are
// skipped; if none has one the call fails with ErrEmptySelection.
func CutMeshes(meshes []*mesh.Mesh, opts Options) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	results := make([]Result, len(meshes))
	worked := 0
	for i, m := range meshes {
		if !m.HasSelection() {
			logger.Debug("skipping mesh without selection", zap.String("mesh", m.Name))
			continue
		}
		res, err := Cut(m, opts)
		if err != nil {
			return results, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
		results[i] = res
		worked++
	}
	if worked == 0 {
		return results, mesh.ErrEmptySelection
	}
	return results, nil
}

type corner struct {
	vert     int
	uv       []mgl64.Vec2
	uvSelect bool
}

type polygon struct {
	corners  []corner
	selected bool
	dead     bool
}

// cutter holds the working polygon set for one Cut call. New vertices are
// appended to the mesh as they are made; faces and loops are rebuilt from
// the polygons at the end.
type cutter struct {
	m     *mesh.Mesh
	opts  Options
	world mgl64.Mat4
	log   *zap.Logger

	state State
	loose []bool
	polys []polygon
	tags  map[mesh.EdgeKey]bool
	dists []float64
	res   Result
}

func newCutter(m *mesh.Mesh, opts Options) *cutter {
	world := opts.World
	if world == (mgl64.Mat4{}) {
		world = mgl64.Ident4()
	}
	return &cutter{
		m:     m,
		opts:  opts,
		world: world,
		log:   logger.Named("gridcut"),
		tags:  make(map[mesh.EdgeKey]bool),
	}
}

func (c *cutter) enter(s State, step int) {
	c.state = s
	c.log.Debug("state", zap.Stringer("state", s), zap.Int("step", step))
	if c.opts.OnState != nil {
		c.opts.OnState(s, step)
	}
}

func (c *cutter) run() (Result, error) {
	c.load()
	min, max := c.extent()
	if n := (max - min) / c.opts.Interval; n > MaxCuts {
		return c.res, fmt.Errorf("%w: %.0f cuts over extent %g exceed %d", mesh.ErrInvalidOption, n, max-min, MaxCuts)
	}

	if c.opts.DissolveOld {
		c.enter(StateTagging, 0)
		c.tag()
	}

	positions := CutPositions(min, max, c.opts.Interval)
	if len(positions) == 0 && len(c.tags) == 0 {
		c.enter(StateIdle, 0)
		return c.res, nil
	}

	for i, pos := range positions {
		c.enter(StateCutting, i)
		c.cutAt(pos)
		c.res.Cuts++
	}

	if c.opts.DissolveOld && len(c.tags) > 0 {
		c.enter(StateDissolving, 0)
		c.dissolve()
	}

	c.store()
	c.enter(StateIdle, 0)

	c.log.Info("grid cut finished",
		zap.String("mesh", c.m.Name),
		zap.Stringer("axis", c.opts.Axis),
		zap.Float64("interval", c.opts.Interval),
		zap.Int("cuts", c.res.Cuts),
		zap.Int("faces_split", c.res.FacesSplit),
		zap.Int("tagged", c.res.Tagged),
		zap.Int("dissolved", c.res.Dissolved),
		zap.Int("skipped", c.res.Skipped))

	if err := c.m.Validate(); err != nil {
		return c.res, fmt.Errorf("%w: %w", mesh.ErrPartialMutation, err)
	}
	return c.res, nil
}

// coord returns the world coordinate of vertex v along the cut axis.
func (c *cutter) coord(v int) float64 {
	return mgl64.TransformCoordinate(c.m.Verts[v].Co, c.world)[c.opts.Axis]
}

func (c *cutter) load() {
	m := c.m
	c.loose = m.LooseVerts()
	c.polys = make([]polygon, len(m.Faces))
	for f, face := range m.Faces {
		p := polygon{selected: face.Select, corners: make([]corner, len(face.Loops))}
		for i, l := range face.Loops {
			uv := make([]mgl64.Vec2, len(m.UVLayers))
			for k := range m.UVLayers {
				uv[k] = m.UVLayers[k].UV[l]
			}
			p.corners[i] = corner{vert: m.Loops[l].Vert, uv: uv, uvSelect: m.Loops[l].UVSelect}
		}
		c.polys[f] = p
	}
}

// store rebuilds the mesh faces, loops and UV layers from the polygons and
// drops vertices the cut left unused. Vertices loose before the cut stay.
func (c *cutter) store() {
	m := c.m
	faces := make([]mesh.Face, 0, len(c.polys))
	var loops []mesh.Loop
	uvs := make([][]mgl64.Vec2, len(m.UVLayers))

	for _, p := range c.polys {
		if p.dead {
			continue
		}
		f := len(faces)
		face := mesh.Face{Select: p.selected, Loops: make([]int, len(p.corners))}
		for i, cn := range p.corners {
			face.Loops[i] = len(loops)
			loops = append(loops, mesh.Loop{Vert: cn.vert, Face: f, UVSelect: cn.uvSelect})
			for k := range uvs {
				uvs[k] = append(uvs[k], cn.uv[k])
			}
		}
		faces = append(faces, face)
	}

	m.Faces = faces
	m.Loops = loops
	for k := range m.UVLayers {
		m.UVLayers[k].UV = uvs[k]
	}
	m.CompactKeeping(c.loose)
}

func (c *cutter) edgeFaces() map[mesh.EdgeKey][]int {
	out := make(map[mesh.EdgeKey][]int)
	for pi, p := range c.polys {
		if p.dead {
			continue
		}
		n := len(p.corners)
		for i := range p.corners {
			key := mesh.NewEdgeKey(p.corners[i].vert, p.corners[(i+1)%n].vert)
			out[key] = append(out[key], pi)
		}
	}
	return out
}

func (c *cutter) selectedVerts() map[int]bool {
	sel := make(map[int]bool)
	for _, p := range c.polys {
		if p.dead || !p.selected {
			continue
		}
		for _, cn := range p.corners {
			sel[cn.vert] = true
		}
	}
	return sel
}

// tag marks interior, manifold, non-seam edges touching the selection
// whose endpoints share the same coordinate along the axis.
func (c *cutter) tag() {
	sel := c.selectedVerts()
	for key, faces := range c.edgeFaces() {
		if len(faces) != 2 || c.m.IsSeam(key) {
			continue
		}
		if !sel[key[0]] && !sel[key[1]] {
			continue
		}
		if gomath.Abs(c.coord(key[0])-c.coord(key[1])) < tagTolerance {
			c.tags[key] = true
		}
	}
	c.res.Tagged = len(c.tags)
}

func (c *cutter) extent() (min, max float64) {
	min, max = gomath.Inf(1), gomath.Inf(-1)
	for _, p := range c.polys {
		if p.dead || !p.selected {
			continue
		}
		for _, cn := range p.corners {
			x := c.coord(cn.vert)
			min = gomath.Min(min, x)
			max = gomath.Max(max, x)
		}
	}
	return min, max
}

func (c *cutter) side(v int) int {
	d := c.dists[v]
	switch {
	case gomath.Abs(d) <= snapDistance:
		return 0
	case d > 0:
		return 1
	default:
		return -1
	}
}

// cutAt bisects every selected polygon with the plane at pos.
func (c *cutter) cutAt(pos float64) {
	c.dists = make([]float64, len(c.m.Verts))
	for v := range c.m.Verts {
		c.dists[v] = c.coord(v) - pos
	}

	split := make(map[mesh.EdgeKey]int)
	onPlane := make(map[int]bool)

	n := len(c.polys)
	for pi := 0; pi < n; pi++ {
		p := c.polys[pi]
		if p.dead || !p.selected {
			continue
		}
		ring := c.insertCrossings(p.corners, split, true)

		var cuts []int
		var above, below bool
		for i, cn := range ring {
			switch c.side(cn.vert) {
			case 0:
				cuts = append(cuts, i)
				onPlane[cn.vert] = true
			case 1:
				above = true
			case -1:
				below = true
			}
		}
		c.polys[pi].corners = ring
		if !above || !below {
			continue
		}
		if len(cuts) != 2 {
			c.res.Skipped++
			c.log.Warn("face crossed more than twice, left uncut",
				zap.String("mesh", c.m.Name),
				zap.Int("face", pi),
				zap.Float64("plane", pos),
				zap.Int("crossings", len(cuts)))
			continue
		}

		i, j := cuts[0], cuts[1]
		a := append([]corner(nil), ring[i:j+1]...)
		b := append(append([]corner(nil), ring[j:]...), ring[:i+1]...)
		c.polys[pi].corners = a
		c.polys = append(c.polys, polygon{corners: b, selected: true})
		c.res.FacesSplit++
	}

	// Unselected neighbours take the shared vertices without being split.
	for pi := range c.polys {
		p := &c.polys[pi]
		if p.dead || p.selected {
			continue
		}
		p.corners = c.insertCrossings(p.corners, split, false)
	}

	for key, nv := range split {
		if c.m.IsSeam(key) {
			c.m.SetSeam(key[0], key[1], false)
			c.m.SetSeam(key[0], nv, true)
			c.m.SetSeam(nv, key[1], true)
		}
		if c.tags[key] {
			delete(c.tags, key)
			c.tags[mesh.NewEdgeKey(key[0], nv)] = true
			c.tags[mesh.NewEdgeKey(nv, key[1])] = true
		}
	}

	// An old edge lying in the plane is now part of the cut line.
	for key := range c.tags {
		if onPlane[key[0]] && onPlane[key[1]] {
			delete(c.tags, key)
		}
	}
}

// insertCrossings returns corners with a new corner added on every edge
// whose endpoints lie strictly on opposite sides of the current plane.
// Each edge gets one shared vertex, recorded in split. With create false
// only edges already in split are filled in.
func (c *cutter) insertCrossings(corners []corner, split map[mesh.EdgeKey]int, create bool) []corner {
	n := len(corners)
	out := make([]corner, 0, n+2)
	for i := 0; i < n; i++ {
		a, b := corners[i], corners[(i+1)%n]
		out = append(out, a)
		if c.side(a.vert)*c.side(b.vert) >= 0 {
			continue
		}
		da, db := c.dists[a.vert], c.dists[b.vert]
		t := da / (da - db)

		key := mesh.NewEdgeKey(a.vert, b.vert)
		nv, ok := split[key]
		if !ok {
			if !create {
				continue
			}
			nv = c.newVertex(a.vert, b.vert, t)
			split[key] = nv
		}
		out = append(out, lerpCorner(a, b, nv, t))
	}
	return out
}

// newVertex adds a vertex at t along a->b, with shape keys interpolated
// the same way.
func (c *cutter) newVertex(a, b int, t float64) int {
	m := c.m
	nv := m.AddVertex(lerp3(m.Verts[a].Co, m.Verts[b].Co, t))
	for k := range m.ShapeKeys {
		key := &m.ShapeKeys[k]
		key.Co[nv] = lerp3(key.Co[a], key.Co[b], t)
	}
	c.dists = append(c.dists, 0)
	return nv
}

func lerp3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func lerpCorner(a, b corner, vert int, t float64) corner {
	uv := make([]mgl64.Vec2, len(a.uv))
	for k := range uv {
		uv[k] = a.uv[k].Add(b.uv[k].Sub(a.uv[k]).Mul(t))
	}
	return corner{vert: vert, uv: uv, uvSelect: a.uvSelect && b.uvSelect}
}

func sortedKeys(set map[mesh.EdgeKey]bool) []mesh.EdgeKey {
	keys := make([]mesh.EdgeKey, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
