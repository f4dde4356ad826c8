// Package arrange repositions UV islands along an axis.
package arrange

import (
	"fmt"
	gomath "math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
	"github.com/Faultbox/uvtopo/internal/topology"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

// Policy selects a layout strategy.
type Policy int

// Layout policies.
const (
	// PolicyEquidistant keeps island order and evens out the gaps.
	PolicyEquidistant Policy = iota
	// PolicySortByExtent orders islands by their size across the axis.
	PolicySortByExtent
)

func (p Policy) String() string {
	switch p {
	case PolicyEquidistant:
		return "equidistant"
	case PolicySortByExtent:
		return "extent"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "equidistant" or "extent" (also "sort", "height").
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equidistant", "":
		return PolicyEquidistant, nil
	case "extent", "sort", "height":
		return PolicySortByExtent, nil
	default:
		return 0, fmt.Errorf("%w: unknown policy %q", mesh.ErrInvalidOption, s)
	}
}

// MarshalYAML writes the policy name.
func (p Policy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

// UnmarshalYAML reads a policy name.
func (p *Policy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Options configures Arrange.
type Options struct {
	Policy  Policy
	Axis    pmath.Axis
	Spacing float64
	// Reverse sorts ascending instead of descending (SortByExtent only).
	Reverse bool
	// AlignBaseline moves every island to the same minimum across the axis
	// (SortByExtent only).
	AlignBaseline bool
	// SyncSelect picks islands by face selection instead of UV selection.
	SyncSelect bool
	// Epsilon is the UV tolerance for island search.
	Epsilon float64
	// OnCopy lays out a "_Copy" duplicate of the active layer and makes it
	// active, leaving the original layout untouched.
	OnCopy bool
}

// DefaultOptions returns equidistant layout along U with a small gap.
func DefaultOptions() Options {
	return Options{
		Policy:  PolicyEquidistant,
		Axis:    pmath.AxisX,
		Spacing: 0.02,
		Epsilon: topology.DefaultIslandEpsilon,
	}
}

// SortOptions configures SortByExtent.
type SortOptions struct {
	Axis          pmath.Axis
	Spacing       float64
	Reverse       bool
	AlignBaseline bool
}

// Placement records the move applied to one island.
type Placement struct {
	// Island indexes the slice passed in.
	Island int
	Offset mgl64.Vec2
}

// Result lists placements in layout order.
type Result struct {
	Placements []Placement
}

// Arrange finds the selected islands of m and lays them out with the chosen
// policy. Islands are moved in the active UV layer only.
func Arrange(m *mesh.Mesh, opts Options) (Result, []topology.Island, error) {
	if err := checkLayout(opts.Axis, opts.Spacing); err != nil {
		return Result{}, nil, err
	}
	if opts.Policy != PolicyEquidistant && opts.Policy != PolicySortByExtent {
		return Result{}, nil, fmt.Errorf("%w: policy %v", mesh.ErrInvalidOption, opts.Policy)
	}
	islands, err := topology.FindSelectedIslands(m, opts.Epsilon, opts.SyncSelect)
	if err != nil {
		return Result{}, nil, err
	}

	if opts.OnCopy {
		if err := checkIslands(m, islands, opts.Axis, opts.Spacing); err != nil {
			return Result{}, islands, err
		}
		layer, _ := m.ActiveLayer()
		if _, err := m.CopyUVLayer(layer.Name); err != nil {
			return Result{}, islands, err
		}
	}

	var res Result
	switch opts.Policy {
	case PolicyEquidistant:
		res, err = Equidistant(m, islands, opts.Axis, opts.Spacing)
	case PolicySortByExtent:
		res, err = SortByExtent(m, islands, SortOptions{
			Axis:          opts.Axis,
			Spacing:       opts.Spacing,
			Reverse:       opts.Reverse,
			AlignBaseline: opts.AlignBaseline,
		})
	default:
		err = fmt.Errorf("%w: policy %v", mesh.ErrInvalidOption, opts.Policy)
	}
	if err != nil {
		return Result{}, islands, err
	}

	logger.Info("arranged islands",
		zap.String("mesh", m.Name),
		zap.Stringer("policy", opts.Policy),
		zap.Stringer("axis", opts.Axis),
		zap.Int("islands", len(islands)))
	return res, islands, nil
}

// Equidistant keeps the islands' order along axis (by centre) and places
// them so each gap equals spacing, starting at the first island's minimum.
// Each island is translated along axis only.
func Equidistant(m *mesh.Mesh, islands []topology.Island, axis pmath.Axis, spacing float64) (Result, error) {
	if err := checkIslands(m, islands, axis, spacing); err != nil {
		return Result{}, err
	}
	order := sortedOrder(islands, func(is *topology.Island) float64 {
		return is.BBox.Center()[axis]
	}, false)

	cursor := islands[order[0]].BBox.Min[axis]
	res := Result{Placements: make([]Placement, 0, len(order))}
	for _, i := range order {
		is := &islands[i]
		var d mgl64.Vec2
		d[axis] = cursor - is.BBox.Min[axis]
		cursor += is.BBox.Extent(axis) + spacing
		is.Translate(m, d)
		res.Placements = append(res.Placements, Placement{Island: i, Offset: d})
	}
	return res, nil
}

// SortByExtent orders islands by their extent across opts.Axis (largest
// first unless Reverse) and places them along opts.Axis from the first
// sorted island's minimum with opts.Spacing between them. With
// AlignBaseline every island also moves to the common minimum across the
// axis. One translation is applied per island.
func SortByExtent(m *mesh.Mesh, islands []topology.Island, opts SortOptions) (Result, error) {
	if err := checkIslands(m, islands, opts.Axis, opts.Spacing); err != nil {
		return Result{}, err
	}
	axis, perp := opts.Axis, opts.Axis.Perpendicular()
	order := sortedOrder(islands, func(is *topology.Island) float64 {
		return is.BBox.Extent(perp)
	}, !opts.Reverse)

	baseline := gomath.Inf(1)
	for i := range islands {
		baseline = gomath.Min(baseline, islands[i].BBox.Min[perp])
	}

	cursor := islands[order[0]].BBox.Min[axis]
	res := Result{Placements: make([]Placement, 0, len(order))}
	for _, i := range order {
		is := &islands[i]
		var d mgl64.Vec2
		d[axis] = cursor - is.BBox.Min[axis]
		if opts.AlignBaseline {
			d[perp] = baseline - is.BBox.Min[perp]
		}
		cursor += is.BBox.Extent(axis) + opts.Spacing
		is.Translate(m, d)
		res.Placements = append(res.Placements, Placement{Island: i, Offset: d})
	}
	return res, nil
}

func checkLayout(axis pmath.Axis, spacing float64) error {
	if !axis.Is2D() {
		return fmt.Errorf("%w: axis %v is not a UV axis", mesh.ErrInvalidOption, axis)
	}
	if gomath.IsNaN(spacing) || gomath.IsInf(spacing, 0) {
		return fmt.Errorf("%w: spacing %v", mesh.ErrInvalidOption, spacing)
	}
	return nil
}

func checkIslands(m *mesh.Mesh, islands []topology.Island, axis pmath.Axis, spacing float64) error {
	if err := checkLayout(axis, spacing); err != nil {
		return err
	}
	if _, err := m.ActiveLayer(); err != nil {
		return err
	}
	if len(islands) < 2 {
		return fmt.Errorf("%w: found %d", mesh.ErrTooFewIslands, len(islands))
	}
	return nil
}

// sortedOrder returns island indices stably sorted by key. Ties keep the
// input order.
func sortedOrder(islands []topology.Island, key func(*topology.Island) float64, desc bool) []int {
	order := make([]int, len(islands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := key(&islands[order[a]]), key(&islands[order[b]])
		if desc {
			return ka > kb
		}
		return ka < kb
	})
	return order
}
