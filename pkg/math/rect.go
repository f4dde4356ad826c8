package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect is an axis-aligned 2D box in UV space.
// The zero value is a degenerate box at the origin; use EmptyRect to start
// accumulating points.
type Rect struct {
	Min mgl64.Vec2
	Max mgl64.Vec2
}

// EmptyRect returns an inverted box that any Extend call will replace.
func EmptyRect() Rect {
	return Rect{
		Min: mgl64.Vec2{gomath.Inf(1), gomath.Inf(1)},
		Max: mgl64.Vec2{gomath.Inf(-1), gomath.Inf(-1)},
	}
}

// IsEmpty reports whether no point has been added.
func (r Rect) IsEmpty() bool {
	return r.Min[0] > r.Max[0] || r.Min[1] > r.Max[1]
}

// Extend grows the box to contain p.
func (r *Rect) Extend(p mgl64.Vec2) {
	if p[0] < r.Min[0] {
		r.Min[0] = p[0]
	}
	if p[1] < r.Min[1] {
		r.Min[1] = p[1]
	}
	if p[0] > r.Max[0] {
		r.Max[0] = p[0]
	}
	if p[1] > r.Max[1] {
		r.Max[1] = p[1]
	}
}

// Width returns the extent along U.
func (r Rect) Width() float64 {
	return r.Max[0] - r.Min[0]
}

// Height returns the extent along V.
func (r Rect) Height() float64 {
	return r.Max[1] - r.Min[1]
}

// Extent returns the size along a UV axis.
func (r Rect) Extent(a Axis) float64 {
	return r.Max[a] - r.Min[a]
}

// Center returns the box midpoint.
func (r Rect) Center() mgl64.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Translate returns the box moved by d.
func (r Rect) Translate(d mgl64.Vec2) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}
