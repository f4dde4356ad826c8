// Package mesh provides the indexed polygon mesh the UV tools operate on:
// vertices, faces, face corners ("loops"), UV layers, seams, selection and
// shape keys, all addressed by stable integer index.
package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a point shared by any number of face corners.
type Vertex struct {
	Co mgl64.Vec3
}

// Loop is one face corner. It binds a face to a vertex; its UV lives in the
// UV layers at the same index.
type Loop struct {
	Vert int
	Face int
	// UVSelect is the per-corner selection used when UV sync selection is off.
	UVSelect bool
}

// Face is an ordered polygon of loop indices.
type Face struct {
	Loops  []int
	Select bool
}

// UVLayer holds one UV coordinate per loop.
type UVLayer struct {
	Name string
	UV   []mgl64.Vec2
}

// ShapeKey is an alternate position per vertex mixed in by Value.
// Key 0, when present, is the basis.
type ShapeKey struct {
	Name  string
	Co    []mgl64.Vec3
	Value float64
}

// Mesh is a polygon mesh with per-corner UV data.
// A Mesh is not safe for concurrent use.
type Mesh struct {
	Name     string
	Verts    []Vertex
	Faces    []Face
	Loops    []Loop
	UVLayers []UVLayer
	// ActiveUV indexes UVLayers; -1 means no active layer.
	ActiveUV  int
	Seams     map[EdgeKey]bool
	ShapeKeys []ShapeKey
	// LockGroup is the packer lock group id, 0 when unassigned.
	LockGroup int

	uvIndex map[string]int
}

// New creates an empty mesh with no UV layers.
func New(name string) *Mesh {
	return &Mesh{
		Name:     name,
		ActiveUV: -1,
		Seams:    make(map[EdgeKey]bool),
		uvIndex:  make(map[string]int),
	}
}
