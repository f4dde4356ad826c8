package arrange

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
)

// DefaultPackOffset is the U distance between consecutive meshes.
const DefaultPackOffset = 2.0

// LockGroup is the pre-pack state recorded for one mesh.
type LockGroup struct {
	Mesh  string
	Group int
	// Offset is the U shift applied before scaling.
	Offset float64
	// Scale is the uniform UV scale applied after the shift.
	Scale float64
}

// Packer packs UV islands across meshes, honouring each mesh's lock group.
// Implementations are external solvers.
type Packer interface {
	Pack(meshes []*mesh.Mesh, groups []LockGroup) error
}

// PackerFunc adapts a function to Packer.
type PackerFunc func(meshes []*mesh.Mesh, groups []LockGroup) error

// Pack calls f.
func (f PackerFunc) Pack(meshes []*mesh.Mesh, groups []LockGroup) error {
	return f(meshes, groups)
}

// PrepareLockGroups readies meshes for a shared pack. Mesh i has its U
// coordinates shifted by i*offset, then all its UVs scaled by 1/d when the
// diagonal d of its 3D bounds is at least 1. Lock group ids are assigned
// from 1 in slice order. Every mesh needs an active UV layer; this is
// checked before anything is changed.
func PrepareLockGroups(meshes []*mesh.Mesh, offset float64) ([]LockGroup, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: no meshes to pack", mesh.ErrInvalidOption)
	}
	for _, m := range meshes {
		if _, err := m.ActiveLayer(); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
		}
	}

	groups := make([]LockGroup, len(meshes))
	for i, m := range meshes {
		shift := float64(i) * offset
		scale := 1.0
		if diag := m.Dimensions().Len(); diag >= 1 {
			scale = 1 / diag
		}

		layer, _ := m.ActiveLayer()
		for l, uv := range layer.UV {
			uv[0] += shift
			layer.UV[l] = uv.Mul(scale)
		}
		m.LockGroup = i + 1
		groups[i] = LockGroup{Mesh: m.Name, Group: i + 1, Offset: shift, Scale: scale}

		logger.Debug("prepared lock group",
			zap.String("mesh", m.Name),
			zap.Int("group", i+1),
			zap.Float64("offset", shift),
			zap.Float64("scale", scale))
	}
	return groups, nil
}

// RunPacker hands the prepared meshes to p. A packer failure leaves the
// meshes shifted and scaled, so it is reported as ErrPartialMutation.
func RunPacker(p Packer, meshes []*mesh.Mesh, groups []LockGroup) error {
	if p == nil {
		return fmt.Errorf("%w: no packer", mesh.ErrInvalidOption)
	}
	if len(groups) != len(meshes) {
		return fmt.Errorf("%w: %d lock groups for %d meshes", mesh.ErrInvalidOption, len(groups), len(meshes))
	}
	if err := p.Pack(meshes, groups); err != nil {
		logger.Error("packer failed", zap.Int("meshes", len(meshes)), zap.Error(err))
		return fmt.Errorf("%w: pack: %w", mesh.ErrPartialMutation, err)
	}
	return nil
}
