package mesh

import (
	"errors"
	"fmt"
)

// Error kinds. Configuration errors are raised before any mutation; a
// partial mutation means the mesh may be left half-modified and the caller
// should restore its own snapshot (see Mesh.Clone).
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrPartialMutation = errors.New("partial mutation")
)

// Configuration errors.
var (
	ErrNoActiveUV     = fmt.Errorf("%w: no active UV layer", ErrConfiguration)
	ErrTooFewIslands  = fmt.Errorf("%w: need at least two islands", ErrConfiguration)
	ErrEmptySelection = fmt.Errorf("%w: no faces selected", ErrConfiguration)
	ErrInvalidOption  = fmt.Errorf("%w: invalid option", ErrConfiguration)
)

// Structural errors reported by Validate and the builders.
var (
	ErrBadIndex      = errors.New("index out of range")
	ErrDegenerate    = errors.New("degenerate face")
	ErrInconsistent  = errors.New("inconsistent topology")
	ErrDuplicateName = errors.New("duplicate layer name")
)
