// Package config handles uvtool configuration loading and management.
package config

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/uvtopo/internal/arrange"
	"github.com/Faultbox/uvtopo/internal/gridcut"
	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/pkg/encoding"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all tool settings.
type Config struct {
	Topology TopologyConfig `yaml:"topology"`
	Arrange  ArrangeConfig  `yaml:"arrange"`
	GridCut  GridCutConfig  `yaml:"gridcut"`
	Flatten  FlattenConfig  `yaml:"flatten"`
	Pack     PackConfig     `yaml:"pack"`
	Input    InputConfig    `yaml:"input"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TopologyConfig holds UV comparison tolerances.
type TopologyConfig struct {
	SplitEpsilon  float64 `yaml:"split_epsilon"`  // Seam split tolerance
	IslandEpsilon float64 `yaml:"island_epsilon"` // Island search tolerance
}

// ArrangeConfig holds island layout settings.
type ArrangeConfig struct {
	Policy        arrange.Policy `yaml:"policy"`
	Axis          pmath.Axis     `yaml:"axis"`
	Spacing       float64        `yaml:"spacing"`
	Reverse       bool           `yaml:"reverse"`
	AlignBaseline bool           `yaml:"align_baseline"`
	SyncSelect    bool           `yaml:"sync_select"`
	OnCopy        bool           `yaml:"on_copy"` // Arrange a _Copy layer
}

// GridCutConfig holds grid cut settings.
type GridCutConfig struct {
	Axis        pmath.Axis `yaml:"axis"`
	Interval    float64    `yaml:"interval"`
	DissolveOld bool       `yaml:"dissolve_old"`
}

// FlattenConfig holds UV shape settings.
type FlattenConfig struct {
	Weight    float64 `yaml:"weight"`
	LayoutKey string  `yaml:"layout_key"`
}

// PackConfig holds lock group preparation settings.
type PackConfig struct {
	Offset float64 `yaml:"offset"` // U shift between meshes
}

// InputConfig holds OBJ reading settings.
type InputConfig struct {
	NameCharset string `yaml:"name_charset"` // e.g. euc-kr, gbk, shift-jis
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Topology: TopologyConfig{
			SplitEpsilon:  1e-6,
			IslandEpsilon: 1e-5,
		},
		Arrange: ArrangeConfig{
			Policy:  arrange.PolicyEquidistant,
			Axis:    pmath.AxisX,
			Spacing: 0.02,
		},
		GridCut: GridCutConfig{
			Axis:        pmath.AxisX,
			Interval:    0.01,
			DissolveOld: true,
		},
		Flatten: FlattenConfig{
			Weight:    1,
			LayoutKey: "UV_Layout",
		},
		Pack: PackConfig{
			Offset: arrange.DefaultPackOffset,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case !(c.Topology.SplitEpsilon > 0):
		return fmt.Errorf("%w: topology.split_epsilon must be positive", ErrInvalid)
	case !(c.Topology.IslandEpsilon > 0):
		return fmt.Errorf("%w: topology.island_epsilon must be positive", ErrInvalid)
	case !c.Arrange.Axis.Is2D():
		return fmt.Errorf("%w: arrange.axis must be x or y", ErrInvalid)
	case gomath.IsNaN(c.Arrange.Spacing) || gomath.IsInf(c.Arrange.Spacing, 0):
		return fmt.Errorf("%w: arrange.spacing must be finite", ErrInvalid)
	case !c.GridCut.Axis.Valid():
		return fmt.Errorf("%w: gridcut.axis", ErrInvalid)
	case !(c.GridCut.Interval >= gridcut.MinInterval):
		return fmt.Errorf("%w: gridcut.interval must be at least %v", ErrInvalid, gridcut.MinInterval)
	case gomath.IsNaN(c.Pack.Offset) || gomath.IsInf(c.Pack.Offset, 0):
		return fmt.Errorf("%w: pack.offset must be finite", ErrInvalid)
	case !(c.Flatten.Weight >= 0 && c.Flatten.Weight <= 1):
		return fmt.Errorf("%w: flatten.weight must be within [0,1]", ErrInvalid)
	}
	if _, err := encoding.Lookup(c.Input.NameCharset); err != nil {
		return fmt.Errorf("%w: input.name_charset: %v", ErrInvalid, err)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalid, err)
	}
	return nil
}
