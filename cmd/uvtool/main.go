// uvtool is a CLI utility for UV topology work on OBJ meshes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/uvtopo/internal/arrange"
	"github.com/Faultbox/uvtopo/internal/config"
	"github.com/Faultbox/uvtopo/internal/flatten"
	"github.com/Faultbox/uvtopo/internal/gridcut"
	"github.com/Faultbox/uvtopo/internal/logger"
	"github.com/Faultbox/uvtopo/internal/mesh"
	"github.com/Faultbox/uvtopo/internal/topology"
	"github.com/Faultbox/uvtopo/pkg/formats"
	pmath "github.com/Faultbox/uvtopo/pkg/math"
)

var cfg *config.Config

func main() {
	// Parse global flags first
	config.ParseFlags()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "islands":
		err = cmdIslands(args)
	case "split":
		err = cmdSplit(args)
	case "flatten":
		err = cmdFlatten(args)
	case "arrange":
		err = cmdArrange(args)
	case "pack":
		err = cmdPack(args)
	case "gridcut", "cut":
		err = cmdGridCut(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`uvtool - mesh UV topology utility

Usage:
  uvtool [-config file] [-debug] [-epsilon e] [-log-file f] [-name-charset cs] <command> [options]

Commands:
  info <in.obj>                  Show counts and edge continuity classes
  islands <in.obj>               List UV islands
  split <in.obj> <out.obj>       Split vertices along UV seams
  flatten <in.obj> <out.obj>     Build the UV shape mesh and write its pose
  arrange <in.obj> <out.obj>     Lay out UV islands along an axis
  pack <out_dir> <in.obj>...     Prepare meshes for a shared UV pack
  gridcut <in.obj> <out.obj>     Cut faces on a regular grid
  config [-o file]               Save the effective settings as YAML

Every command accepts -seams "a-b,c-d" (1-based OBJ vertex pairs).
All faces are selected.

Examples:
  uvtool info hair.obj
  uvtool split -seams "1-2,2-5" hair.obj hair_split.obj
  uvtool arrange -policy extent -axis u -spacing 0.05 -baseline in.obj out.obj
  uvtool gridcut -axis x -interval 0.01 card.obj card_cut.obj`)
}

// newFlagSet returns a flag set carrying the shared -seams option.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	seams := fs.String("seams", "", "Seam edges as 1-based vertex pairs, e.g. \"1-2,2-3\"")
	return fs, seams
}

func loadMesh(path, seams string) (*mesh.Mesh, error) {
	var ro formats.ReadOptions
	if cfg != nil {
		ro.NameCharset = cfg.Input.NameCharset
	}
	obj, err := ro.ParseFile(path)
	if err != nil {
		return nil, err
	}
	m, err := mesh.FromOBJ(obj)
	if err != nil {
		return nil, fmt.Errorf("building mesh from %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	pairs, err := parseSeams(seams)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		if p[0] >= len(m.Verts) || p[1] >= len(m.Verts) {
			return nil, fmt.Errorf("seam %d-%d: %w", p[0]+1, p[1]+1, mesh.ErrBadIndex)
		}
		m.SetSeam(p[0], p[1], true)
	}
	m.SelectAll(true)

	logger.Debug("loaded mesh",
		zap.String("path", path),
		zap.String("mesh", m.Name),
		zap.Int("verts", len(m.Verts)),
		zap.Int("faces", len(m.Faces)),
		zap.Int("seams", len(pairs)))
	return m, nil
}

// parseSeams reads "a-b,c-d" with 1-based indices and returns 0-based pairs.
func parseSeams(s string) ([][2]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out [][2]int
	for _, part := range strings.Split(s, ",") {
		ends := strings.Split(strings.TrimSpace(part), "-")
		if len(ends) != 2 {
			return nil, fmt.Errorf("seam %q: want a-b", part)
		}
		var pair [2]int
		for i, e := range ends {
			n, err := strconv.Atoi(strings.TrimSpace(e))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("seam %q: bad vertex %q", part, e)
			}
			pair[i] = n - 1
		}
		if pair[0] == pair[1] {
			return nil, fmt.Errorf("seam %q: endpoints are equal", part)
		}
		out = append(out, pair)
	}
	return out, nil
}

func cmdInfo(args []string) error {
	fs, seams := newFlagSet("info")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: uvtool info [-seams s] <in.obj>")
	}

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}

	fmt.Printf("Mesh:   %s\n", m.Name)
	fmt.Printf("Verts:  %d\n", len(m.Verts))
	fmt.Printf("Faces:  %d\n", len(m.Faces))
	fmt.Printf("Loops:  %d\n", len(m.Loops))
	fmt.Printf("Seams:  %d\n", len(m.SeamKeys()))

	classes, err := topology.NewPredicate(cfg.Topology.SplitEpsilon).ClassifyAll(m)
	if errors.Is(err, mesh.ErrNoActiveUV) {
		fmt.Println("UV:     none")
		return nil
	}
	if err != nil {
		return err
	}
	counts := topology.CountClasses(classes)
	fmt.Println()
	fmt.Println("Edges by class:")
	for _, c := range []topology.EdgeClass{topology.Continuous, topology.Discontinuous, topology.Boundary, topology.NonManifold} {
		fmt.Printf("  %-14s %d\n", c, counts[c])
	}
	return nil
}

func cmdIslands(args []string) error {
	fs, seams := newFlagSet("islands")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: uvtool islands [-seams s] <in.obj>")
	}

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}
	islands, err := topology.FindIslands(m, cfg.Topology.IslandEpsilon)
	if err != nil {
		return err
	}

	fmt.Printf("%d islands\n", len(islands))
	for i, is := range islands {
		fmt.Printf("  #%-4d faces %-5d loops %-6d bbox (%.4f, %.4f)-(%.4f, %.4f)\n",
			i, len(is.Faces), len(is.Loops),
			is.BBox.Min[0], is.BBox.Min[1], is.BBox.Max[0], is.BBox.Max[1])
	}
	return nil
}

func cmdSplit(args []string) error {
	fs, seams := newFlagSet("split")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: uvtool split [-seams s] <in.obj> <out.obj>")
	}

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}
	res, err := topology.SplitSeams(m, topology.NewPredicate(cfg.Topology.SplitEpsilon))
	if err != nil {
		return err
	}
	if err := m.ToOBJ(nil).SaveTo(fs.Arg(1)); err != nil {
		return err
	}

	fmt.Printf("Split %d edges, added %d vertices", res.EdgesCut, res.VertsAdded)
	if res.NonManifold > 0 {
		fmt.Printf(" (%d non-manifold)", res.NonManifold)
	}
	fmt.Println()
	return nil
}

func cmdFlatten(args []string) error {
	fs, seams := newFlagSet("flatten")
	weight := fs.Float64("weight", cfg.Flatten.Weight, "UV pose weight, 0 to 1")
	inPlace := fs.Bool("inplace", false, "Add a layout shape key without splitting")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: uvtool flatten [-weight w] [-inplace] [-seams s] <in.obj> <out.obj>")
	}

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}

	if *inPlace {
		k, err := flatten.SyncShapeKey(m, cfg.Flatten.LayoutKey)
		if err != nil {
			return err
		}
		m.ShapeKeys[k].Value = *weight
		if err := m.ToOBJ(m.EvaluatedPositions()).SaveTo(fs.Arg(1)); err != nil {
			return err
		}
		fmt.Printf("Added shape key %s to %s\n", m.ShapeKeys[k].Name, m.Name)
		return nil
	}

	opts := flatten.DefaultOptions()
	opts.SplitEpsilon = cfg.Topology.SplitEpsilon
	opts.Weight = *weight
	out, res, err := flatten.MeshToUV(m, opts)
	if err != nil {
		return err
	}
	if err := out.ToOBJ(out.EvaluatedPositions()).SaveTo(fs.Arg(1)); err != nil {
		return err
	}

	fmt.Printf("Built %s: %d vertices (%d added by split)\n", out.Name, len(out.Verts), res.Split.VertsAdded)
	return nil
}

func cmdArrange(args []string) error {
	fs, seams := newFlagSet("arrange")
	policy := fs.String("policy", cfg.Arrange.Policy.String(), "Layout policy: equidistant or extent")
	axis := fs.String("axis", cfg.Arrange.Axis.String(), "Layout axis: x (u) or y (v)")
	spacing := fs.Float64("spacing", cfg.Arrange.Spacing, "Gap between islands")
	reverse := fs.Bool("reverse", cfg.Arrange.Reverse, "Sort smallest first (extent policy)")
	baseline := fs.Bool("baseline", cfg.Arrange.AlignBaseline, "Align islands on a common baseline (extent policy)")
	onCopy := fs.Bool("copy", cfg.Arrange.OnCopy, "Arrange a _Copy of the UV layer and write that")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: uvtool arrange [options] <in.obj> <out.obj>")
	}

	opts := arrange.DefaultOptions()
	var err error
	if opts.Policy, err = arrange.ParsePolicy(*policy); err != nil {
		return err
	}
	if opts.Axis, err = pmath.ParseAxis(*axis); err != nil {
		return err
	}
	opts.Spacing = *spacing
	opts.Reverse = *reverse
	opts.AlignBaseline = *baseline
	opts.SyncSelect = true
	opts.OnCopy = *onCopy
	opts.Epsilon = cfg.Topology.IslandEpsilon

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}
	res, _, err := arrange.Arrange(m, opts)
	if err != nil {
		return err
	}
	if err := m.ToOBJ(nil).SaveTo(fs.Arg(1)); err != nil {
		return err
	}

	layer, _ := m.ActiveLayer()
	fmt.Printf("Arranged %d islands (%s along %s) in layer %s\n", len(res.Placements), opts.Policy, opts.Axis, layer.Name)
	return nil
}

func cmdPack(args []string) error {
	fs, seams := newFlagSet("pack")
	offset := fs.Float64("offset", cfg.Pack.Offset, "U offset between meshes")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: uvtool pack [-offset o] <out_dir> <in.obj>...")
	}

	outDir := fs.Arg(0)
	var meshes []*mesh.Mesh
	var paths []string
	for _, path := range fs.Args()[1:] {
		m, err := loadMesh(path, *seams)
		if err != nil {
			return err
		}
		meshes = append(meshes, m)
		paths = append(paths, path)
	}

	groups, err := arrange.PrepareLockGroups(meshes, *offset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	for i, m := range meshes {
		out := filepath.Join(outDir, filepath.Base(paths[i]))
		if err := m.ToOBJ(nil).SaveTo(out); err != nil {
			return err
		}
		g := groups[i]
		fmt.Printf("  %-20s group %-3d offset %-6.3f scale %.4f\n", g.Mesh, g.Group, g.Offset, g.Scale)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Write here instead of the user config directory")
	fs.Parse(args)

	path := *out
	if path == "" {
		if err := cfg.Save(); err != nil {
			return err
		}
		path = filepath.Join(config.ConfigDir(), config.FileName)
	} else if err := cfg.SaveTo(path); err != nil {
		return err
	}

	fmt.Printf("Wrote config to %s\n", path)
	return nil
}

func cmdGridCut(args []string) error {
	fs, seams := newFlagSet("gridcut")
	axis := fs.String("axis", cfg.GridCut.Axis.String(), "Cut axis: x, y or z")
	interval := fs.Float64("interval", cfg.GridCut.Interval, "Distance between cuts")
	dissolve := fs.Bool("dissolve", cfg.GridCut.DissolveOld, "Dissolve old edges across the axis")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return errors.New("usage: uvtool gridcut [-axis a] [-interval i] [-dissolve] <in.obj> <out.obj>")
	}

	opts := gridcut.DefaultOptions()
	var err error
	if opts.Axis, err = pmath.ParseAxis(*axis); err != nil {
		return err
	}
	opts.Interval = *interval
	opts.DissolveOld = *dissolve

	m, err := loadMesh(fs.Arg(0), *seams)
	if err != nil {
		return err
	}
	res, err := gridcut.Cut(m, opts)
	if err != nil {
		return err
	}
	if err := m.ToOBJ(nil).SaveTo(fs.Arg(1)); err != nil {
		return err
	}

	fmt.Printf("Made %d cuts along %s, split %d faces", res.Cuts, opts.Axis, res.FacesSplit)
	if opts.DissolveOld {
		fmt.Printf(", dissolved %d old edges", res.Dissolved)
	}
	if res.Skipped > 0 {
		fmt.Printf(", skipped %d faces", res.Skipped)
	}
	fmt.Println()
	return nil
}
