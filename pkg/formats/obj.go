// Package formats provides readers and writers for mesh interchange files.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/uvtopo/pkg/encoding"
)

// OBJ format errors.
var (
	ErrOBJBadVertex   = errors.New("malformed OBJ vertex")
	ErrOBJBadTexCoord = errors.New("malformed OBJ texture coordinate")
	ErrOBJBadFace     = errors.New("malformed OBJ face")
	ErrOBJIndexRange  = errors.New("OBJ index out of range")
)

// OBJCorner is one face corner. Indices are zero-based; TexCoord is -1 when
// the corner has no texture coordinate.
type OBJCorner struct {
	Vertex   int
	TexCoord int
}

// OBJFace is an ordered polygon.
type OBJFace struct {
	Corners []OBJCorner
}

// OBJ holds the subset of a Wavefront OBJ file the UV tools work with:
// one object, positions, texture coordinates and polygon faces.
// Normals, materials and groups are skipped on read.
type OBJ struct {
	Name      string
	Positions [][3]float64
	TexCoords [][2]float64
	Faces     []OBJFace
}

// ReadOptions controls OBJ parsing.
type ReadOptions struct {
	// NameCharset decodes object names exported by tools that write
	// legacy code pages ("euc-kr", "gbk", "shift-jis", ...). Names that
	// are already valid UTF-8 are kept. Empty keeps the raw bytes.
	NameCharset string
}

// ParseOBJ parses an OBJ file from raw bytes.
func ParseOBJ(data []byte) (*OBJ, error) {
	return ReadOptions{}.Parse(data)
}

// ParseOBJFile loads and parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	return ReadOptions{}.ParseFile(path)
}

// ParseFile loads and parses an OBJ file from disk.
func (ro ReadOptions) ParseFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ro.Parse(data)
}

// Parse parses an OBJ file from raw bytes.
func (ro ReadOptions) Parse(data []byte) (*OBJ, error) {
	if _, err := encoding.Lookup(ro.NameCharset); err != nil {
		return nil, err
	}

	obj := &OBJ{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "o":
			if obj.Name == "" && len(fields) > 1 {
				name, err := encoding.ToUTF8([]byte(strings.Join(fields[1:], " ")), ro.NameCharset)
				if err != nil {
					return nil, fmt.Errorf("line %d: object name: %w", lineNo, err)
				}
				obj.Name = name
			}
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrOBJBadVertex, err)
			}
			obj.Positions = append(obj.Positions, [3]float64{p[0], p[1], p[2]})
		case "vt":
			p, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrOBJBadTexCoord, err)
			}
			obj.TexCoords = append(obj.TexCoords, [2]float64{p[0], p[1]})
		case "f":
			face, err := obj.parseFace(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Faces = append(obj.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return obj, nil
}

// parseFace resolves "v", "v/vt", "v//vn" and "v/vt/vn" corners, including
// negative (relative) indices, against the elements read so far.
func (o *OBJ) parseFace(tokens []string) (OBJFace, error) {
	if len(tokens) < 3 {
		return OBJFace{}, fmt.Errorf("%w: need at least 3 corners, got %d", ErrOBJBadFace, len(tokens))
	}

	face := OBJFace{Corners: make([]OBJCorner, 0, len(tokens))}
	for _, tok := range tokens {
		parts := strings.Split(tok, "/")

		v, err := resolveIndex(parts[0], len(o.Positions))
		if err != nil {
			return OBJFace{}, err
		}

		vt := -1
		if len(parts) > 1 && parts[1] != "" {
			vt, err = resolveIndex(parts[1], len(o.TexCoords))
			if err != nil {
				return OBJFace{}, err
			}
		}
		face.Corners = append(face.Corners, OBJCorner{Vertex: v, TexCoord: vt})
	}
	return face, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrOBJBadFace, s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i = count + i
	default:
		return 0, fmt.Errorf("%w: zero index", ErrOBJIndexRange)
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("%w: %s (have %d)", ErrOBJIndexRange, s, count)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// Write encodes the OBJ. Indices are written one-based.
func (o *OBJ) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if o.Name != "" {
		fmt.Fprintf(bw, "o %s\n", o.Name)
	}
	for _, p := range o.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]))
	}
	for _, t := range o.TexCoords {
		fmt.Fprintf(bw, "vt %s %s\n", formatFloat(t[0]), formatFloat(t[1]))
	}
	for _, f := range o.Faces {
		bw.WriteString("f")
		for _, c := range f.Corners {
			if c.TexCoord >= 0 {
				fmt.Fprintf(bw, " %d/%d", c.Vertex+1, c.TexCoord+1)
			} else {
				fmt.Fprintf(bw, " %d", c.Vertex+1)
			}
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// SaveTo writes the OBJ to path.
func (o *OBJ) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
