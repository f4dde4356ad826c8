package formats

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

const quadOBJ = `# two triangles
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl skin
f 1/1/1 2/2/1 3/3/1
f 1/1 3/3 -1/-1
`

func TestParseOBJ_Valid(t *testing.T) {
	obj, err := ParseOBJ([]byte(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if obj.Name != "Quad" {
		t.Errorf("expected name Quad, got %q", obj.Name)
	}
	if len(obj.Positions) != 4 {
		t.Errorf("expected 4 positions, got %d", len(obj.Positions))
	}
	if len(obj.TexCoords) != 4 {
		t.Errorf("expected 4 texcoords, got %d", len(obj.TexCoords))
	}
	if len(obj.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(obj.Faces))
	}

	last := obj.Faces[1].Corners[2]
	if last.Vertex != 3 || last.TexCoord != 3 {
		t.Errorf("negative index resolved to %+v, want {3 3}", last)
	}
}

func TestParseOBJ_NoTexCoords(t *testing.T) {
	obj, err := ParseOBJ([]byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n"))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	for _, c := range obj.Faces[0].Corners {
		if c.TexCoord != -1 {
			t.Errorf("expected no texcoord, got %d", c.TexCoord)
		}
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"bad vertex", "v 0 zero 0\n", ErrOBJBadVertex},
		{"short texcoord", "vt 0\n", ErrOBJBadTexCoord},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", ErrOBJBadFace},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n", ErrOBJIndexRange},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", ErrOBJIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOBJWriteRead(t *testing.T) {
	obj, err := ParseOBJ([]byte(quadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := obj.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	back, err := ParseOBJFile(path)
	if err != nil {
		t.Fatalf("ParseOBJFile failed: %v", err)
	}
	if back.Name != obj.Name || len(back.Faces) != len(obj.Faces) {
		t.Errorf("reloaded OBJ differs: %+v", back)
	}
	if back.Positions[2] != [3]float64{1, 1, 0} {
		t.Errorf("expected position (1,1,0), got %v", back.Positions[2])
	}
}

func TestOBJWrite_Format(t *testing.T) {
	obj := &OBJ{
		Positions: [][3]float64{{0, 0, 0}, {0.5, 0, 0}, {0, 0.25, 0}},
		Faces:     []OBJFace{{Corners: []OBJCorner{{0, -1}, {1, -1}, {2, -1}}}},
	}
	var buf bytes.Buffer
	if err := obj.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "v 0 0 0\nv 0.5 0 0\nv 0 0.25 0\nf 1 2 3\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestParseOBJ_NameCharset(t *testing.T) {
	// "o " + "한글" in EUC-KR
	data := append([]byte("o "), 0xC7, 0xD1, 0xB1, 0xDB)
	data = append(data, "\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"...)

	obj, err := ReadOptions{NameCharset: "euc-kr"}.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if obj.Name != "한글" {
		t.Errorf("expected decoded name, got %q", obj.Name)
	}

	raw, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if raw.Name != "\xC7\xD1\xB1\xDB" {
		t.Errorf("expected raw name bytes, got %q", raw.Name)
	}

	if _, err := (ReadOptions{NameCharset: "klingon"}).Parse(data); err == nil {
		t.Error("expected error for unknown charset")
	}
}
