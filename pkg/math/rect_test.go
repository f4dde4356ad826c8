package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRectExtend(t *testing.T) {
	r := EmptyRect()
	if !r.IsEmpty() {
		t.Fatal("EmptyRect() should be empty")
	}

	r.Extend(mgl64.Vec2{1, 2})
	r.Extend(mgl64.Vec2{-1, 4})
	want := Rect{Min: mgl64.Vec2{-1, 2}, Max: mgl64.Vec2{1, 4}}
	if r != want {
		t.Errorf("Rect.Extend() = %v, want %v", r, want)
	}
	if r.IsEmpty() {
		t.Error("rect with points should not be empty")
	}
}

func TestRectMeasures(t *testing.T) {
	r := Rect{Min: mgl64.Vec2{0, 1}, Max: mgl64.Vec2{3, 5}}

	if got := r.Width(); got != 3 {
		t.Errorf("Rect.Width() = %v, want 3", got)
	}
	if got := r.Height(); got != 4 {
		t.Errorf("Rect.Height() = %v, want 4", got)
	}
	if got := r.Extent(AxisY); got != 4 {
		t.Errorf("Rect.Extent(Y) = %v, want 4", got)
	}
	if got := r.Center(); got != (mgl64.Vec2{1.5, 3}) {
		t.Errorf("Rect.Center() = %v, want (1.5, 3)", got)
	}
}

func TestRectTranslate(t *testing.T) {
	r := Rect{Min: mgl64.Vec2{0, 0}, Max: mgl64.Vec2{1, 1}}
	got := r.Translate(mgl64.Vec2{2, -1})
	want := Rect{Min: mgl64.Vec2{2, -1}, Max: mgl64.Vec2{3, 0}}
	if got != want {
		t.Errorf("Rect.Translate() = %v, want %v", got, want)
	}
}

func TestParseAxis(t *testing.T) {
	tests := []struct {
		in      string
		want    Axis
		wantErr bool
	}{
		{"x", AxisX, false},
		{"U", AxisX, false},
		{" y ", AxisY, false},
		{"v", AxisY, false},
		{"Z", AxisZ, false},
		{"w", AxisX, true},
	}

	for _, tt := range tests {
		got, err := ParseAxis(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAxis(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAxis(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAxisHelpers(t *testing.T) {
	if AxisX.Perpendicular() != AxisY || AxisY.Perpendicular() != AxisX {
		t.Error("Perpendicular should swap X and Y")
	}
	if AxisZ.Is2D() {
		t.Error("Z is not a UV axis")
	}
	if got := AxisZ.Unit(); got != (mgl64.Vec3{0, 0, 1}) {
		t.Errorf("AxisZ.Unit() = %v", got)
	}
	if Axis(7).Valid() {
		t.Error("Axis(7) should be invalid")
	}
}
