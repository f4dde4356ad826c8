package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/uvtopo/internal/config"
)

func TestParseSeams(t *testing.T) {
	tests := []struct {
		in      string
		want    [][2]int
		wantErr bool
	}{
		{"", nil, false},
		{"1-2", [][2]int{{0, 1}}, false},
		{" 3-1 , 4-5 ", [][2]int{{2, 0}, {3, 4}}, false},
		{"1", nil, true},
		{"0-1", nil, true},
		{"2-2", nil, true},
		{"a-b", nil, true},
	}
	for _, tt := range tests {
		got, err := parseSeams(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSeams(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSeams(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseSeams(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestLoadMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 1 1\nvt 0 1\nf 1/1 2/2 3/3 4/4\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write obj: %v", err)
	}

	m, err := loadMesh(path, "1-2")
	if err != nil {
		t.Fatalf("loadMesh: %v", err)
	}
	if m.Name != "quad" {
		t.Errorf("expected name quad, got %s", m.Name)
	}
	if len(m.SeamKeys()) != 1 {
		t.Errorf("expected 1 seam, got %d", len(m.SeamKeys()))
	}
	if !m.Faces[0].Select {
		t.Error("expected faces to be selected")
	}

	if _, err := loadMesh(path, "1-9"); err == nil {
		t.Error("expected error for out-of-range seam")
	}
}

func TestLoadMeshNameCharset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.obj")
	// Object name "中文" in GBK.
	src := append([]byte("o "), 0xD6, 0xD0, 0xCE, 0xC4)
	src = append(src, "\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n"...)
	if err := os.WriteFile(path, src, 0644); err != nil {
		t.Fatalf("failed to write obj: %v", err)
	}

	prev := cfg
	cfg = config.Default()
	cfg.Input.NameCharset = "gbk"
	defer func() { cfg = prev }()

	m, err := loadMesh(path, "")
	if err != nil {
		t.Fatalf("loadMesh: %v", err)
	}
	if m.Name != "中文" {
		t.Errorf("expected decoded name, got %q", m.Name)
	}
}

func TestCmdConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	prev := cfg
	cfg = config.Default()
	cfg.GridCut.Interval = 0.5
	defer func() { cfg = prev }()

	if err := cmdConfig(nil); err != nil {
		t.Fatalf("cmdConfig: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(config.ConfigDir(), config.FileName))
	if err != nil {
		t.Fatalf("expected config in user dir: %v", err)
	}
	if !strings.Contains(string(data), "interval: 0.5") {
		t.Errorf("expected saved interval, got:\n%s", data)
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := cmdConfig([]string{"-o", path}); err != nil {
		t.Fatalf("cmdConfig -o: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config at %s: %v", path, err)
	}
}
