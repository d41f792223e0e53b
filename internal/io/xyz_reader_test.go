package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/cesium_tilecontent/internal/data"
)

func TestParseXyzPoint(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   data.Point
		fails  bool
	}{
		{"xyz", []string{"1", "2", "3.5"}, data.Point{X: 1, Y: 2, Z: 3.5}, false},
		{"xyzi", []string{"1", "2", "3", "40"}, data.Point{X: 1, Y: 2, Z: 3, Intensity: 40}, false},
		{"xyzrgb", []string{"1", "2", "3", "10", "20", "30"}, data.Point{X: 1, Y: 2, Z: 3, R: 10, G: 20, B: 30}, false},
		{"xyzirgb", []string{"1", "2", "3", "7", "10", "20", "30"}, data.Point{X: 1, Y: 2, Z: 3, Intensity: 7, R: 10, G: 20, B: 30}, false},
		{"clamped colors", []string{"0", "0", "0", "-4", "300", "12.7"}, data.Point{R: 0, G: 255, B: 12}, false},
		{"five fields", []string{"1", "2", "3", "4", "5"}, data.Point{}, true},
		{"two fields", []string{"1", "2"}, data.Point{}, true},
		{"not a number", []string{"1", "x", "3"}, data.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseXyzPoint(tt.fields)
			if tt.fails {
				if err == nil {
					t.Errorf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if *got != tt.want {
				t.Errorf("got %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestXyzReader(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cloud.xyz")
	content := "1 2 3 255 0 0\n\n4 5 6 0 255 0\n7 8 9 0 0 255\n"
	if err := os.WriteFile(file, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	r := NewXyzReader(file)
	if r.Name() != "cloud" {
		t.Errorf("name %s", r.Name())
	}
	var points []*data.Point
	err := r.ForEach(func(p *data.Point) error {
		points = append(points, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points", len(points))
	}
	if points[2].Z != 9 || points[2].B != 255 {
		t.Errorf("last point %+v", points[2])
	}

	bad := filepath.Join(dir, "bad.xyz")
	if err := os.WriteFile(bad, []byte("1 2 3\n1 2\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := NewXyzReader(bad).ForEach(func(*data.Point) error { return nil }); err == nil {
		t.Error("expected an error for a line with two fields")
	}
	if err := NewXyzReader(filepath.Join(dir, "missing.xyz")).ForEach(func(*data.Point) error { return nil }); err == nil {
		t.Error("expected an error for a missing file")
	}
}
