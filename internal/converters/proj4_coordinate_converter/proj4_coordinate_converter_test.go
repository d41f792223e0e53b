package proj4_coordinate_converter

import (
	"math"
	"testing"

	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
)

func near(a, b geometry.Vector3, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}

func TestConvertToWGS84Cartesian(t *testing.T) {
	cc := NewProj4CoordinateConverter()
	defer cc.Cleanup()

	tests := []struct {
		name  string
		coord geometry.Vector3
		want  geometry.Vector3
	}{
		{"origin", geometry.NewVector3(0, 0, 0), geometry.NewVector3(6378137, 0, 0)},
		{"east", geometry.NewVector3(90, 0, 0), geometry.NewVector3(0, 6378137, 0)},
		{"north pole", geometry.NewVector3(0, 90, 0), geometry.NewVector3(0, 0, 6356752.314245)},
		{"elevated", geometry.NewVector3(0, 0, 100), geometry.NewVector3(6378237, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cc.ConvertToWGS84Cartesian(tt.coord, 4326)
			if err != nil {
				t.Fatal(err)
			}
			if !near(got, tt.want, 1e-3) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cc := NewProj4CoordinateConverter()
	defer cc.Cleanup()

	coord := geometry.NewVector3(12.4924, 41.8902, 35)
	ecef, err := cc.ConvertCoordinateSrid(4326, 4978, coord)
	if err != nil {
		t.Fatal(err)
	}
	back, err := cc.ConvertCoordinateSrid(4978, 4326, ecef)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back.X-coord.X) > 1e-7 || math.Abs(back.Y-coord.Y) > 1e-7 || math.Abs(back.Z-coord.Z) > 1e-3 {
		t.Errorf("got %v, want %v", back, coord)
	}

	same, err := cc.ConvertCoordinateSrid(3857, 3857, coord)
	if err != nil || same != coord {
		t.Errorf("identity conversion changed %v into %v (%v)", coord, same, err)
	}
}

func TestDefinition(t *testing.T) {
	if !isGeographic(4326) || isGeographic(4978) {
		t.Error("4326 is geographic, 4978 is not")
	}
	if got := Definition(32633); got != "+init=epsg:32633" {
		t.Errorf("got %s", got)
	}
}
