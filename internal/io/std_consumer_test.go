package io

import (
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/tilecontent"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/internal/wkb"
	"github.com/twpayne/go-geom"
	geomwkb "github.com/twpayne/go-geom/encoding/wkb"
)

// Leaves coordinates untouched, so tests do not depend on proj
type identityConverter struct{}

func (identityConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Vector3) (geometry.Vector3, error) {
	return coord, nil
}

func (identityConverter) ConvertToWGS84Cartesian(coord geometry.Vector3, sourceSrid int) (geometry.Vector3, error) {
	return coord, nil
}

func (identityConverter) Cleanup() {}

type failingConverter struct{ identityConverter }

func (failingConverter) ConvertToWGS84Cartesian(coord geometry.Vector3, sourceSrid int) (geometry.Vector3, error) {
	return coord, errors.New("conversion failed")
}

func squareWKB(t *testing.T, x0, y0, x1, y1, z float64) []byte {
	t.Helper()
	mp, err := geom.NewMultiPolygon(geom.XYZ).SetCoords([][][]geom.Coord{{
		{{x0, y0, z}, {x1, y0, z}, {x1, y1, z}, {x0, y1, z}, {x0, y0, z}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := geomwkb.Marshal(mp, geomwkb.NDR)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func consume(t *testing.T, consumer *StandardConsumer, units ...*WorkUnit) []error {
	t.Helper()
	work := make(chan *WorkUnit, len(units))
	errchan := make(chan error, len(units))
	for _, unit := range units {
		work <- unit
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(1)
	go consumer.Consume(work, errchan, &wg)
	wg.Wait()
	close(errchan)

	var errs []error
	for err := range errchan {
		errs = append(errs, err)
	}
	return errs
}

func TestConsumeB3dm(t *testing.T) {
	tests := []struct {
		name   string
		yUp    bool
		matrix []float64
	}{
		{"z up", false, nil},
		{"y up", true, yUpTransform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := &tiler.TilerOptions{
				Srid:             4326,
				TilerB3dmOptions: &tiler.TilerB3dmOptions{YUp: tt.yUp},
			}
			unit := &WorkUnit{
				Features: []*data.Feature{
					data.NewFeature("a", squareWKB(t, 0, 0, 1, 1, 0), map[string]interface{}{"height": 3.5, "name": "first"}),
					data.NewFeature("b", squareWKB(t, 2, 0, 3, 1, 0), map[string]interface{}{"height": 4.0}),
				},
				Opts:     opts,
				BasePath: dir,
				Name:     "0",
			}
			consumer := NewStandardConsumer(identityConverter{}, offset_elevation_corrector.NewOffsetElevationCorrector(10))
			if errs := consume(t, consumer, unit); len(errs) > 0 {
				t.Fatal(errs)
			}

			content, err := tilecontent.ReadFile(filepath.Join(dir, "0.b3dm"))
			if err != nil {
				t.Fatal(err)
			}
			tile := content.(*tilecontent.B3dm)
			if n, ok := tile.FeatureTable.BatchLength(); !ok || n != 2 {
				t.Errorf("batch length %d %v", n, ok)
			}
			center, ok := tile.FeatureTable.RTCCenter()
			if !ok || center.Z != 10 || center.X <= 0 || center.X >= 3 {
				t.Errorf("rtc center %v %v", center, ok)
			}
			if names := tile.BatchTable.Header.Names(); !reflect.DeepEqual(names, []string{"id", "height", "name"}) {
				t.Errorf("batch table properties %v", names)
			}
			var ids []string
			if err := tile.BatchTable.Header.Decode("id", &ids); err != nil || !reflect.DeepEqual(ids, []string{"a", "b"}) {
				t.Errorf("ids %v, err %v", ids, err)
			}
			var names []interface{}
			if err := tile.BatchTable.Header.Decode("name", &names); err != nil || names[0] != "first" || names[1] != nil {
				t.Errorf("names %v, err %v", names, err)
			}

			if err := tile.GlTF.Validate(); err != nil {
				t.Error(err)
			}
			doc := tile.GlTF.Header
			if len(doc.Meshes) != 1 || len(doc.Nodes) != 1 {
				t.Fatalf("%d meshes, %d nodes", len(doc.Meshes), len(doc.Nodes))
			}
			if !reflect.DeepEqual(doc.Nodes[0].Matrix, tt.matrix) {
				t.Errorf("node matrix %v, want %v", doc.Nodes[0].Matrix, tt.matrix)
			}
		})
	}
}

func TestConsumeSkipsEmptyFeatures(t *testing.T) {
	dir := t.TempDir()
	empty, err := geomwkb.Marshal(geom.NewMultiPolygon(geom.XYZ), geomwkb.NDR)
	if err != nil {
		t.Fatal(err)
	}
	unit := &WorkUnit{
		Features: []*data.Feature{
			data.NewFeature("empty", empty, nil),
			data.NewFeature("kept", squareWKB(t, 0, 0, 1, 1, 5), nil),
		},
		Opts:     &tiler.TilerOptions{},
		BasePath: dir,
		Name:     "1",
	}
	consumer := NewStandardConsumer(identityConverter{}, offset_elevation_corrector.NewOffsetElevationCorrector(0))
	if errs := consume(t, consumer, unit); len(errs) > 0 {
		t.Fatal(errs)
	}
	content, err := tilecontent.ReadFile(filepath.Join(dir, "1.b3dm"))
	if err != nil {
		t.Fatal(err)
	}
	tile := content.(*tilecontent.B3dm)
	var ids []string
	if err := tile.BatchTable.Header.Decode("id", &ids); err != nil || !reflect.DeepEqual(ids, []string{"kept"}) {
		t.Errorf("ids %v, err %v", ids, err)
	}
}

func TestConsumePnts(t *testing.T) {
	dir := t.TempDir()
	unit := &WorkUnit{
		Points: []*data.Point{
			data.NewPoint(0, 0, 0, 255, 0, 0, 10),
			data.NewPoint(2, 4, 6, 0, 255, 0, 20),
		},
		Opts:     &tiler.TilerOptions{Srid: 4978},
		BasePath: dir,
		Name:     "0",
	}
	consumer := NewStandardConsumer(identityConverter{}, offset_elevation_corrector.NewOffsetElevationCorrector(0))
	if errs := consume(t, consumer, unit); len(errs) > 0 {
		t.Fatal(errs)
	}

	content, err := tilecontent.ReadFile(filepath.Join(dir, "0.pnts"))
	if err != nil {
		t.Fatal(err)
	}
	tile := content.(*tilecontent.Pnts)
	center, ok := tile.FeatureTable.RTCCenter()
	if !ok || center != geometry.NewVector3(1, 2, 3) {
		t.Errorf("rtc center %v %v", center, ok)
	}
	positions, err := tile.FeatureTable.Positions()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(positions, []float32{-1, -2, -3, 1, 2, 3}) {
		t.Errorf("positions %v", positions)
	}
	colors, err := tile.FeatureTable.Colors()
	if err != nil || !reflect.DeepEqual(colors, []uint8{255, 0, 0, 0, 255, 0}) {
		t.Errorf("colors %v, err %v", colors, err)
	}
	intensity, err := tile.BatchTable.BinaryProperty("INTENSITY")
	if err != nil || intensity[0] != 10 || intensity[1] != 20 {
		t.Errorf("intensity %v, err %v", intensity, err)
	}
}

func TestConsumeReportsFirstError(t *testing.T) {
	dir := t.TempDir()
	units := make([]*WorkUnit, 0)
	for _, name := range []string{"0", "1", "2"} {
		units = append(units, &WorkUnit{
			Points:   []*data.Point{data.NewPoint(1, 2, 3, 0, 0, 0, 0)},
			Opts:     &tiler.TilerOptions{},
			BasePath: dir,
			Name:     name,
		})
	}
	consumer := NewStandardConsumer(failingConverter{}, offset_elevation_corrector.NewOffsetElevationCorrector(0))
	errs := consume(t, consumer, units...)
	if len(errs) != 1 {
		t.Errorf("got %d errors, want 1", len(errs))
	}
}

func TestConsumeMalformedGeometry(t *testing.T) {
	unit := &WorkUnit{
		Features: []*data.Feature{data.NewFeature("bad", []byte{1, 6, 0}, nil)},
		Opts:     &tiler.TilerOptions{},
		BasePath: t.TempDir(),
		Name:     "0",
	}
	consumer := NewStandardConsumer(identityConverter{}, offset_elevation_corrector.NewOffsetElevationCorrector(0))
	if errs := consume(t, consumer, unit); len(errs) != 1 {
		t.Errorf("got %v, want one error", errs)
	}
}

func TestSourceExtent(t *testing.T) {
	var multipolygons []wkb.Multipolygon
	for _, b := range [][]byte{
		squareWKB(t, 0, 0, 1, 1, 5),
		squareWKB(t, -3, 2, -1, 4, -2),
	} {
		mp, err := wkb.Parse(b)
		if err != nil {
			t.Fatal(err)
		}
		multipolygons = append(multipolygons, mp)
	}

	extent, err := sourceExtent(multipolygons)
	if err != nil {
		t.Fatal(err)
	}
	wantMin := []float64{-3, 0, -2}
	wantMax := []float64{1, 4, 5}
	for dim := 0; dim < 3; dim++ {
		if extent.Min(dim) != wantMin[dim] || extent.Max(dim) != wantMax[dim] {
			t.Errorf("dimension %d spans [%v, %v], want [%v, %v]", dim, extent.Min(dim), extent.Max(dim), wantMin[dim], wantMax[dim])
		}
	}

	empty, err := sourceExtent(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !empty.IsEmpty() {
		t.Errorf("extent of no feature is %v", empty)
	}
}
