package io

import (
	"path"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/batchtable"
	"github.com/ecopia-map/cesium_tilecontent/internal/converters"
	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/gltf"
	"github.com/ecopia-map/cesium_tilecontent/internal/mesh"
	"github.com/ecopia-map/cesium_tilecontent/internal/tilecontent"
	"github.com/ecopia-map/cesium_tilecontent/internal/wkb"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/golang/glog"
	"github.com/twpayne/go-geom"
)

// Column major rotation turning z-up positions into the y-up frame of glTF
var yUpTransform = []float64{
	1, 0, 0, 0,
	0, 0, -1, 0,
	0, 1, 0, 0,
	0, 0, 0, 1,
}

type StandardConsumer struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewStandardConsumer(coordinateConverter converters.CoordinateConverter, elevationCorrector converters.ElevationCorrector) *StandardConsumer {
	return &StandardConsumer{
		coordinateConverter: coordinateConverter,
		elevationCorrector:  elevationCorrector,
	}
}

// Continually consumes WorkUnits submitted to a work channel producing the corresponding tile files.
// Continues working until the work channel is closed. The first error is submitted to the error
// channel, the remaining work is then drained without being processed.
func (c *StandardConsumer) Consume(workchan chan *WorkUnit, errchan chan error, waitGroup *sync.WaitGroup) {
	failed := false
	for {
		// get work from channel
		work, ok := <-workchan
		if !ok {
			// channel was closed by producer, quit infinite loop
			break
		}
		if failed {
			continue
		}

		if err := c.doWork(work); err != nil {
			glog.Errorf("tile %s: %v", path.Join(work.BasePath, work.Name), err)
			errchan <- err
			failed = true
		}
	}

	// signal waitgroup finished work
	waitGroup.Done()
}

func (c *StandardConsumer) doWork(workUnit *WorkUnit) error {
	if len(workUnit.Features) > 0 {
		return c.writeB3dmFile(workUnit)
	}
	if len(workUnit.Points) > 0 {
		return c.writePntsFile(workUnit)
	}
	return nil
}

// Converts a coordinate to ECEF, correcting its WGS84 elevation on the way
func (c *StandardConsumer) toCartesian(coord geometry.Vector3, srid int) (geometry.Vector3, error) {
	wgs84, err := c.coordinateConverter.ConvertCoordinateSrid(srid, converters.WGS84Srid, coord)
	if err != nil {
		return coord, err
	}
	wgs84.Z = c.elevationCorrector.CorrectElevation(wgs84.X, wgs84.Y, wgs84.Z)
	return c.coordinateConverter.ConvertToWGS84Cartesian(wgs84, converters.WGS84Srid)
}

// Writes a b3dm holding one batched glTF mesh, with one batch id per feature
func (c *StandardConsumer) writeB3dmFile(workUnit *WorkUnit) error {
	toCartesian := func(v geometry.Vector3) (geometry.Vector3, error) {
		return c.toCartesian(v, workUnit.Opts.Srid)
	}

	features := make([]*data.Feature, 0, len(workUnit.Features))
	multipolygons := make([]wkb.Multipolygon, 0, len(workUnit.Features))
	soups := make([]*mesh.TriangleSoup, 0, len(workUnit.Features))
	for _, feature := range workUnit.Features {
		mp, err := wkb.Parse(feature.Geometry)
		if err != nil {
			return errors.Wrapf(err, "feature %s", feature.ID)
		}
		soup, err := mesh.FromMultipolygons(mp)
		if err != nil {
			return errors.Wrapf(err, "feature %s", feature.ID)
		}
		if soup.TriangleCount() == 0 {
			glog.Warningf("feature %s has no triangle, skipped", feature.ID)
			continue
		}
		if err := soup.Transform(toCartesian); err != nil {
			return errors.Wrapf(err, "feature %s", feature.ID)
		}
		features = append(features, feature)
		multipolygons = append(multipolygons, mp)
		soups = append(soups, soup)
	}
	if len(soups) == 0 {
		glog.Warningf("tile %s has no geometry, skipped", workUnit.Name)
		return nil
	}

	if glog.V(1) {
		extent, err := sourceExtent(multipolygons)
		if err != nil {
			return err
		}
		glog.Infof("tile %s: %d features, source extent [%f %f %f] to [%f %f %f]", workUnit.Name, len(features),
			extent.Min(0), extent.Min(1), extent.Min(2), extent.Max(0), extent.Max(1), extent.Max(2))
	}

	// Evaluating average X, Y, Z to express coords relative to tile center
	center := computeAverageXYZ(soups)
	arrays := make([]gltf.GeometryArrays, 0, len(soups))
	for _, soup := range soups {
		_ = soup.Transform(func(v geometry.Vector3) (geometry.Vector3, error) {
			return v.Sub(center), nil
		})
		bbox, _ := soup.BoundingBox()
		arrays = append(arrays, gltf.GeometryArrays{
			Position: soup.PositionBytes(),
			Normal:   soup.NormalBytes(),
			BBox:     bbox,
		})
	}

	buildOptions := gltf.BuildOptions{Batched: true}
	if workUnit.Opts.TilerB3dmOptions != nil && workUnit.Opts.TilerB3dmOptions.YUp {
		buildOptions.Transform = yUpTransform
	}
	g, err := gltf.FromBinaryArrays(arrays, buildOptions)
	if err != nil {
		return err
	}

	var attributes []string
	if workUnit.Opts.TilerB3dmOptions != nil {
		attributes = workUnit.Opts.TilerB3dmOptions.Attributes
	}
	bt, err := generateBatchTable(features, attributes)
	if err != nil {
		return err
	}

	tile, err := tilecontent.NewB3dm(g, bt)
	if err != nil {
		return err
	}
	if err := tile.SetRTCCenter(center); err != nil {
		return err
	}
	return writeTile(tile, path.Join(workUnit.BasePath, workUnit.Name+tools.B3dmFileExtension))
}

// Extent of the features in their source reference system
func sourceExtent(multipolygons []wkb.Multipolygon) (*geom.Bounds, error) {
	extent := geom.NewBounds(geom.XYZ)
	for _, mp := range multipolygons {
		g, err := mp.ToGeom()
		if err != nil {
			return nil, err
		}
		extent.Extend(g)
	}
	return extent, nil
}

// Batch table holding the feature ids followed by one property per attribute. Attributes default
// to every attribute found on the features, sorted by name.
func generateBatchTable(features []*data.Feature, attributes []string) (*batchtable.BatchTable, error) {
	if len(attributes) == 0 {
		seen := make(map[string]bool)
		for _, feature := range features {
			for name := range feature.Attributes {
				if !seen[name] {
					seen[name] = true
					attributes = append(attributes, name)
				}
			}
		}
		sort.Strings(attributes)
	}

	bt := batchtable.New()
	ids := make([]string, len(features))
	for i, feature := range features {
		ids[i] = feature.ID
	}
	if err := bt.AddProperty("id", ids); err != nil {
		return nil, err
	}

	for _, name := range attributes {
		if name == "id" {
			continue
		}
		values := make([]interface{}, len(features))
		for i, feature := range features {
			values[i] = feature.Attributes[name]
		}
		if err := bt.AddProperty(name, values); err != nil {
			return nil, errors.Wrapf(err, "attribute %s", name)
		}
	}
	return bt, nil
}

// Writes a pnts holding positions relative to the average point, colors and intensities
func (c *StandardConsumer) writePntsFile(workUnit *WorkUnit) error {
	numPoints := len(workUnit.Points)
	coords := make([]geometry.Vector3, numPoints)
	colors := make([]uint8, numPoints*3)
	intensities := make([]uint8, numPoints)

	var sum geometry.Vector3
	for i, point := range workUnit.Points {
		outCrd, err := c.toCartesian(geometry.NewVector3(point.X, point.Y, point.Z), workUnit.Opts.Srid)
		if err != nil {
			return err
		}
		coords[i] = outCrd
		sum = sum.Add(outCrd)

		colors[i*3] = point.R
		colors[i*3+1] = point.G
		colors[i*3+2] = point.B
		intensities[i] = point.Intensity
	}

	center := sum.Scale(1 / float64(numPoints))
	positions := make([]float32, 0, numPoints*3)
	for _, coord := range coords {
		relative := coord.Sub(center).AsFloat32()
		positions = append(positions, relative[:]...)
	}

	tile, err := tilecontent.NewPntsFromPoints(positions, colors, &center)
	if err != nil {
		return err
	}
	tile.BatchTable = batchtable.New()
	if err := tile.BatchTable.AddBinaryProperty("INTENSITY", intensities, batchtable.ComponentTypeUnsignedByte, "SCALAR"); err != nil {
		return err
	}
	return writeTile(tile, path.Join(workUnit.BasePath, workUnit.Name+tools.PntsFileExtension))
}

func computeAverageXYZ(soups []*mesh.TriangleSoup) geometry.Vector3 {
	var sum geometry.Vector3
	n := 0
	for _, soup := range soups {
		for _, triangle := range soup.Triangles[0] {
			for _, vertex := range triangle {
				sum = sum.Add(vertex)
				n++
			}
		}
	}
	if n == 0 {
		return sum
	}
	return sum.Scale(1 / float64(n))
}

func writeTile(tile tilecontent.TileContent, filePath string) error {
	b, err := tile.Serialize()
	if err != nil {
		return errors.Wrapf(err, "cannot serialize %s", filePath)
	}
	glog.V(1).Infof("writing %s tile %s (%d bytes)", tile.Type(), filePath, len(b))
	return tools.WriteFile(filePath, b)
}
