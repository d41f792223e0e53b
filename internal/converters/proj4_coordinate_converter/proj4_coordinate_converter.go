package proj4_coordinate_converter

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/converters"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/golang/glog"
	proj "github.com/xeonx/proj4"
)

const toRadians = math.Pi / 180
const toDeg = 180 / math.Pi

// proj4 definitions used instead of the EPSG init files
var definitions = map[int]string{
	4326: "+proj=longlat +datum=WGS84 +no_defs",
	4978: "+proj=geocent +datum=WGS84 +units=m +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +wktext +no_defs",
	4258: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	4269: "+proj=longlat +datum=NAD83 +no_defs",
	4490: "+proj=longlat +ellps=GRS80 +no_defs",
}

type proj4CoordinateConverter struct {
	// proj handles are not safe for concurrent use
	sync.Mutex
	projections map[int]*proj.Proj
}

func NewProj4CoordinateConverter() converters.CoordinateConverter {
	return &proj4CoordinateConverter{
		projections: make(map[int]*proj.Proj),
	}
}

// proj4 definition of the given EPSG code
func Definition(srid int) string {
	if def, ok := definitions[srid]; ok {
		return def
	}
	return fmt.Sprintf("+init=epsg:%d", srid)
}

// Geographic systems take and return degrees, proj works in radians
func isGeographic(srid int) bool {
	return strings.Contains(Definition(srid), "+proj=longlat")
}

// Converts the given coordinate from the given source Srid to the given target srid.
func (cc *proj4CoordinateConverter) ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Vector3) (geometry.Vector3, error) {
	if sourceSrid == targetSrid {
		return coord, nil
	}

	cc.Lock()
	defer cc.Unlock()

	src, err := cc.initProjection(sourceSrid)
	if err != nil {
		return coord, err
	}
	dst, err := cc.initProjection(targetSrid)
	if err != nil {
		return coord, err
	}

	x, y, z := []float64{coord.X}, []float64{coord.Y}, []float64{coord.Z}
	if isGeographic(sourceSrid) {
		x[0] *= toRadians
		y[0] *= toRadians
	}
	if err := proj.TransformRaw(src, dst, x, y, z); err != nil {
		return coord, errors.Wrapf(err, "cannot convert %v from EPSG:%d to EPSG:%d", coord, sourceSrid, targetSrid)
	}
	if isGeographic(targetSrid) {
		x[0] *= toDeg
		y[0] *= toDeg
	}
	return geometry.NewVector3(x[0], y[0], z[0]), nil
}

func (cc *proj4CoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Vector3, sourceSrid int) (geometry.Vector3, error) {
	return cc.ConvertCoordinateSrid(sourceSrid, converters.WGS84CartesianSrid, coord)
}

// Releases all projection objects held in the cache
func (cc *proj4CoordinateConverter) Cleanup() {
	cc.Lock()
	defer cc.Unlock()
	for srid, p := range cc.projections {
		p.Close()
		delete(cc.projections, srid)
	}
}

// Returns the projection corresponding to the given EPSG code, storing it in the cache if not already present
func (cc *proj4CoordinateConverter) initProjection(srid int) (*proj.Proj, error) {
	if p, ok := cc.projections[srid]; ok {
		return p, nil
	}
	p, err := proj.InitPlus(Definition(srid))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot initialize projection EPSG:%d", srid)
	}
	glog.V(1).Infof("initialized projection EPSG:%d", srid)
	cc.projections[srid] = p
	return p, nil
}
