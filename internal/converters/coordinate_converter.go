package converters

import (
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
)

const (
	WGS84Srid          = 4326
	WGS84CartesianSrid = 4978
)

type CoordinateConverter interface {
	ConvertCoordinateSrid(sourceSrid int, targetSrid int, coord geometry.Vector3) (geometry.Vector3, error)
	// Converts to earth centered earth fixed coordinates (EPSG:4978)
	ConvertToWGS84Cartesian(coord geometry.Vector3, sourceSrid int) (geometry.Vector3, error)
	Cleanup()
}
