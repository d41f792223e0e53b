package std_algorithm_manager

import (
	"github.com/ecopia-map/cesium_tilecontent/internal/converters"
	"github.com/ecopia-map/cesium_tilecontent/internal/converters/elevation/offset_elevation_corrector"
	"github.com/ecopia-map/cesium_tilecontent/internal/converters/proj4_coordinate_converter"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewAlgorithmManager(opts *tiler.TilerOptions) algorithm_manager.AlgorithmManager {
	return &StandardAlgorithmManager{
		coordinateConverter: proj4_coordinate_converter.NewProj4CoordinateConverter(),
		elevationCorrector:  offset_elevation_corrector.NewOffsetElevationCorrector(opts.ZOffset),
	}
}

func (am *StandardAlgorithmManager) GetElevationCorrectionAlgorithm() converters.ElevationCorrector {
	return am.elevationCorrector
}

// The converter is shared by all consumers
func (am *StandardAlgorithmManager) GetCoordinateConverterAlgorithm() converters.CoordinateConverter {
	return am.coordinateConverter
}
