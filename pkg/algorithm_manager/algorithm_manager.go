package algorithm_manager

import (
	"github.com/ecopia-map/cesium_tilecontent/internal/converters"
)

type AlgorithmManager interface {
	GetElevationCorrectionAlgorithm() converters.ElevationCorrector
	GetCoordinateConverterAlgorithm() converters.CoordinateConverter
}
