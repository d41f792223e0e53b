package converters

// Adjusts the elevation of a WGS84 coordinate
type ElevationCorrector interface {
	CorrectElevation(lon, lat, z float64) float64
}
