package data

// Contains data of a Point Cloud Point, namely X,Y,Z coords,
// R,G,B color components and Intensity
type Point struct {
	X         float64
	Y         float64
	Z         float64
	R         uint8
	G         uint8
	B         uint8
	Intensity uint8
}

// Builds a new Point from the given coordinates, colors and intensity values
func NewPoint(X, Y, Z float64, R, G, B, Intensity uint8) *Point {
	return &Point{
		X:         X,
		Y:         Y,
		Z:         Z,
		R:         R,
		G:         G,
		B:         B,
		Intensity: Intensity,
	}
}
