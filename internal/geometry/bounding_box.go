package geometry

import "math"

// Axis aligned bounding box described by its min and max corners
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// Builds a bounding box from its component ranges
func NewBoundingBox(Xmin, Xmax, Ymin, Ymax, Zmin, Zmax float64) BoundingBox {
	return BoundingBox{
		Min: Vector3{X: Xmin, Y: Ymin, Z: Zmin},
		Max: Vector3{X: Xmax, Y: Ymax, Z: Zmax},
	}
}

// Returns a box containing only v
func BoundingBoxOf(v Vector3) BoundingBox {
	return BoundingBox{Min: v, Max: v}
}

// Grows the box so that it contains v
func (b BoundingBox) Extend(v Vector3) BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math.Min(b.Min.X, v.X), Y: math.Min(b.Min.Y, v.Y), Z: math.Min(b.Min.Z, v.Z)},
		Max: Vector3{X: math.Max(b.Max.X, v.X), Y: math.Max(b.Max.Y, v.Y), Z: math.Max(b.Max.Z, v.Z)},
	}
}

func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return b.Extend(o.Min).Extend(o.Max)
}

func (b BoundingBox) Center() Vector3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Returns the box as [[minX, minY, minZ], [maxX, maxY, maxZ]]
func (b BoundingBox) AsArray() [2][3]float64 {
	return [2][3]float64{b.Min.AsArray(), b.Max.AsArray()}
}
