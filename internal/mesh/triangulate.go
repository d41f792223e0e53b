// Package mesh turns WKB polygons into triangle soups ready to be packed into glTF buffers.
package mesh

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/earcut"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/internal/wkb"
)

type Triangle [3]geometry.Vector3

// Sums the signed projected area of the outer ring edges on the yz, zx and xy planes.
// The triangulation does not use it: triangles keep the winding produced by earcut.
func Orientation(polygon wkb.Polygon) geometry.Vector3 {
	var o geometry.Vector3
	if len(polygon) == 0 {
		return o
	}
	ring := polygon[0]
	for i := range ring {
		p := ring[i]
		q := ring[(i+1)%len(ring)]
		o.X += (p.Y - q.Y) * (p.Z + q.Z)
		o.Y += (p.Z - q.Z) * (p.X + q.X)
		o.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return o
}

func checkTopology(polygon wkb.Polygon, associated []wkb.Polygon) error {
	for i, other := range associated {
		if len(other) != len(polygon) {
			return errors.Wrapf(tileerr.ErrTopologyMismatch,
				"associated polygon %d has %d rings, expected %d", i, len(other), len(polygon))
		}
		for j := range polygon {
			if len(other[j]) != len(polygon[j]) {
				return errors.Wrapf(tileerr.ErrTopologyMismatch,
					"ring %d of associated polygon %d has %d points, expected %d", j, i, len(other[j]), len(polygon[j]))
			}
		}
	}
	return nil
}

// Triangulates a polygon and, with the same vertex indices, every associated polygon.
// The first channel of the result holds the triangles of polygon, channel i+1 those of associated[i].
func Triangulate(polygon wkb.Polygon, associated []wkb.Polygon) ([][]Triangle, error) {
	if err := checkTopology(polygon, associated); err != nil {
		return nil, err
	}

	channels := make([][]Triangle, len(associated)+1)
	if len(polygon) == 0 {
		return channels, nil
	}

	coords := make([]float64, 0)
	holes := make([]int, 0, len(polygon)-1)
	offset := 0
	for i, ring := range polygon {
		if i > 0 {
			holes = append(holes, offset)
		}
		for _, p := range ring {
			coords = append(coords, p.X, p.Y, p.Z)
		}
		offset += len(ring)
	}

	indices := earcut.Earcut(coords, holes, 3)

	sources := make([]wkb.Polygon, 0, len(channels))
	sources = append(sources, polygon)
	sources = append(sources, associated...)

	for c := range channels {
		channels[c] = make([]Triangle, 0, len(indices)/3)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		var refs [3]vertexRef
		for k := 0; k < 3; k++ {
			refs[k] = resolve(indices[i+k], holes)
		}
		for c, source := range sources {
			var t Triangle
			for k, ref := range refs {
				t[k] = source[ref.ring][ref.point]
			}
			channels[c] = append(channels[c], t)
		}
	}

	return channels, nil
}

type vertexRef struct {
	ring  int
	point int
}

// Maps a flat vertex index back to its ring and position in the ring
func resolve(index int, holes []int) vertexRef {
	for h := len(holes) - 1; h >= 0; h-- {
		if index >= holes[h] {
			return vertexRef{ring: h + 1, point: index - holes[h]}
		}
	}
	return vertexRef{ring: 0, point: index}
}
