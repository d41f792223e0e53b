package wkb

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/twpayne/go-geom"
)

// Converts the multipolygon into a closed-ring XYZ go-geom multipolygon
func (mp Multipolygon) ToGeom() (*geom.MultiPolygon, error) {
	coords := make([][][]geom.Coord, len(mp))
	for i, polygon := range mp {
		coords[i] = make([][]geom.Coord, len(polygon))
		for j, ring := range polygon {
			rc := make([]geom.Coord, 0, len(ring)+1)
			for _, p := range ring {
				rc = append(rc, geom.Coord{p.X, p.Y, p.Z})
			}
			if len(ring) > 0 {
				rc = append(rc, geom.Coord{ring[0].X, ring[0].Y, ring[0].Z})
			}
			coords[i][j] = rc
		}
	}

	g, err := geom.NewMultiPolygon(geom.XYZ).SetCoords(coords)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build multipolygon")
	}
	return g, nil
}

// Builds a multipolygon from a go-geom one, dropping the closing point of every ring
func FromGeom(g *geom.MultiPolygon) Multipolygon {
	zIndex := g.Layout().ZIndex()
	mp := make(Multipolygon, 0, g.NumPolygons())
	for _, polygonCoords := range g.Coords() {
		polygon := make(Polygon, 0, len(polygonCoords))
		for _, ringCoords := range polygonCoords {
			n := len(ringCoords)
			if n > 1 && coordEqual(ringCoords[0], ringCoords[n-1]) {
				n--
			}
			ring := make(Ring, 0, n)
			for _, c := range ringCoords[:n] {
				p := geometry.Vector3{X: c[0], Y: c[1]}
				if zIndex >= 0 {
					p.Z = c[zIndex]
				}
				ring = append(ring, p)
			}
			polygon = append(polygon, ring)
		}
		mp = append(mp, polygon)
	}
	return mp
}

func coordEqual(a, b geom.Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
