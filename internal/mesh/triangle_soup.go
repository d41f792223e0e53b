package mesh

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/internal/wkb"
	"github.com/ecopia-map/cesium_tilecontent/tools"
)

// Triangles of a shape. Channel 0 holds positions, the following channels hold
// associated per-vertex data sharing the same triangulation.
type TriangleSoup struct {
	Triangles [][]Triangle
}

// Parses a WKB multipolygon plus its associated data multipolygons and triangulates every polygon
func FromWKBMultipolygon(primary []byte, associated ...[]byte) (*TriangleSoup, error) {
	multipolygons, err := wkb.ParseAll(primary, associated...)
	if err != nil {
		return nil, err
	}
	return FromMultipolygons(multipolygons[0], multipolygons[1:]...)
}

func FromMultipolygons(primary wkb.Multipolygon, associated ...wkb.Multipolygon) (*TriangleSoup, error) {
	for i, mp := range associated {
		if len(mp) != len(primary) {
			return nil, errors.Wrapf(tileerr.ErrTopologyMismatch,
				"associated multipolygon %d has %d polygons, expected %d", i, len(mp), len(primary))
		}
	}

	soup := &TriangleSoup{Triangles: make([][]Triangle, len(associated)+1)}
	for c := range soup.Triangles {
		soup.Triangles[c] = make([]Triangle, 0)
	}

	others := make([]wkb.Polygon, len(associated))
	for i, polygon := range primary {
		for j, mp := range associated {
			others[j] = mp[i]
		}
		channels, err := Triangulate(polygon, others)
		if err != nil {
			return nil, errors.Wrapf(err, "polygon %d", i)
		}
		for c, triangles := range channels {
			soup.Triangles[c] = append(soup.Triangles[c], triangles...)
		}
	}
	return soup, nil
}

func (s *TriangleSoup) TriangleCount() int {
	if len(s.Triangles) == 0 {
		return 0
	}
	return len(s.Triangles[0])
}

func flatten(triangles []Triangle) []float64 {
	coords := make([]float64, 0, len(triangles)*9)
	for _, t := range triangles {
		for _, v := range t {
			coords = append(coords, v.X, v.Y, v.Z)
		}
	}
	return coords
}

// Vertex positions as packed little endian float32 triplets
func (s *TriangleSoup) PositionBytes() []byte {
	if len(s.Triangles) == 0 {
		return []byte{}
	}
	return tools.ConvertTruncateFloat64ToFloat32ByteArray(flatten(s.Triangles[0]))
}

// Associated data of the given channel (1 based) as packed little endian float32 triplets
func (s *TriangleSoup) DataBytes(channel int) ([]byte, error) {
	if channel < 1 || channel >= len(s.Triangles) {
		return nil, errors.Newf("data channel %d out of range, soup has %d", channel, len(s.Triangles)-1)
	}
	return tools.ConvertTruncateFloat64ToFloat32ByteArray(flatten(s.Triangles[channel])), nil
}

// Flat shaded normals: one per triangle, repeated for its three vertices
func (s *TriangleSoup) Normals() []geometry.Vector3 {
	if len(s.Triangles) == 0 {
		return nil
	}
	normals := make([]geometry.Vector3, 0, len(s.Triangles[0])*3)
	for _, t := range s.Triangles[0] {
		n, ok := t[1].Sub(t[0]).Cross(t[2].Sub(t[0])).Normalize()
		if !ok {
			n = geometry.Up
		}
		normals = append(normals, n, n, n)
	}
	return normals
}

func (s *TriangleSoup) NormalBytes() []byte {
	normals := s.Normals()
	coords := make([]float64, 0, len(normals)*3)
	for _, n := range normals {
		coords = append(coords, n.X, n.Y, n.Z)
	}
	return tools.ConvertTruncateFloat64ToFloat32ByteArray(coords)
}

// Min and max corners over all position vertices. False when the soup is empty.
func (s *TriangleSoup) BoundingBox() (geometry.BoundingBox, bool) {
	if s.TriangleCount() == 0 {
		return geometry.BoundingBox{}, false
	}
	box := geometry.BoundingBoxOf(s.Triangles[0][0][0])
	for _, t := range s.Triangles[0] {
		for _, v := range t {
			box = box.Extend(v)
		}
	}
	return box, true
}

// Applies fn to every position vertex. The soup is left untouched when fn fails.
func (s *TriangleSoup) Transform(fn func(geometry.Vector3) (geometry.Vector3, error)) error {
	if len(s.Triangles) == 0 {
		return nil
	}
	transformed := make([]Triangle, len(s.Triangles[0]))
	for i, triangle := range s.Triangles[0] {
		for k, vertex := range triangle {
			v, err := fn(vertex)
			if err != nil {
				return err
			}
			transformed[i][k] = v
		}
	}
	s.Triangles[0] = transformed
	return nil
}
