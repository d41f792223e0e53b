// Package wkb decodes WKB and EWKB multipolygons (and polyhedral surfaces) into nested rings of 3D points.
package wkb

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
)

const (
	xdr = 0 // big endian
	ndr = 1 // little endian

	multiPolygonType      = 6
	polyhedralSurfaceType = 15

	ewkbZFlag    = 0x80000000
	ewkbMFlag    = 0x40000000
	ewkbSRIDFlag = 0x20000000

	// byte order flag plus type code preceding every polygon of the collection
	polygonPrefixLength = 5
)

// A ring of points. The closing point of the encoded ring is not stored.
type Ring []geometry.Vector3

// Rings of a polygon: the first is the outer boundary, the others are holes
type Polygon []Ring

type Multipolygon []Polygon

type layout struct {
	hasZ    bool
	hasM    bool
	hasSRID bool
}

func (l layout) pointSize() int {
	size := 16
	if l.hasZ {
		size += 8
	}
	if l.hasM {
		size += 8
	}
	return size
}

// Decodes the dimensions of a type code. Both the ISO thousands convention
// (1006, 1015, 3006, ...) and the EWKB high bit flags (0x80000006, ...) are accepted.
func decodeTypeCode(code uint32) (layout, error) {
	l := layout{
		hasZ:    code&ewkbZFlag != 0,
		hasM:    code&ewkbMFlag != 0,
		hasSRID: code&ewkbSRIDFlag != 0,
	}
	base := code &^ (ewkbZFlag | ewkbMFlag | ewkbSRIDFlag)

	switch base / 1000 {
	case 0:
	case 1:
		l.hasZ = true
	case 2:
		l.hasM = true
	case 3:
		l.hasZ, l.hasM = true, true
	default:
		return l, errors.Wrapf(tileerr.ErrMalformedGeometry, "unknown geometry type code %d", code)
	}

	switch base % 1000 {
	case multiPolygonType, polyhedralSurfaceType:
		return l, nil
	}
	return l, errors.Wrapf(tileerr.ErrMalformedGeometry, "geometry type code %d is neither a multipolygon nor a polyhedral surface", code)
}

type reader struct {
	buf    []byte
	offset int
	order  binary.ByteOrder
}

func (r *reader) need(n int) error {
	if n < 0 || r.offset+n > len(r.buf) {
		return errors.Wrapf(tileerr.ErrMalformedGeometry, "need %d bytes at offset %d, buffer holds %d", n, r.offset, len(r.buf))
	}
	return nil
}

func (r *reader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.offset]
	r.offset++
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := r.order.Uint32(r.buf[r.offset:])
	r.offset += 4
	return v, nil
}

func (r *reader) readFloat64() float64 {
	v := math.Float64frombits(r.order.Uint64(r.buf[r.offset:]))
	r.offset += 8
	return v
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}

func (r *reader) remaining() int {
	return len(r.buf) - r.offset
}

// Reads one point. Points without Z get z = 0, M values are dropped.
func (r *reader) readPoint(l layout) (geometry.Vector3, error) {
	if err := r.need(l.pointSize()); err != nil {
		return geometry.Vector3{}, err
	}
	p := geometry.Vector3{X: r.readFloat64(), Y: r.readFloat64()}
	if l.hasZ {
		p.Z = r.readFloat64()
	}
	if l.hasM {
		r.offset += 8
	}
	return p, nil
}

// Parses a WKB or EWKB multipolygon
func Parse(b []byte) (Multipolygon, error) {
	r := &reader{buf: b}

	order, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch order {
	case xdr:
		r.order = binary.BigEndian
	case ndr:
		r.order = binary.LittleEndian
	default:
		return nil, errors.Wrapf(tileerr.ErrMalformedGeometry, "invalid byte order flag %d", order)
	}

	code, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	l, err := decodeTypeCode(code)
	if err != nil {
		return nil, err
	}
	if l.hasSRID {
		if err := r.skip(4); err != nil {
			return nil, err
		}
	}

	polygonCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}

	multipolygon := make(Multipolygon, 0)
	for i := uint32(0); i < polygonCount; i++ {
		polygon, err := r.readPolygon(l)
		if err != nil {
			return nil, errors.Wrapf(err, "polygon %d", i)
		}
		multipolygon = append(multipolygon, polygon)
	}

	return multipolygon, nil
}

func (r *reader) readPolygon(l layout) (Polygon, error) {
	if err := r.skip(polygonPrefixLength); err != nil {
		return nil, err
	}
	ringCount, err := r.readUint32()
	if err != nil {
		return nil, err
	}

	polygon := make(Polygon, 0)
	for i := uint32(0); i < ringCount; i++ {
		pointCount, err := r.readUint32()
		if err != nil {
			return nil, err
		}
		if pointCount == 0 {
			polygon = append(polygon, Ring{})
			continue
		}

		// the buffer bounds the allocation, not the declared count
		capacity := int(pointCount - 1)
		if maxPoints := r.remaining() / l.pointSize(); capacity > maxPoints {
			capacity = maxPoints
		}
		ring := make(Ring, 0, capacity)
		for j := uint32(1); j < pointCount; j++ {
			p, err := r.readPoint(l)
			if err != nil {
				return nil, err
			}
			ring = append(ring, p)
		}
		// closing point duplicates the first one
		if err := r.skip(l.pointSize()); err != nil {
			return nil, err
		}
		polygon = append(polygon, ring)
	}

	return polygon, nil
}

// Parses a primary geometry followed by the associated data geometries sharing its topology.
// The first element of the result is the primary geometry.
func ParseAll(primary []byte, associated ...[]byte) ([]Multipolygon, error) {
	out := make([]Multipolygon, 0, len(associated)+1)
	mp, err := Parse(primary)
	if err != nil {
		return nil, err
	}
	out = append(out, mp)

	for i, b := range associated {
		mp, err := Parse(b)
		if err != nil {
			return nil, errors.Wrapf(err, "associated geometry %d", i)
		}
		out = append(out, mp)
	}
	return out, nil
}

// Number of points stored in the multipolygon
func (mp Multipolygon) PointCount() int {
	n := 0
	for _, polygon := range mp {
		for _, ring := range polygon {
			n += len(ring)
		}
	}
	return n
}
