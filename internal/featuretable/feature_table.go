// Package featuretable reads and writes the feature table of pnts and b3dm tiles.
package featuretable

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/batchtable"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const (
	PointsLength = "POINTS_LENGTH"
	BatchLength  = "BATCH_LENGTH"
	RTCCenter    = "RTC_CENTER"
	Position     = "POSITION"
	RGB          = "RGB"

	// the feature table JSON starts right after the tile header
	tileHeaderByteLength = 28
	rtcDecimals          = 6
)

type FeatureTable struct {
	Header *batchtable.Properties
	Body   []byte
}

type binaryReference struct {
	ByteOffset int `json:"byteOffset"`
}

func New() *FeatureTable {
	return &FeatureTable{Header: batchtable.NewProperties()}
}

// Feature table of a point cloud: positions as float32 triplets relative to rtcCenter,
// optional RGB colors (3 bytes per point)
func NewPointFeatureTable(positions []float32, colors []uint8, rtcCenter *geometry.Vector3) (*FeatureTable, error) {
	if len(positions)%3 != 0 {
		return nil, errors.Newf("%d position values do not form xyz triplets", len(positions))
	}
	n := len(positions) / 3
	if colors != nil && len(colors) != n*3 {
		return nil, errors.Newf("%d color values for %d points", len(colors), n)
	}

	ft := New()
	if err := ft.Header.Set(PointsLength, n); err != nil {
		return nil, err
	}
	if rtcCenter != nil {
		if err := ft.SetRTCCenter(*rtcCenter); err != nil {
			return nil, err
		}
	}
	if err := ft.Header.Set(Position, binaryReference{ByteOffset: 0}); err != nil {
		return nil, err
	}
	ft.Body = tools.ConvertFloat32ToByteArray(positions)
	if colors != nil {
		if err := ft.Header.Set(RGB, binaryReference{ByteOffset: len(ft.Body)}); err != nil {
			return nil, err
		}
		ft.Body = append(ft.Body, colors...)
	}
	return ft, nil
}

func NewBatchedModelFeatureTable(batchLength int, rtcCenter *geometry.Vector3) (*FeatureTable, error) {
	ft := New()
	if err := ft.SetBatchLength(batchLength); err != nil {
		return nil, err
	}
	if rtcCenter != nil {
		if err := ft.SetRTCCenter(*rtcCenter); err != nil {
			return nil, err
		}
	}
	return ft, nil
}

func (ft *FeatureTable) SetBatchLength(n int) error {
	return ft.Header.Set(BatchLength, n)
}

func (ft *FeatureTable) BatchLength() (int, bool) {
	return ft.intProperty(BatchLength)
}

func (ft *FeatureTable) PointsLength() (int, bool) {
	return ft.intProperty(PointsLength)
}

func (ft *FeatureTable) intProperty(name string) (int, bool) {
	var n int
	if _, ok := ft.Header.Get(name); !ok {
		return 0, false
	}
	if err := ft.Header.Decode(name, &n); err != nil {
		return 0, false
	}
	return n, true
}

// Sets the RTC_CENTER, rounded to the micrometer
func (ft *FeatureTable) SetRTCCenter(center geometry.Vector3) error {
	values := make([]float64, 0, 3)
	for _, v := range center.AsArray() {
		rounded, _ := decimal.NewFromFloat(v).Round(rtcDecimals).Float64()
		values = append(values, rounded)
	}
	return ft.Header.Set(RTCCenter, values)
}

func (ft *FeatureTable) RTCCenter() (geometry.Vector3, bool) {
	var values []float64
	if _, ok := ft.Header.Get(RTCCenter); !ok {
		return geometry.Vector3{}, false
	}
	if err := ft.Header.Decode(RTCCenter, &values); err != nil || len(values) != 3 {
		return geometry.Vector3{}, false
	}
	return geometry.NewVector3(values[0], values[1], values[2]), true
}

func (ft *FeatureTable) byteOffset(name string) (int, error) {
	var ref binaryReference
	if err := ft.Header.Decode(name, &ref); err != nil {
		return 0, err
	}
	if ref.ByteOffset < 0 || ref.ByteOffset > len(ft.Body) {
		return 0, errors.Newf("%s byteOffset %d is outside the %d bytes body", name, ref.ByteOffset, len(ft.Body))
	}
	return ref.ByteOffset, nil
}

// Point positions stored in the binary body
func (ft *FeatureTable) Positions() ([]float32, error) {
	n, ok := ft.PointsLength()
	if !ok {
		return nil, errors.Newf("feature table has no %s", PointsLength)
	}
	offset, err := ft.byteOffset(Position)
	if err != nil {
		return nil, err
	}
	if offset+n*12 > len(ft.Body) {
		return nil, errors.Newf("%d positions do not fit the %d bytes body", n, len(ft.Body))
	}
	return tools.ConvertByteArrayToFloat32(ft.Body[offset : offset+n*12]), nil
}

// Point colors stored in the binary body, nil when the table has no RGB semantic
func (ft *FeatureTable) Colors() ([]uint8, error) {
	if _, ok := ft.Header.Get(RGB); !ok {
		return nil, nil
	}
	n, ok := ft.PointsLength()
	if !ok {
		return nil, errors.Newf("feature table has no %s", PointsLength)
	}
	offset, err := ft.byteOffset(RGB)
	if err != nil {
		return nil, err
	}
	if offset+n*3 > len(ft.Body) {
		return nil, errors.Newf("%d colors do not fit the %d bytes body", n, len(ft.Body))
	}
	return append([]uint8(nil), ft.Body[offset:offset+n*3]...), nil
}

// Compact JSON header, space padded so that the binary body starts 8 byte aligned in the tile
func (ft *FeatureTable) HeaderBytes() ([]byte, error) {
	if ft.Header == nil || ft.Header.Len() == 0 {
		return []byte{}, nil
	}
	b, err := json.Marshal(ft.Header)
	if err != nil {
		return nil, errors.Wrap(err, "cannot encode feature table header")
	}
	for n := tools.PaddingLength(tileHeaderByteLength+len(b), 8); n > 0; n-- {
		b = append(b, ' ')
	}
	return b, nil
}

// Binary body zero padded to a multiple of 8 bytes
func (ft *FeatureTable) BodyBytes() []byte {
	return tools.PadBytes(ft.Body, 8, 0)
}

func (ft *FeatureTable) ToBytes() ([]byte, error) {
	header, err := ft.HeaderBytes()
	if err != nil {
		return nil, err
	}
	return append(header, ft.BodyBytes()...), nil
}

func FromBytes(jsonPart, binPart []byte) (*FeatureTable, error) {
	ft := New()
	if len(bytes.TrimSpace(jsonPart)) > 0 {
		if err := ft.Header.UnmarshalJSON(jsonPart); err != nil {
			return nil, errors.Wrap(err, "cannot decode feature table header")
		}
	}
	ft.Body = append([]byte{}, binPart...)
	return ft, nil
}
