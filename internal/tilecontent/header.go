// Package tilecontent reads and writes the binary content of 3D Tiles tiles: pnts point clouds
// and b3dm batched models.
package tilecontent

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/tools"
)

const (
	HeaderByteLength = 28
	Version          = 1
)

var (
	MagicPnts = [4]byte{'p', 'n', 't', 's'}
	MagicB3dm = [4]byte{'b', '3', 'd', 'm'}
)

type ContentType int

const (
	Unknown ContentType = iota
	PointCloud
	BatchedModel
)

func (t ContentType) String() string {
	switch t {
	case PointCloud:
		return "pnts"
	case BatchedModel:
		return "b3dm"
	}
	return "unknown"
}

// Fixed 28 bytes header shared by pnts and b3dm tiles
type Header struct {
	Magic                        [4]byte
	Version                      uint32
	TileByteLength               uint32
	FeatureTableJSONByteLength   uint32
	FeatureTableBinaryByteLength uint32
	BatchTableJSONByteLength     uint32
	BatchTableBinaryByteLength   uint32
}

func (h Header) ToBytes() []byte {
	out := make([]byte, 0, HeaderByteLength)
	out = append(out, h.Magic[:]...)
	for _, v := range []uint32{
		h.Version,
		h.TileByteLength,
		h.FeatureTableJSONByteLength,
		h.FeatureTableBinaryByteLength,
		h.BatchTableJSONByteLength,
		h.BatchTableBinaryByteLength,
	} {
		out = append(out, tools.ConvertIntToByteArray(int(v))...)
	}
	return out
}

// Bytes of the tile following the header: both tables and, for b3dm, the glTF
func (h Header) bodyByteLength() uint64 {
	return uint64(h.FeatureTableJSONByteLength) + uint64(h.FeatureTableBinaryByteLength) +
		uint64(h.BatchTableJSONByteLength) + uint64(h.BatchTableBinaryByteLength)
}

// Decodes a header from exactly 28 bytes
func headerFromBytes(b []byte) (Header, error) {
	var h Header
	if len(b) != HeaderByteLength {
		return h, errors.Wrapf(tileerr.ErrInvalidHeaderLength, "tile header of %d bytes, expected %d", len(b), HeaderByteLength)
	}
	copy(h.Magic[:], b[0:4])
	h.Version = binary.LittleEndian.Uint32(b[4:8])
	h.TileByteLength = binary.LittleEndian.Uint32(b[8:12])
	h.FeatureTableJSONByteLength = binary.LittleEndian.Uint32(b[12:16])
	h.FeatureTableBinaryByteLength = binary.LittleEndian.Uint32(b[16:20])
	h.BatchTableJSONByteLength = binary.LittleEndian.Uint32(b[20:24])
	h.BatchTableBinaryByteLength = binary.LittleEndian.Uint32(b[24:28])
	return h, nil
}

// Reads the header at the start of a tile
func ReadHeader(b []byte) (Header, error) {
	n := len(b)
	if n > HeaderByteLength {
		n = HeaderByteLength
	}
	return headerFromBytes(b[:n])
}

// Tile sub-blocks in wire order
type blocks struct {
	featureTableJSON   []byte
	featureTableBinary []byte
	batchTableJSON     []byte
	batchTableBinary   []byte
	glb                []byte
}

// Computes the header describing the given sub-blocks
func measure(magic [4]byte, b blocks) Header {
	h := Header{
		Magic:                        magic,
		Version:                      Version,
		FeatureTableJSONByteLength:   uint32(len(b.featureTableJSON)),
		FeatureTableBinaryByteLength: uint32(len(b.featureTableBinary)),
		BatchTableJSONByteLength:     uint32(len(b.batchTableJSON)),
		BatchTableBinaryByteLength:   uint32(len(b.batchTableBinary)),
	}
	h.TileByteLength = uint32(HeaderByteLength + h.bodyByteLength() + uint64(len(b.glb)))
	return h
}

func serialize(h Header, b blocks) []byte {
	out := make([]byte, 0, h.TileByteLength)
	out = append(out, h.ToBytes()...)
	out = append(out, b.featureTableJSON...)
	out = append(out, b.featureTableBinary...)
	out = append(out, b.batchTableJSON...)
	out = append(out, b.batchTableBinary...)
	out = append(out, b.glb...)
	return out
}

// Validates the header of a tile against the buffer holding it and slices its sub-blocks.
// The glb block receives whatever follows the tables up to the declared tile length.
func split(magic [4]byte, b []byte) (Header, blocks, error) {
	h, err := ReadHeader(b)
	if err != nil {
		return h, blocks{}, err
	}
	if h.Magic != magic {
		return h, blocks{}, errors.Wrapf(tileerr.ErrInvalidContainer, "tile magic %q, expected %q", h.Magic[:], magic[:])
	}
	if int(h.TileByteLength) != len(b) {
		return h, blocks{}, errors.Wrapf(tileerr.ErrInvalidTotalLength,
			"header declares %d bytes, buffer holds %d", h.TileByteLength, len(b))
	}
	if HeaderByteLength+h.bodyByteLength() > uint64(h.TileByteLength) {
		return h, blocks{}, errors.Wrapf(tileerr.ErrInvalidTotalLength,
			"tables need %d bytes, tile holds %d", HeaderByteLength+h.bodyByteLength(), h.TileByteLength)
	}

	offset := HeaderByteLength
	next := func(n uint32) []byte {
		s := b[offset : offset+int(n)]
		offset += int(n)
		return s
	}
	var bl blocks
	bl.featureTableJSON = next(h.FeatureTableJSONByteLength)
	bl.featureTableBinary = next(h.FeatureTableBinaryByteLength)
	bl.batchTableJSON = next(h.BatchTableJSONByteLength)
	bl.batchTableBinary = next(h.BatchTableBinaryByteLength)
	bl.glb = b[offset:h.TileByteLength]
	return h, bl, nil
}
