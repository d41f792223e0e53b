package tilecontent

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/batchtable"
	"github.com/ecopia-map/cesium_tilecontent/internal/featuretable"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/golang/glog"
)

// Point cloud tile
type Pnts struct {
	FeatureTable *featuretable.FeatureTable
	// Optional
	BatchTable *batchtable.BatchTable
}

func NewPnts(ft *featuretable.FeatureTable, bt *batchtable.BatchTable) *Pnts {
	if ft == nil {
		ft = featuretable.New()
	}
	return &Pnts{FeatureTable: ft, BatchTable: bt}
}

// Builds a point cloud tile from float32 xyz positions relative to rtcCenter and optional rgb colors
func NewPntsFromPoints(positions []float32, colors []uint8, rtcCenter *geometry.Vector3) (*Pnts, error) {
	ft, err := featuretable.NewPointFeatureTable(positions, colors, rtcCenter)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build point cloud feature table")
	}
	return NewPnts(ft, nil), nil
}

func (p *Pnts) Type() ContentType {
	return PointCloud
}

func (p *Pnts) blocks() (blocks, error) {
	var b blocks
	var err error
	if b.featureTableJSON, err = p.FeatureTable.HeaderBytes(); err != nil {
		return b, err
	}
	b.featureTableBinary = p.FeatureTable.BodyBytes()
	if p.BatchTable != nil {
		if b.batchTableJSON, err = p.BatchTable.HeaderBytes(); err != nil {
			return b, err
		}
		if b.batchTableBinary, err = p.BatchTable.BodyBytes(); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (p *Pnts) Header() (Header, error) {
	b, err := p.blocks()
	if err != nil {
		return Header{}, err
	}
	return measure(MagicPnts, b), nil
}

func (p *Pnts) Serialize() ([]byte, error) {
	b, err := p.blocks()
	if err != nil {
		return nil, err
	}
	h := measure(MagicPnts, b)
	if glog.V(2) {
		glog.Infof("pnts: %d bytes, feature table %d+%d, batch table %d+%d",
			h.TileByteLength, h.FeatureTableJSONByteLength, h.FeatureTableBinaryByteLength,
			h.BatchTableJSONByteLength, h.BatchTableBinaryByteLength)
	}
	return serialize(h, b), nil
}

// Parses a point cloud tile. The batch table is nil when the tile carries none.
func PntsFromBytes(b []byte) (*Pnts, error) {
	h, bl, err := split(MagicPnts, b)
	if err != nil {
		return nil, err
	}
	if len(bl.glb) > 0 && glog.V(1) {
		glog.Infof("pnts: ignoring %d trailing bytes", len(bl.glb))
	}

	ft, err := featuretable.FromBytes(bl.featureTableJSON, bl.featureTableBinary)
	if err != nil {
		return nil, err
	}
	var bt *batchtable.BatchTable
	if h.BatchTableJSONByteLength > 0 || h.BatchTableBinaryByteLength > 0 {
		if bt, err = batchtable.FromBytes(bl.batchTableJSON, bl.batchTableBinary); err != nil {
			return nil, err
		}
	}
	return NewPnts(ft, bt), nil
}
