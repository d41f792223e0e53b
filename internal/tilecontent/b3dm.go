package tilecontent

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/batchtable"
	"github.com/ecopia-map/cesium_tilecontent/internal/featuretable"
	"github.com/ecopia-map/cesium_tilecontent/internal/geometry"
	"github.com/ecopia-map/cesium_tilecontent/internal/gltf"
	"github.com/golang/glog"
)

// Batched 3D model tile: a feature table, an optional batch table and an embedded GLB
type B3dm struct {
	FeatureTable *featuretable.FeatureTable
	BatchTable   *batchtable.BatchTable
	GlTF         *gltf.GlTF
}

// Wraps a glTF into a b3dm tile. BATCH_LENGTH follows the length of the batch table,
// 0 when there is none.
func NewB3dm(g *gltf.GlTF, bt *batchtable.BatchTable) (*B3dm, error) {
	if g == nil {
		return nil, errors.New("b3dm tile needs a glTF")
	}
	batchLength := 0
	if bt != nil {
		if n, ok := bt.Length(); ok {
			batchLength = n
		}
	}
	ft, err := featuretable.NewBatchedModelFeatureTable(batchLength, nil)
	if err != nil {
		return nil, err
	}
	return &B3dm{FeatureTable: ft, BatchTable: bt, GlTF: g}, nil
}

func (t *B3dm) SetRTCCenter(center geometry.Vector3) error {
	return t.FeatureTable.SetRTCCenter(center)
}

func (t *B3dm) Type() ContentType {
	return BatchedModel
}

func (t *B3dm) blocks() (blocks, error) {
	var b blocks
	var err error
	if b.featureTableJSON, err = t.FeatureTable.HeaderBytes(); err != nil {
		return b, err
	}
	b.featureTableBinary = t.FeatureTable.BodyBytes()
	if t.BatchTable != nil {
		if b.batchTableJSON, err = t.BatchTable.HeaderBytes(); err != nil {
			return b, err
		}
		if b.batchTableBinary, err = t.BatchTable.BodyBytes(); err != nil {
			return b, err
		}
	}
	if t.GlTF == nil {
		return b, errors.New("b3dm tile has no glTF")
	}
	if b.glb, err = t.GlTF.ToBytes(); err != nil {
		return b, err
	}
	return b, nil
}

func (t *B3dm) Header() (Header, error) {
	b, err := t.blocks()
	if err != nil {
		return Header{}, err
	}
	return measure(MagicB3dm, b), nil
}

func (t *B3dm) Serialize() ([]byte, error) {
	b, err := t.blocks()
	if err != nil {
		return nil, err
	}
	h := measure(MagicB3dm, b)
	if glog.V(2) {
		glog.Infof("b3dm: %d bytes, feature table %d+%d, batch table %d+%d, glb %d",
			h.TileByteLength, h.FeatureTableJSONByteLength, h.FeatureTableBinaryByteLength,
			h.BatchTableJSONByteLength, h.BatchTableBinaryByteLength, len(b.glb))
	}
	return serialize(h, b), nil
}

// Parses a batched model tile. The batch table is nil when both its lengths are 0,
// the glTF is read from every byte following the tables.
func B3dmFromBytes(b []byte) (*B3dm, error) {
	h, bl, err := split(MagicB3dm, b)
	if err != nil {
		return nil, err
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
	g, err := gltf.FromBytes(bl.glb)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read b3dm glTF")
	}
	return &B3dm{FeatureTable: ft, BatchTable: bt, GlTF: g}, nil
}
