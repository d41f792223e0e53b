package tilecontent

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/tools"
)

// Common behaviour of pnts and b3dm tiles
type TileContent interface {
	// Header as it would be written by Serialize
	Header() (Header, error)
	Serialize() ([]byte, error)
	Type() ContentType
}

var (
	_ TileContent = (*Pnts)(nil)
	_ TileContent = (*B3dm)(nil)
)

// Decodes a tile according to its magic. Returns nil without error when the buffer is not
// a pnts or b3dm tile.
func Read(b []byte) (TileContent, error) {
	if len(b) < len(MagicPnts) {
		return nil, nil
	}
	switch {
	case bytes.Equal(b[:4], MagicPnts[:]):
		pnts, err := PntsFromBytes(b)
		if err != nil {
			return nil, err
		}
		return pnts, nil
	case bytes.Equal(b[:4], MagicB3dm[:]):
		b3dm, err := B3dmFromBytes(b)
		if err != nil {
			return nil, err
		}
		return b3dm, nil
	}
	return nil, nil
}

func ReadFile(path string) (TileContent, error) {
	b, err := tools.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tile, err := Read(b)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read tile %s", path)
	}
	if tile == nil {
		return nil, errors.Wrapf(tileerr.ErrInvalidContainer, "%s is neither a pnts nor a b3dm tile", path)
	}
	return tile, nil
}
