package pkg

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/batchtable"
	"github.com/ecopia-map/cesium_tilecontent/internal/featuretable"
	"github.com/ecopia-map/cesium_tilecontent/internal/tilecontent"
	"github.com/ecopia-map/cesium_tilecontent/internal/tileerr"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/goccy/go-json"
	"github.com/tidwall/pretty"
)

// Prints the header and the JSON blocks of a pnts or b3dm file
type TilerInfo struct {
	out io.Writer
}

func NewTilerInfo(out io.Writer) tiler.ITiler {
	if out == nil {
		out = os.Stdout
	}
	return &TilerInfo{out: out}
}

func (tilerInfo *TilerInfo) RunTiler(opts *tiler.TilerOptions) error {
	b, err := tools.ReadFile(opts.Input)
	if err != nil {
		return err
	}
	content, err := tilecontent.Read(b)
	if err != nil {
		return errors.Wrapf(err, "cannot read tile %s", opts.Input)
	}
	if content == nil {
		return errors.Wrapf(tileerr.ErrInvalidContainer, "%s is neither a pnts nor a b3dm tile", opts.Input)
	}
	header, err := tilecontent.ReadHeader(b)
	if err != nil {
		return err
	}

	indent := opts.TilerInfoOptions != nil && opts.TilerInfoOptions.Pretty
	w := &infoWriter{out: tilerInfo.out, indent: indent}

	w.printf("Tile header\n")
	w.printf("  magic: %s\n", header.Magic[:])
	w.printf("  version: %d\n", header.Version)
	w.printf("  tile byte length: %d\n", header.TileByteLength)
	w.printf("  feature table json byte length: %d\n", header.FeatureTableJSONByteLength)
	w.printf("  feature table binary byte length: %d\n", header.FeatureTableBinaryByteLength)
	w.printf("  batch table json byte length: %d\n", header.BatchTableJSONByteLength)
	w.printf("  batch table binary byte length: %d\n", header.BatchTableBinaryByteLength)

	switch tile := content.(type) {
	case *tilecontent.Pnts:
		w.featureTable(tile.FeatureTable)
		if n, ok := tile.FeatureTable.PointsLength(); ok {
			w.printf("  points: %d\n", n)
		}
		w.batchTable(tile.BatchTable)
	case *tilecontent.B3dm:
		w.featureTable(tile.FeatureTable)
		w.batchTable(tile.BatchTable)
		w.printf("glTF\n")
		doc, err := json.Marshal(tile.GlTF.Header)
		if err != nil {
			return errors.Wrap(err, "cannot encode glTF JSON")
		}
		w.json(doc)
		w.printf("  body byte length: %d\n", len(tile.GlTF.Body))
	}
	return w.err
}

type infoWriter struct {
	out    io.Writer
	indent bool
	err    error
}

func (w *infoWriter) printf(format string, args ...interface{}) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, args...)
}

func (w *infoWriter) json(b []byte) {
	if w.indent {
		w.printf("%s", pretty.Pretty(b))
		return
	}
	w.printf("%s\n", pretty.Ugly(b))
}

func (w *infoWriter) featureTable(ft *featuretable.FeatureTable) {
	w.printf("Feature table\n")
	b, err := ft.HeaderBytes()
	if err != nil {
		w.err = err
		return
	}
	if len(b) == 0 {
		b = []byte("{}")
	}
	w.json(b)
	if rtc, ok := ft.RTCCenter(); ok {
		w.printf("  rtc center: %v %v %v\n", rtc.X, rtc.Y, rtc.Z)
	}
}

func (w *infoWriter) batchTable(bt *batchtable.BatchTable) {
	if bt == nil {
		w.printf("No batch table\n")
		return
	}
	w.printf("Batch table\n")
	b, err := bt.HeaderBytes()
	if err != nil {
		w.err = err
		return
	}
	if len(b) == 0 {
		b = []byte("{}")
	}
	w.json(b)
	if n, ok := bt.Length(); ok {
		w.printf("  features: %d\n", n)
	}
}
