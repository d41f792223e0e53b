package pkg

import (
	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/io"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/pkg/algorithm_manager"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/golang/glog"
)

// Exports the features of a sqlite table as b3dm tiles
type TilerB3dm struct {
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTilerB3dm(algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &TilerB3dm{
		algorithmManager: algorithmManager,
	}
}

// Starts the tiling process
func (tilerB3dm *TilerB3dm) RunTiler(opts *tiler.TilerOptions) error {
	if opts.TilerB3dmOptions == nil {
		return errors.New("missing b3dm options")
	}
	defer tilerB3dm.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	tools.LogOutput("> reading features from", opts.Input, "table", opts.TilerB3dmOptions.Table)
	source, err := io.NewSqliteFeatureSource(opts.Input, opts.TilerB3dmOptions)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			glog.Warningln("cannot close feature source:", err)
		}
	}()

	tools.LogOutput("> exporting tiles to", opts.Output)
	producer := io.NewStandardProducer(opts.Output, "", source, opts)
	if err := exportTiles(producer, tilerB3dm.algorithmManager); err != nil {
		return err
	}
	tools.LogOutput("> done exporting", opts.TilerB3dmOptions.Table)
	return nil
}
