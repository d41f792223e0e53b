package pkg

import (
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/io"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
	"github.com/ecopia-map/cesium_tilecontent/pkg/algorithm_manager"
	"github.com/ecopia-map/cesium_tilecontent/tools"
	"github.com/golang/glog"
)

// Converts xyz point clouds into pnts tiles
type TilerPnts struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTilerPnts(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &TilerPnts{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Starts the tiling process
func (tilerPnts *TilerPnts) RunTiler(opts *tiler.TilerOptions) error {
	defer tilerPnts.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	glog.Infoln("Preparing list of files to process...")

	// Prepare list of files to process
	xyzFiles, err := tilerPnts.fileFinder.GetXyzFilesToProcess(opts)
	if err != nil {
		return err
	}
	if len(xyzFiles) == 0 {
		return errors.Newf("no xyz file found in %s", opts.Input)
	}

	sources := make([]io.PointSource, 0, len(xyzFiles))
	for i, filePath := range xyzFiles {
		glog.Infof("xyz file path %d [%s]", i+1, filePath)
		sources = append(sources, io.NewXyzReader(filePath))
	}

	tools.LogOutput("> exporting " + strconv.Itoa(len(sources)) + " point clouds to " + opts.Output)
	producer := io.NewStandardPointProducer(opts.Output, sources, opts)
	if err := exportTiles(producer, tilerPnts.algorithmManager); err != nil {
		return err
	}
	for _, filePath := range xyzFiles {
		tools.LogOutput("> done processing", filepath.Base(filePath))
	}
	return nil
}
