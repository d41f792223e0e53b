package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
)

const XyzFileExtension = ".xyz"

type FileFinder interface {
	GetXyzFilesToProcess(opts *tiler.TilerOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetXyzFilesToProcess(opts *tiler.TilerOptions) ([]string, error) {
	// If folder processing is not enabled then the xyz file is given by -input flag, otherwise look for xyz files
	// in -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getXyzFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getXyzFilesFromInputFolder(opts *tiler.TilerOptions) ([]string, error) {
	var xyzFiles = make([]string, 0)

	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read input folder %s", opts.Input)
	}
	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !opts.Recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			}
			if !info.IsDir() && strings.ToLower(filepath.Ext(info.Name())) == XyzFileExtension {
				xyzFiles = append(xyzFiles, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list xyz files of %s", opts.Input)
	}

	return xyzFiles, nil
}
