package io

import (
	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
)

// Contains the minimal data needed to produce a single tile: either the features of a
// b3dm or the points of a pnts
type WorkUnit struct {
	Features []*data.Feature
	Points   []*data.Point
	Opts     *tiler.TilerOptions
	BasePath string
	// File name of the tile, without extension
	Name string
}
