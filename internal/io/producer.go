package io

import (
	"sync"

	"github.com/ecopia-map/cesium_tilecontent/internal/data"
)

type Producer interface {
	Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup)
}

// Iterates over the features to export, stopping at the first error returned by fn
type FeatureSource interface {
	ForEach(fn func(feature *data.Feature) error) error
	Close() error
}

// Iterates over the points of a named point cloud, stopping at the first error returned by fn
type PointSource interface {
	Name() string
	ForEach(fn func(point *data.Point) error) error
}
