package io

import (
	"path"
	"strconv"
	"sync"

	"github.com/ecopia-map/cesium_tilecontent/internal/data"
	"github.com/ecopia-map/cesium_tilecontent/internal/tiler"
)

const (
	defaultBatchSize     = 100
	defaultPointsPerTile = 50000
)

// Groups the features of a source in WorkUnits of at most BatchSize features, one b3dm tile each
type StandardProducer struct {
	basePath string
	source   FeatureSource
	options  *tiler.TilerOptions
}

func NewStandardProducer(basepath string, subfolder string, source FeatureSource, options *tiler.TilerOptions) *StandardProducer {
	return &StandardProducer{
		basePath: path.Join(basepath, subfolder),
		source:   source,
		options:  options,
	}
}

// Submits WorkUnits to the provided work channel and closes it when all work is submitted.
// A failing source is reported on errchan.
func (p *StandardProducer) Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(work)

	batchSize := defaultBatchSize
	if p.options.TilerB3dmOptions != nil && p.options.TilerB3dmOptions.BatchSize > 0 {
		batchSize = p.options.TilerB3dmOptions.BatchSize
	}

	index := 0
	features := make([]*data.Feature, 0, batchSize)
	submit := func() {
		work <- &WorkUnit{
			Features: features,
			Opts:     p.options,
			BasePath: p.basePath,
			Name:     strconv.Itoa(index),
		}
		index++
		features = make([]*data.Feature, 0, batchSize)
	}

	err := p.source.ForEach(func(feature *data.Feature) error {
		features = append(features, feature)
		if len(features) >= batchSize {
			submit()
		}
		return nil
	})
	if err != nil {
		errchan <- err
		return
	}
	if len(features) > 0 {
		submit()
	}
}

// Splits point clouds in WorkUnits of at most PointsPerTile points, one pnts tile each
type StandardPointProducer struct {
	basePath string
	sources  []PointSource
	options  *tiler.TilerOptions
}

func NewStandardPointProducer(basepath string, sources []PointSource, options *tiler.TilerOptions) *StandardPointProducer {
	return &StandardPointProducer{
		basePath: basepath,
		sources:  sources,
		options:  options,
	}
}

func (p *StandardPointProducer) Produce(work chan *WorkUnit, errchan chan error, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(work)

	pointsPerTile := defaultPointsPerTile
	if p.options.TilerPntsOptions != nil && p.options.TilerPntsOptions.PointsPerTile > 0 {
		pointsPerTile = p.options.TilerPntsOptions.PointsPerTile
	}

	for _, source := range p.sources {
		if err := p.produce(source, pointsPerTile, work); err != nil {
			errchan <- err
			return
		}
	}
}

func (p *StandardPointProducer) produce(source PointSource, pointsPerTile int, work chan *WorkUnit) error {
	basePath := path.Join(p.basePath, source.Name())
	index := 0
	points := make([]*data.Point, 0, pointsPerTile)
	submit := func() {
		work <- &WorkUnit{
			Points:   points,
			Opts:     p.options,
			BasePath: basePath,
			Name:     strconv.Itoa(index),
		}
		index++
		points = make([]*data.Point, 0, pointsPerTile)
	}

	err := source.ForEach(func(point *data.Point) error {
		points = append(points, point)
		if len(points) >= pointsPerTile {
			submit()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(points) > 0 {
		submit()
	}
	return nil
}
