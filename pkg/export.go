package pkg

import (
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ecopia-map/cesium_tilecontent/internal/io"
	"github.com/ecopia-map/cesium_tilecontent/pkg/algorithm_manager"
	"github.com/golang/glog"
)

// Runs the producer against a pool of consumers, one per CPU, and waits for all tiles to be written
func exportTiles(producer io.Producer, algorithmManager algorithm_manager.AlgorithmManager) error {
	// a consumer goroutine per CPU
	numConsumers := runtime.NumCPU()

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// every consumer and the producer report at most one error
	errorChannel := make(chan error, numConsumers+1)

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	go producer.Produce(workChannel, errorChannel, &waitGroup)

	// add consumers to waitgroup and launch them
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(
			algorithmManager.GetCoordinateConverterAlgorithm(),
			algorithmManager.GetElevationCorrectionAlgorithm(),
		)
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	// wait for producers and consumers to finish
	waitGroup.Wait()

	// close error chan
	close(errorChannel)

	var combined error
	for err := range errorChannel {
		glog.Errorln(err)
		combined = errors.CombineErrors(combined, err)
	}
	if combined != nil {
		return errors.Wrap(combined, "errors raised during execution")
	}
	return nil
}
