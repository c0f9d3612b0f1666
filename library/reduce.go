// Package library reduces a folder of candidate images to representative
// colours and keeps them in a norm-sorted index.
package library

import (
	"log/slog"
	"sync/atomic"

	"photomosaic/imageio"
	"photomosaic/parallel"
	"photomosaic/sample"
)

// DefaultWorkers is the number of reducer workers used when none is given.
const DefaultWorkers = 10

type Stats struct {
	Processed int
	Failed    int
}

// Candidates wraps locators into colour samples awaiting reduction.
func Candidates(locators []string) []sample.Color {
	samples := make([]sample.Color, len(locators))
	for i, loc := range locators {
		samples[i] = sample.Color{Locator: loc}
	}
	return samples
}

// Reduce decodes every sample's locator and sets its colour to the mean of
// the image's pixels. The samples are split into workers contiguous ranges,
// each reduced by its own goroutine, and Reduce returns only after all of them
// are done. Images that fail to decode are logged and marked invalid; they
// never stop the other workers.
func Reduce(dec imageio.Decoder, samples []sample.Color, workers int) Stats {
	if workers < 1 {
		workers = DefaultWorkers
	}

	var processedCount, errCount atomic.Int64
	parallel.ForEachRange(len(samples), workers, func(part int, r parallel.Range) {
		logger := slog.Default().With("worker", part)
		logger.Debug("reducing", "from", r.Start, "to", r.End)

		for i := r.Start; i < r.End; i++ {
			s := &samples[i]
			img, err := dec.Decode(s.Locator)
			if err != nil {
				errCount.Add(1)
				s.Invalidate()
				logger.Error("could not reduce image", "file", s.Locator, "error", err)
				continue
			}

			mean := sample.Mean(img, img.Rect)
			s.Set(mean.R, mean.G, mean.B)
			processedCount.Add(1)
		}
	})

	stats := Stats{
		Processed: int(processedCount.Load()),
		Failed:    int(errCount.Load()),
	}
	slog.Info("stats", "processed", stats.Processed, "errors", stats.Failed,
		"total", stats.Processed+stats.Failed)
	return stats
}
