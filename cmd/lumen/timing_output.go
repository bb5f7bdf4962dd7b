package main

import (
	"fmt"
	"io"
	"time"

	"lumen/internal/buildpipeline"
)

func printStageTimings(out io.Writer, timings buildpipeline.Timings) error {
	if out == nil {
		return nil
	}
	for _, stage := range buildpipeline.Stages {
		d, ok := timings.Lookup(stage)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(out, "%-8s %8.1f ms\n", stage.Past(), toMillis(d)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%-8s %8.1f ms\n", "total", toMillis(timings.Total()))
	return err
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// unitSummary describes the linked units; the cache share is only known
// when progress events were recorded.
func unitSummary(events []buildpipeline.Event, linked int) string {
	cached := 0
	for _, ev := range events {
		if ev.File != "" && ev.Status == buildpipeline.StatusCached {
			cached++
		}
	}
	if cached == 0 {
		return fmt.Sprintf("%d units", linked)
	}
	return fmt.Sprintf("%d units, %d from cache", linked, cached)
}
