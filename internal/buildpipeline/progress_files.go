package buildpipeline

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lumen/internal/driver"
)

// DisplayFiles turns unit paths into the names shown by progress output:
// relative to baseDir when possible, slash-separated.
func DisplayFiles(files []string, baseDir string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		out = append(out, displayName(file, baseDir))
	}
	return out
}

func displayName(file, baseDir string) string {
	if file == "" {
		return ""
	}
	path := filepath.Clean(file)
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// phaseObserver maps driver phase and unit events onto progress events.
type phaseObserver struct {
	sink    ProgressSink
	files   []string
	baseDir string
	timings *Timings

	mu sync.Mutex // unit events arrive from worker goroutines
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage := Stage(ev.Name)
	if ev.Status == driver.PhaseEnd {
		p.timings.Set(stage, ev.Elapsed)
		return
	}
	// per-file lower events come from OnUnit
	if stage == StageLower {
		emitStage(p.sink, nil, stage, StatusWorking, nil, 0)
		return
	}
	emitStage(p.sink, p.files, stage, StatusWorking, nil, 0)
}

func (p *phaseObserver) OnUnit(ev driver.UnitEvent) {
	if p.sink == nil {
		return
	}
	status := StatusWorking
	switch ev.Status {
	case driver.UnitLowered:
		status = StatusDone
	case driver.UnitCached:
		status = StatusCached
	case driver.UnitFailed, driver.UnitSkipped:
		status = StatusError
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink.OnEvent(Event{
		File:      displayName(ev.Path, p.baseDir),
		Namespace: ev.Namespace,
		Stage:     StageLower,
		Status:    status,
		Err:       ev.Err,
		Elapsed:   ev.Elapsed,
	})
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
