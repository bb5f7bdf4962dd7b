package buildpipeline

import (
	"context"
	"errors"
	"fmt"

	"lumen/internal/driver"
	"lumen/internal/jsprint"
	"lumen/internal/lower"
)

// CompileRequest configures the shared lowering pipeline.
type CompileRequest struct {
	Files          []string // unit manifests
	BaseDir        string   // progress file names are shown relative to it
	Jobs           int
	MaxDiagnostics int
	Lower          lower.Options
	Print          jsprint.Options
	DiskCache      *driver.DiskCache
	Memory         *driver.UnitCache
	EnableTimings  bool
	// AllowDiagnosticsError keeps going to the link stage with the units
	// that did lower.
	AllowDiagnosticsError bool
	Progress              ProgressSink
}

// CompileResult captures lowering artefacts and stage timings.
type CompileResult struct {
	Lower   *driver.LowerResult
	Timings Timings
}

// ErrDiagnostics is returned when a unit reported errors.
var ErrDiagnostics = errors.New("diagnostics reported errors")

// Compile loads, orders and lowers every unit of the request.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if len(req.Files) == 0 {
		return result, fmt.Errorf("no unit manifests to build")
	}

	files := DisplayFiles(req.Files, req.BaseDir)
	emitQueued(req.Progress, files)
	observer := &phaseObserver{
		sink:    req.Progress,
		files:   files,
		baseDir: req.BaseDir,
		timings: &result.Timings,
	}

	res, err := driver.Lower(ctx, req.Files, &driver.LowerOptions{
		Jobs:           req.Jobs,
		MaxDiagnostics: req.MaxDiagnostics,
		Lower:          req.Lower,
		Print:          req.Print,
		DiskCache:      req.DiskCache,
		Memory:         req.Memory,
		EnableTimings:  req.EnableTimings,
		PhaseObserver:  observer.OnPhase,
		UnitObserver:   observer.OnUnit,
	})
	result.Lower = res
	if err != nil {
		emitStage(req.Progress, nil, StageLower, StatusError, err, 0)
		return result, err
	}
	lowered, _ := result.Timings.Lookup(StageLower)
	if res.HasErrors() && !req.AllowDiagnosticsError {
		emitStage(req.Progress, nil, StageLower, StatusError, ErrDiagnostics, lowered)
		return result, ErrDiagnostics
	}
	emitStage(req.Progress, nil, StageLower, StatusDone, nil, lowered)
	return result, nil
}
