// Package buildpipeline orchestrates a build: load, order, lower and link.
package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	runtimeembed "lumen/runtime"
)

// BuildRequest configures output generation for a compilation.
type BuildRequest struct {
	CompileRequest
	// OutputPath is the JS file to write; empty keeps the output in memory.
	OutputPath string
	// Prelude prepends the runtime prelude.
	Prelude bool
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	Output     []byte
	OutputPath string
	Timings    Timings
	Compile    CompileResult
}

// Build lowers every unit and links the result into one JS program.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}

	compileRes, err := Compile(ctx, &req.CompileRequest)
	result.Compile = compileRes
	result.Timings = compileRes.Timings
	if err != nil {
		return result, err
	}

	linkStart := time.Now()
	emitStage(req.Progress, nil, StageLink, StatusWorking, nil, 0)

	prelude := ""
	if req.Prelude {
		prelude, err = runtimeembed.Prelude(req.Lower.Runtime)
		if err != nil {
			err = fmt.Errorf("failed to load runtime prelude: %w", err)
			emitStage(req.Progress, nil, StageLink, StatusError, err, 0)
			return result, err
		}
	}
	result.Output = compileRes.Lower.Link(prelude)

	if req.OutputPath != "" {
		if err := writeOutput(req.OutputPath, result.Output); err != nil {
			emitStage(req.Progress, nil, StageLink, StatusError, err, 0)
			return result, err
		}
		result.OutputPath = req.OutputPath
	}

	linked := time.Since(linkStart)
	result.Timings.Set(StageLink, linked)
	emitStage(req.Progress, nil, StageLink, StatusDone, nil, linked)
	return result, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	return nil
}
