package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/buildpipeline"
	"lumen/internal/diag"
	"lumen/internal/diagfmt"
	"lumen/internal/driver"
	"lumen/internal/jsprint"
	"lumen/internal/lower"
)

// compileRequest assembles the lowering options: lumen.toml [build] first,
// then the global flags.
func compileRequest(cmd *cobra.Command, in projectInput) (buildpipeline.CompileRequest, error) {
	flags := cmd.Root().PersistentFlags()
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return buildpipeline.CompileRequest{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return buildpipeline.CompileRequest{}, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return buildpipeline.CompileRequest{}, fmt.Errorf("failed to get timings flag: %w", err)
	}

	opts := lower.DefaultOptions()
	var printOpts jsprint.Options
	if in.manifest != nil {
		b := in.manifest.Config.Build
		if jobs == 0 {
			jobs = b.Jobs
		}
		if b.DeclarationsName != "" {
			opts.DeclarationsName = b.DeclarationsName
		}
		if b.Runtime != "" {
			opts.Runtime = b.Runtime
		}
		if b.Freeze != nil {
			opts.Freeze = *b.Freeze
		}
		printOpts.IndentWidth = b.Indent
	}

	diskCache, err := openCache(cmd)
	if err != nil {
		return buildpipeline.CompileRequest{}, err
	}

	return buildpipeline.CompileRequest{
		Files:          in.files,
		BaseDir:        in.baseDir,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
		Lower:          opts,
		Print:          printOpts,
		DiskCache:      diskCache,
		Memory:         driver.NewUnitCache(len(in.files)),
		EnableTimings:  timings,
	}, nil
}

// openCache returns nil when the cache is off or cannot be opened; the build
// still works without it.
func openCache(cmd *cobra.Command) (*driver.DiskCache, error) {
	flags := cmd.Root().PersistentFlags()
	mode, err := flags.GetString("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "off", "false", "0":
		return nil, nil
	case "on", "true", "1", "":
	default:
		return nil, fmt.Errorf("invalid --cache value %q (expected on|off)", mode)
	}
	dir, err := flags.GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	var cache *driver.DiskCache
	if dir != "" {
		cache, err = driver.OpenDiskCacheAt(dir)
	} else {
		cache, err = driver.OpenDiskCache("lumen")
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: artifact cache disabled: %v\n", err)
		return nil, nil
	}
	return cache, nil
}

// printDiagnostics renders the merged diagnostics to stderr in the format
// chosen by --diagnostics.
func printDiagnostics(cmd *cobra.Command, res *driver.LowerResult, baseDir string) error {
	if res == nil || res.Bag == nil || res.Bag.Len() == 0 {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return err
	}
	if quiet && !res.Bag.HasErrors() {
		return nil
	}
	format, err := flags.GetString("diagnostics")
	if err != nil {
		return err
	}
	modeValue, err := flags.GetString("path-mode")
	if err != nil {
		return err
	}
	pathMode, ok := diagfmt.ParsePathMode(modeValue)
	if !ok {
		return fmt.Errorf("invalid --path-mode value %q", modeValue)
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	severityValue, err := flags.GetString("min-severity")
	if err != nil {
		return err
	}
	least, err := diag.ParseSeverity(severityValue)
	if err != nil {
		return err
	}
	bag := res.Bag.Filter(least)
	if bag.Len() == 0 {
		return nil
	}

	out := cmd.ErrOrStderr()
	switch strings.ToLower(format) {
	case "pretty", "":
		colorValue, err := flags.GetString("color")
		if err != nil {
			return err
		}
		colored, err := useColor(colorValue, os.Stderr)
		if err != nil {
			return err
		}
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:     colored,
			Context:   1,
			PathMode:  pathMode,
			BaseDir:   baseDir,
			ShowNotes: true,
		})
	case "short":
		if text := diag.FormatShortDiagnostics(bag.Items(), res.FileSet, true); text != "" {
			fmt.Fprintln(out, text)
		}
	case "json":
		return diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          baseDir,
			Max:              maxDiagnostics,
			IncludeNotes:     true,
		})
	default:
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty, short or json)", format)
	}
	return nil
}
