package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lumen/internal/buildpipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [unit files or dirs...]",
	Short: "Lower every unit and link one JavaScript program",
	Long: `Build lowers the class declarations of every unit manifest and writes the
linked JavaScript program. Without arguments the units listed in lumen.toml
are built and [project].output is used as the output file.`,
	RunE: buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	outputFlag, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	noPrelude, err := cmd.Flags().GetBool("no-prelude")
	if err != nil {
		return err
	}
	keepGoing, err := cmd.Flags().GetBool("keep-going")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	in, err := resolveInputs(args)
	if err != nil {
		return err
	}
	compileReq, err := compileRequest(cmd, in)
	if err != nil {
		return err
	}
	compileReq.AllowDiagnosticsError = keepGoing
	if cmd.Flags().Changed("indent") {
		indent, indentErr := cmd.Flags().GetInt("indent")
		if indentErr != nil {
			return indentErr
		}
		compileReq.Print.IndentWidth = indent
	}

	outputPath := outputFlag
	prelude := !noPrelude
	if in.manifest != nil {
		if outputPath == "" {
			outputPath = in.manifest.OutputPath()
		}
		if p := in.manifest.Config.Build.Prelude; p != nil && !cmd.Flags().Changed("no-prelude") {
			prelude = *p
		}
	}
	if outputPath == "-" {
		outputPath = ""
	}
	if outputPath != "" {
		if abs, absErr := filepath.Abs(outputPath); absErr == nil {
			outputPath = abs
		}
	}

	buildReq := buildpipeline.BuildRequest{
		CompileRequest: compileReq,
		OutputPath:     outputPath,
		Prelude:        prelude,
	}

	var res buildpipeline.BuildResult
	recorder := &buildpipeline.RecordingSink{}
	if shouldUseTUI(uiModeValue, outputPath == "") {
		res, err = runBuildWithUI(cmd.Context(), "lumen build", &buildReq)
	} else {
		buildReq.Progress = recorder
		res, err = buildpipeline.Build(cmd.Context(), &buildReq)
	}
	if printErr := printDiagnostics(cmd, res.Compile.Lower, in.baseDir); printErr != nil {
		return printErr
	}
	if err != nil {
		if errors.Is(err, buildpipeline.ErrDiagnostics) {
			return fmt.Errorf("build failed: %w", err)
		}
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err = os.Stdout.Write(res.Output)
		return err
	}
	if quiet {
		return nil
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if timings {
		if err := printStageTimings(cmd.OutOrStdout(), res.Timings); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "built %s (%s)\n", formatPathForOutput(in.baseDir, res.OutputPath), unitSummary(recorder.Events(), len(res.Compile.Lower.Order)))
	return err
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output file (- for stdout)")
	buildCmd.Flags().Bool("no-prelude", false, "do not prepend the runtime prelude")
	buildCmd.Flags().Bool("keep-going", false, "link the units that lowered even if others failed")
	buildCmd.Flags().Int("indent", 4, "indent width of the generated code")
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
}
