package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/buildpipeline"
)

var orderCmd = &cobra.Command{
	Use:   "order [flags] [unit files or dirs...]",
	Short: "Show the order in which classes are emitted",
	Long: `Order lowers the units and prints, dependencies first, every namespace with
its classes in emission order: each class after the supertypes it declares.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format = strings.ToLower(format)
		res, baseDir, err := compileForReport(cmd, args)
		if res.Lower == nil {
			return err
		}
		report := buildOrderReport(res.Lower, baseDir)
		if format == "text" {
			if renderErr := renderOrderText(cmd.OutOrStdout(), report); renderErr != nil {
				return renderErr
			}
		} else if renderErr := writeStructured(cmd.OutOrStdout(), format, report); renderErr != nil {
			return renderErr
		}
		return err
	},
}

// compileForReport lowers everything that can be lowered; the error is
// non-nil when a unit failed, after its diagnostics were printed.
func compileForReport(cmd *cobra.Command, args []string) (buildpipeline.CompileResult, string, error) {
	in, err := resolveInputs(args)
	if err != nil {
		return buildpipeline.CompileResult{}, "", err
	}
	req, err := compileRequest(cmd, in)
	if err != nil {
		return buildpipeline.CompileResult{}, in.baseDir, err
	}
	req.AllowDiagnosticsError = true
	res, err := buildpipeline.Compile(cmd.Context(), &req)
	if err != nil {
		return buildpipeline.CompileResult{}, in.baseDir, err
	}
	if err := printDiagnostics(cmd, res.Lower, in.baseDir); err != nil {
		return res, in.baseDir, err
	}
	if res.Lower.HasErrors() {
		return res, in.baseDir, fmt.Errorf("lowering failed: %w", buildpipeline.ErrDiagnostics)
	}
	return res, in.baseDir, nil
}

func init() {
	orderCmd.Flags().String("format", "text", "output format (text|json|yaml)")
}
