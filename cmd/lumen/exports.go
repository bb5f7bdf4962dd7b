package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var exportsCmd = &cobra.Command{
	Use:   "exports [flags] [unit files or dirs...]",
	Short: "Show the export table of every namespace",
	Long: `Exports lowers the units and prints for each namespace the global name of
every class and the expression other namespaces use to reach it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		format = strings.ToLower(format)
		res, _, err := compileForReport(cmd, args)
		if res.Lower == nil {
			return err
		}
		report := buildExportsReport(res.Lower)
		if format == "text" {
			if renderErr := renderExportsText(cmd.OutOrStdout(), report); renderErr != nil {
				return renderErr
			}
		} else if renderErr := writeStructured(cmd.OutOrStdout(), format, report); renderErr != nil {
			return renderErr
		}
		return err
	},
}

func init() {
	exportsCmd.Flags().String("format", "text", "output format (text|json|yaml)")
}
