package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached unit artifacts",
	Long:  "Remove every lowered unit stored in the artifact cache.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	if cache == nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "artifact cache is disabled")
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %q: %w", cache.Dir(), err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed cached units from %s\n", cache.Dir())
	return err
}
