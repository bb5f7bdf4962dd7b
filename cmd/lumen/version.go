package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lumen/internal/version"
)

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
}

var (
	versionFormat   string
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json|yaml)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lumen build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := versionOptions{
			format:   strings.ToLower(versionFormat),
			showHash: versionShowHash || versionShowFull,
			showDate: versionShowDate || versionShowFull,
		}
		info := version.Current()
		switch opts.format {
		case "pretty":
			colorValue, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			colored, err := useColor(colorValue, os.Stdout)
			if err != nil {
				return err
			}
			return renderVersionPretty(cmd.OutOrStdout(), info, opts, colored)
		case "json", "yaml":
			if !opts.showHash {
				info.GitCommit = ""
			}
			if !opts.showDate {
				info.BuildDate = ""
			}
			return writeStructured(cmd.OutOrStdout(), opts.format, info)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty, json or yaml)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions, colored bool) error {
	v := info.Version
	if colored {
		color.NoColor = false
		v = version.Colored(v)
	}
	if _, err := fmt.Fprintf(out, "lumen %s (%s)\n", v, info.Go); err != nil {
		return err
	}
	if opts.showHash {
		if _, err := fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit)); err != nil {
			return err
		}
	}
	if opts.showDate {
		if _, err := fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate)); err != nil {
			return err
		}
	}
	return nil
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
