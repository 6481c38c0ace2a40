package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/contentscore/config"
	"github.com/seo-optimizer/contentscore/scoring"
)

var thresholdsFile string

var rootCmd = &cobra.Command{
	Use:   "seoscore",
	Short: "Score content form snapshots for on-page SEO",
	Long: `Seoscore evaluates a content form snapshot against a fixed catalog of
weighted SEO criteria and reports a 0-100 score with per-criterion status,
action labels and tooltips.

It runs as an HTTP API (serve) or scores saved snapshots from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = "1.0.0"
	rootCmd.PersistentFlags().StringVar(&thresholdsFile, "thresholds", os.Getenv("THRESHOLDS_FILE"),
		"YAML file overriding the default scoring thresholds")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine builds an engine using the --thresholds overlay, if any
func newEngine(opts ...scoring.Option) (*scoring.Engine, error) {
	th := scoring.DefaultThresholds()
	if thresholdsFile != "" {
		var err error
		if th, err = config.LoadThresholds(thresholdsFile); err != nil {
			return nil, err
		}
	}
	return scoring.NewEngine(append([]scoring.Option{scoring.WithThresholds(th)}, opts...)...)
}
