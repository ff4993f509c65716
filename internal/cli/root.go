// Package cli implements the billsum command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/bill-summary/pkg/config"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	envFile    string
	inputDir   string
	outputPath string
	strict     bool
	keepGoing  bool
)

var rootCmd = &cobra.Command{
	Use:   "billsum",
	Short: "Summarize recurring bill statements into a spreadsheet",
	Long: `billsum reads every PDF statement in a directory, extracts the charges
from the details page, checks them against the printed total and writes one
row per statement, oldest first, to an xlsx or csv file.

The input directory comes from PDF_LOC (or --dir). Running billsum without a
subcommand is the same as "billsum run".`,
	SilenceUsage: true,
	RunE:         runSummary,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVarP(&inputDir, "dir", "d", "", "directory of PDF statements (overrides PDF_LOC)")
	flags.StringVarP(&outputPath, "output", "o", "", "output file, .xlsx or .csv (overrides OUTPUT_PATH)")
	flags.BoolVar(&strict, "strict", false, "fail when a computed total differs from the printed total")
	flags.BoolVar(&keepGoing, "keep-going", false, "skip statements that fail instead of aborting")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads .env and the environment, then applies flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg := config.FromEnv()
	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Input.Dir = inputDir
	}
	if flags.Changed("output") {
		cfg.Output.Path = outputPath
	}
	if flags.Changed("strict") {
		cfg.Totals.Strict = strict
	}
	if flags.Changed("keep-going") {
		cfg.Input.KeepGoing = keepGoing
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
