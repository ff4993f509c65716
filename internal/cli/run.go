package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize the statements once and exit",
	Long: `Processes every PDF statement in the input directory, writes the summary
table and prints it. The exit status is non-zero when any statement fails.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		return err
	}

	return summarizeOnce(cmd.Context(), cmd, deps)
}

// summarizeOnce runs the pipeline, flushes metrics and prints the outcome.
// A partial result from a keep-going run is still printed before the error
// is returned.
func summarizeOnce(ctx context.Context, cmd *cobra.Command, deps *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}

	res, runErr := deps.SummaryService.Summarize(ctx, deps.Config.Input.Dir)

	if err := deps.Metrics.WriteTextfile(deps.Config.Observability.MetricsTextfile); err != nil {
		deps.Logger.Warn("metrics not written", slog.Any("error", err))
	}

	if res != nil {
		renderResult(cmd.OutOrStdout(), res, deps.Config.Totals.ToleranceCents)
	}
	return runErr
}
