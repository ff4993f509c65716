package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/bill-summary/pkg/cron"
)

var scheduleNow bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the summary on a cron schedule",
	Long: `Runs the summary on the schedule in SCHEDULE_CRON (standard five-field
cron syntax, default "0 6 1 * *": 06:00 on the first of each month) until
interrupted. Each run is bounded by SCHEDULE_TIMEOUT (default 30m, 0 for no
bound); an interrupt cancels a run in flight.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "also run once immediately")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scheduler := cron.NewScheduler(cfg.Schedule.Cron, func(ctx context.Context) error {
		return summarizeOnce(ctx, cmd, deps)
	}, logger,
		cron.WithContext(ctx),
		cron.WithTimeout(cfg.Schedule.Timeout),
	)

	if err := scheduler.Start(); err != nil {
		return err
	}
	logger.Info("next scheduled run", slog.Time("at", scheduler.Next()))

	if scheduleNow {
		if err := scheduler.RunNow(ctx); err != nil {
			logger.Error("summary failed", slog.Any("error", err))
		}
	}

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}
