package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement/sniffer"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the summary whenever statements are added or changed",
	Long: `Runs the summary once, then watches the input directory and runs it again
after PDF files are created, written, renamed or removed. Bursts of events
are coalesced; runs never overlap.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before re-running")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Input.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Input.Dir, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	run := func(ctx context.Context) error {
		return summarizeOnce(ctx, cmd, deps)
	}

	// Initial run; failures are reported but do not stop watching.
	if err := run(ctx); err != nil {
		logger.Error("summary failed", slog.Any("error", err))
	}

	logger.Info("watching for statements",
		slog.String("dir", cfg.Input.Dir),
		slog.Duration("debounce", watchDebounce),
	)
	return watchLoop(ctx, watcher.Events, watcher.Errors, watchDebounce, run, logger)
}

// watchLoop waits for relevant events, coalesces them for debounce and then
// calls run. Runs execute on this goroutine, so they never overlap; events
// that arrive during a run schedule one more run afterwards.
func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	debounce time.Duration,
	run func(context.Context) error,
	logger *slog.Logger,
) error {
	// fire is nil while nothing is pending.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !isStatementEvent(ev) {
				continue
			}
			logger.Debug("statement changed",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()),
			)
			fire = time.After(debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.Any("error", err))

		case <-fire:
			fire = nil
			if err := run(ctx); err != nil {
				logger.Error("summary failed", slog.Any("error", err))
			}
		}
	}
}

// isStatementEvent reports whether ev touches a PDF in a way that can change
// the summary. Chmod-only events are ignored.
func isStatementEvent(ev fsnotify.Event) bool {
	if !sniffer.HasPDFExtension(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
