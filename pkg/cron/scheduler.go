// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by RunNow when a run is already executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// Job is the unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler manages background scheduled jobs using robfig/cron.
// Runs never overlap: a tick that fires while a run is executing is skipped.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	logger  *slog.Logger
	// ctx is the parent of every scheduled run.
	ctx context.Context

	mu      sync.Mutex
	running bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimeout bounds each run. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// WithContext sets the parent context of scheduled runs, so cancelling it
// aborts a run in flight.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) { s.ctx = ctx }
}

// NewScheduler creates a scheduler running job on the standard 5-field
// cron spec.
func NewScheduler(spec string, job Job, logger *slog.Logger, opts ...Option) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	s := &Scheduler{
		cron:    c,
		spec:    spec,
		job:     job,
		timeout: 30 * time.Minute,
		logger:  logger,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("spec", s.spec),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs. The returned context is done
// when a running job has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow runs the job synchronously, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.run(ctx)
}

func (s *Scheduler) tick() {
	if s.ctx.Err() != nil {
		return
	}
	err := s.run(s.ctx)
	if errors.Is(err, ErrRunInProgress) {
		s.logger.Warn("skipping scheduled run, previous run still active")
	}
}

func (s *Scheduler) run(ctx context.Context) error {
	if !s.acquire() {
		return ErrRunInProgress
	}
	defer s.release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("scheduled run starting")

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled run failed",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)),
		)
		return err
	}

	s.logger.Info("scheduled run completed",
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (s *Scheduler) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
