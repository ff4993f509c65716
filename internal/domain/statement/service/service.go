// Package service orchestrates a summary run: discover statements, extract
// and reconcile each one, then finalize and write the table once.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/export"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/parser"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/bill-summary/pkg/metrics"
	"github.com/FACorreiaa/bill-summary/pkg/money"
	"github.com/FACorreiaa/bill-summary/pkg/storage"
)

const (
	tracerName = "billsum/statement"

	// DefaultOutputName is used when Options.OutputName is empty.
	DefaultOutputName = "output.xlsx"
)

// ErrStatementsFailed is returned with a partial result when KeepGoing is set
// and at least one statement could not be processed.
var ErrStatementsFailed = errors.New("one or more statements failed")

// PageLoader returns the text of one page of a statement document.
type PageLoader interface {
	LoadPage(ctx context.Context, path string, page int) (string, error)
}

// Options control a summary run.
type Options struct {
	// Page is the 1-based page carrying the charge details.
	Page     int
	Currency string
	// ToleranceCents is the allowed |computed - printed| difference.
	ToleranceCents int64
	// Strict turns a totals mismatch into a statement failure.
	Strict bool
	// KeepGoing records per-statement failures instead of aborting the run.
	KeepGoing bool
	// OutputName is the file name the table is saved under.
	OutputName string
}

// Failure is a statement that could not be summarized.
type Failure struct {
	File string
	Err  error
}

// Result is the outcome of a run.
type Result struct {
	RunID    uuid.UUID
	Table    *statement.SummaryTable
	Failures []Failure
	Insights *statement.Insights
	Output   *storage.FileInfo
	// Duplicates lists statements with identical content, keyed by fingerprint.
	Duplicates map[string][]string
}

// SummaryService builds the billing summary for a directory of statements.
type SummaryService struct {
	loader     PageLoader
	normalizer *normalizer.TextNormalizer
	extractor  *parser.Extractor
	store      storage.Storage
	writer     export.Writer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	opts       Options
}

// NewSummaryService creates the service. metrics may be nil.
func NewSummaryService(
	loader PageLoader,
	store storage.Storage,
	writer export.Writer,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts Options,
) *SummaryService {
	if opts.Page < 1 {
		opts.Page = parser.DefaultDetailsPage
	}
	if opts.Currency == "" {
		opts.Currency = money.USD
	}
	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SummaryService{
		loader:     loader,
		normalizer: normalizer.NewTextNormalizer(),
		extractor:  parser.NewExtractor(opts.Currency),
		store:      store,
		writer:     writer,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		opts:       opts,
	}
}

// Summarize processes every statement in dir and writes the finalized table.
//
// Without KeepGoing the first failing statement aborts the run and nothing is
// written. With KeepGoing the successful rows are written and the result is
// returned together with ErrStatementsFailed.
func (s *SummaryService) Summarize(ctx context.Context, dir string) (res *Result, err error) {
	start := time.Now()
	runID := uuid.New()
	logger := s.logger.With(slog.String("run_id", runID.String()))

	ctx, span := s.tracer.Start(ctx, "statement.Summarize", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("input.dir", dir),
	))
	defer func() {
		rows, last := 0, 0.0
		if res != nil {
			rows = res.Table.Len()
			if r := res.Table.Rows(); len(r) > 0 {
				last = r[len(r)-1].PrintedTotal.ToFloat64()
			}
		}
		s.metrics.ObserveRun(start, rows, last, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	files, err := sniffer.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover statements: %w", err)
	}
	logger.Info("discovered statements",
		slog.String("dir", dir),
		slog.Int("count", len(files)),
	)

	result := &Result{
		RunID:      runID,
		Table:      statement.NewSummaryTable(),
		Duplicates: sniffer.Duplicates(files),
	}
	for _, names := range result.Duplicates {
		logger.Warn("duplicate statements", slog.Any("files", names))
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Info("processing statement",
			slog.String("file", f.Name),
			slog.Int("index", i+1),
			slog.Int("total", len(files)),
		)

		rec, err := s.processFile(ctx, f)
		if err == nil {
			err = result.Table.Append(rec)
		}
		if err != nil {
			s.metrics.ObserveStatement(false)
			if !s.opts.KeepGoing {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			logger.Error("statement failed",
				slog.String("file", f.Name),
				slog.Any("error", err),
			)
			result.Failures = append(result.Failures, Failure{File: f.Name, Err: err})
			continue
		}
		s.metrics.ObserveStatement(true)
	}

	if err := result.Table.Finalize(); err != nil {
		return nil, err
	}

	insights, err := statement.Summarize(result.Table, s.opts.ToleranceCents)
	if err != nil {
		return nil, fmt.Errorf("failed to compute insights: %w", err)
	}
	result.Insights = insights

	output, err := s.write(ctx, result.Table)
	if err != nil {
		return nil, err
	}
	result.Output = output

	logger.Info("summary written",
		slog.String("path", output.Path),
		slog.Int("statements", result.Table.Len()),
		slog.Int("failed", len(result.Failures)),
		slog.Int("mismatches", insights.Mismatches),
		slog.Duration("elapsed", time.Since(start)),
	)

	if len(result.Failures) > 0 {
		return result, fmt.Errorf("%w: %d of %d", ErrStatementsFailed, len(result.Failures), len(files))
	}
	return result, nil
}

// processFile turns one statement into a billing record. A file without the
// PDF signature fails as a LoadError without reaching the loader. The file is
// fully read and closed by the loader before extraction starts.
func (s *SummaryService) processFile(ctx context.Context, f sniffer.File) (*statement.BillingRecord, error) {
	ctx, span := s.tracer.Start(ctx, "statement.Process", trace.WithAttributes(
		attribute.String("file.name", f.Name),
		attribute.Int64("file.size", f.Size),
	))
	defer span.End()

	if err := f.Check(); err != nil {
		span.RecordError(err)
		return nil, &parser.LoadError{Path: f.Path, Page: s.opts.Page, Err: err}
	}

	text, err := s.loader.LoadPage(ctx, f.Path, s.opts.Page)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	fields, err := s.extractor.Extract(s.normalizer.Normalize(text))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rec, err := statement.NewBillingRecord(f.Name, fields)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if !rec.TotalsMatch(s.opts.ToleranceCents) {
		s.metrics.ObserveMismatch()
		s.logger.Warn("totals mismatch",
			slog.String("file", f.Name),
			slog.String("computed", rec.ComputedTotal.String()),
			slog.String("printed", rec.PrintedTotal.String()),
			slog.Int64("delta_cents", rec.Delta()),
		)
		span.SetAttributes(attribute.Bool("totals.match", false))
		if s.opts.Strict {
			return nil, rec.CheckTotals(s.opts.ToleranceCents)
		}
	}

	return rec, nil
}

// write renders the finalized table into memory and saves it in one step.
func (s *SummaryService) write(ctx context.Context, table *statement.SummaryTable) (*storage.FileInfo, error) {
	ctx, span := s.tracer.Start(ctx, "statement.Write")
	defer span.End()

	var buf bytes.Buffer
	if err := s.writer.Write(&buf, table.Rows()); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to render summary: %w", err)
	}

	info, err := s.store.Save(ctx, s.opts.OutputName, s.writer.ContentType(), &buf)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}
	span.SetAttributes(attribute.String("output.path", info.Path))
	return info, nil
}
