package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/bill-summary/internal/domain/statement/export"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/parser"
	"github.com/FACorreiaa/bill-summary/internal/domain/statement/service"
	"github.com/FACorreiaa/bill-summary/pkg/config"
	"github.com/FACorreiaa/bill-summary/pkg/metrics"
	"github.com/FACorreiaa/bill-summary/pkg/storage"
)

// newPageLoader builds the statement loader; tests replace it.
var newPageLoader = func() service.PageLoader {
	return parser.NewPDFLoader()
}

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	FileStorage storage.Storage
	Writer      export.Writer

	SummaryService *service.SummaryService
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initStorage prepares the output directory and the table writer
func (d *Dependencies) initStorage() error {
	store, err := storage.New(&storage.Config{
		Type:      storage.StorageTypeLocal,
		LocalPath: filepath.Dir(d.Config.Output.Path),
	})
	if err != nil {
		return err
	}
	d.FileStorage = store

	writer, err := export.ForPath(d.Config.Output.Path, export.Options{
		ToleranceCents: d.Config.Totals.ToleranceCents,
	})
	if err != nil {
		return err
	}
	d.Writer = writer

	return nil
}

// initServices wires the summary pipeline
func (d *Dependencies) initServices() error {
	d.SummaryService = service.NewSummaryService(
		newPageLoader(),
		d.FileStorage,
		d.Writer,
		d.Metrics,
		d.Logger,
		service.Options{
			Page:           d.Config.Input.Page,
			Currency:       d.Config.Totals.Currency,
			ToleranceCents: d.Config.Totals.ToleranceCents,
			Strict:         d.Config.Totals.Strict,
			KeepGoing:      d.Config.Input.KeepGoing,
			OutputName:     filepath.Base(d.Config.Output.Path),
		},
	)
	return nil
}

// newLogger builds the slog logger selected by LOG_FORMAT and LOG_LEVEL.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
