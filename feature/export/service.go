package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/storage"
	"dbt-metabase/feature/history"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ModelSource provides the manifest models of a run.
type ModelSource interface {
	ReadModels(ctx context.Context) ([]reconcile.Model, error)
}

// Exporter runs export passes. *reconcile.Engine implements it.
type Exporter interface {
	Export(ctx context.Context, models []reconcile.Model, opts reconcile.ExportOptions) (*reconcile.Summary, error)
	ExportAll(ctx context.Context, models []reconcile.Model, opts []reconcile.ExportOptions, limit int) ([]*reconcile.Summary, error)
}

// RunResult is the outcome of one export run, as reported over HTTP and in storage.
type RunResult struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Database   string             `json:"database"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Summary    *reconcile.Summary `json:"summary,omitempty"`
	Failures   []string           `json:"failures,omitempty"`
	Error      string             `json:"error,omitempty"`
	Report     string             `json:"report,omitempty"`
}

// Service orchestrates export runs.
type Service struct {
	source   ModelSource
	engine   Exporter
	store    storage.Client
	runs     *history.Store
	cfg      Config
	logger   *zap.Logger
	newRunID func() string
}

// NewService creates a new export service. store may be nil when reports are disabled.
func NewService(source ModelSource, engine Exporter, store storage.Client, runs *history.Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runs == nil {
		runs = history.NewStore(nil, logger)
	}
	return &Service{
		source:   source,
		engine:   engine,
		store:    store,
		runs:     runs,
		cfg:      cfg,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Defaults returns the configured export options.
func (s *Service) Defaults() reconcile.ExportOptions {
	return s.cfg.Options()
}

// Run executes one export. The result is non-nil even when err is not; it describes
// how far the run got.
func (s *Service) Run(ctx context.Context, opts reconcile.ExportOptions) (*RunResult, error) {
	result := s.start(opts)
	l := s.logger.With(zap.String("run_id", result.ID), zap.String("database", opts.MetabaseDatabase))

	// Step 1: Validate before touching the manifest
	if err := opts.Validate(); err != nil {
		s.finish(ctx, l, result, nil, err)
		return result, err
	}

	// Step 2: Read the manifest
	models, err := s.source.ReadModels(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read manifest: %w", err)
		s.finish(ctx, l, result, nil, err)
		return result, err
	}

	// Step 3: Export
	l.Info("Starting export", zap.Int("models", len(models)), zap.Bool("dry_run", opts.DryRun))
	summary, err := s.engine.Export(ctx, models, opts)

	// Step 4: Report and record
	s.finish(ctx, l, result, summary, err)
	return result, err
}

// RunAll executes one export per options set against a single manifest read.
// Results are returned in the order of opts.
func (s *Service) RunAll(ctx context.Context, opts []reconcile.ExportOptions) ([]*RunResult, error) {
	results := make([]*RunResult, len(opts))
	for i, o := range opts {
		results[i] = s.start(o)
	}

	models, err := s.source.ReadModels(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read manifest: %w", err)
		for _, r := range results {
			s.finish(ctx, s.logger.With(zap.String("run_id", r.ID)), r, nil, err)
		}
		return results, err
	}

	summaries, joined := s.engine.ExportAll(ctx, models, opts, s.cfg.Concurrency)
	runErrs := make(map[int]error)
	for _, e := range reconcile.ExportErrors(joined) {
		runErrs[e.Index] = e
	}

	for i, r := range results {
		runErr := runErrs[i]
		if runErr == nil && summaries[i] == nil {
			runErr = fmt.Errorf("export to %s produced no summary", opts[i].MetabaseDatabase)
		}
		l := s.logger.With(zap.String("run_id", r.ID), zap.String("database", opts[i].MetabaseDatabase))
		s.finish(ctx, l, r, summaries[i], runErr)
	}
	return results, joined
}

func (s *Service) start(opts reconcile.ExportOptions) *RunResult {
	return &RunResult{
		ID:        s.newRunID(),
		Database:  opts.MetabaseDatabase,
		StartedAt: time.Now().UTC(),
	}
}

// finish fills in the result, uploads the report and records the run.
func (s *Service) finish(ctx context.Context, l *zap.Logger, result *RunResult, summary *reconcile.Summary, err error) {
	result.FinishedAt = time.Now().UTC()
	result.Summary = summary

	switch {
	case err != nil:
		result.Status = history.StatusFailed
		result.Error = err.Error()
		l.Error("Export failed", zap.Error(err))
	case len(summary.Failures) > 0:
		result.Status = history.StatusPartial
		result.Failures = summary.FailureMessages()
		result.Error = fmt.Sprintf("%d update calls failed", len(summary.Failures))
		l.Warn("Export finished with failures", zap.Int("failures", len(summary.Failures)))
	default:
		result.Status = history.StatusSucceeded
	}

	if key, uploadErr := s.uploadReport(ctx, result); uploadErr != nil {
		l.Warn("Failed to upload export report", zap.Error(uploadErr))
	} else {
		result.Report = key
	}

	if saveErr := s.runs.Save(ctx, toRecord(result)); saveErr != nil {
		l.Warn("Failed to record export run", zap.Error(saveErr))
	}
}

// uploadReport writes the result as JSON to the report bucket. It returns an empty key
// when reports are disabled.
func (s *Service) uploadReport(ctx context.Context, result *RunResult) (string, error) {
	if s.store == nil || s.cfg.ReportBucket == "" {
		return "", nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	database := result.Database
	if database == "" {
		database = "unknown"
	}
	key := path.Join(s.cfg.ReportPrefix, database, result.StartedAt.Format("20060102T150405Z")+"-"+result.ID+".json")

	_, err = s.store.PutObject(ctx, s.cfg.ReportBucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to put report %s: %w", key, err)
	}
	return key, nil
}

func toRecord(r *RunResult) *history.ExportRun {
	run := &history.ExportRun{
		ID:         r.ID,
		Database:   r.Database,
		Status:     r.Status,
		Error:      r.Error,
		Report:     r.Report,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if s := r.Summary; s != nil {
		run.DryRun = s.DryRun
		run.SyncComplete = s.SyncComplete
		run.Planned = s.Planned
		run.Updated = s.Updated
		run.Skipped = s.Skipped
		run.MarkedCruft = s.MarkedCruft
		run.Warnings = len(s.Warnings)
		run.Failures = len(s.Failures)
	}
	return run
}
