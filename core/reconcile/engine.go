package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is the fixed interval between sync status polls.
const DefaultPollInterval = time.Second

// Engine runs export passes against one catalog.
// An Engine holds no per-run state, so concurrent exports for different databases are safe.
type Engine struct {
	client       CatalogClient
	logger       *zap.Logger
	pollInterval time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPollInterval overrides the sync status poll interval.
func WithPollInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// NewEngine creates an engine around a catalog client.
func NewEngine(client CatalogClient, logger *zap.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		client:       client,
		logger:       logger,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export makes the catalog mirror the manifest metadata of the given models.
//
// The steps always run in this order: validate options, resolve the database, filter
// models, wait for the catalog sync, snapshot the catalog and match, plan, apply.
// The returned summary is non-nil whenever the run reached the planning step; failed
// update calls are reported in Summary.Failures, not in the returned error.
func (e *Engine) Export(ctx context.Context, models []Model, opts ExportOptions) (*Summary, error) {
	// Step 1: Validate options upfront
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Resolve the catalog database
	databaseID, err := e.resolveDatabase(ctx, opts.MetabaseDatabase)
	if err != nil {
		return nil, err
	}
	l := e.logger.With(zap.String("database", opts.MetabaseDatabase), zap.Int("database_id", databaseID))

	// Step 3: Select the models in scope
	scoped := opts.FilterModels(models)

	// Step 4: Wait until the catalog lists every model in scope
	var warnings []Warning
	ready, listing, err := e.WaitForSync(ctx, databaseID, scoped, opts.SyncTimeout)
	if err != nil {
		return nil, err
	}
	if !ready {
		l.Warn("Catalog sync did not complete in time, using current listing",
			zap.Duration("sync_timeout", opts.SyncTimeout),
		)
		warnings = append(warnings, Warning{
			Kind:    WarningStaleCatalog,
			Key:     strconv.Itoa(databaseID),
			Message: "sync did not complete within " + opts.SyncTimeout.String(),
		})
	}

	// Step 5: Snapshot the catalog and match
	if listing == nil {
		listing, err = e.client.ListTables(ctx, databaseID)
		if err != nil {
			return nil, unavailable(strconv.Itoa(databaseID), "list_tables", err)
		}
	}
	lookup, lookupWarnings := BuildLookup(databaseID, listing)
	for _, w := range lookupWarnings {
		l.Warn("Catalog key collision", zap.String("key", w.Key), zap.String("detail", w.Message))
	}
	warnings = append(warnings, lookupWarnings...)

	pairs := Match(scoped, lookup)
	l.Info("Matched manifest models",
		zap.Int("models", len(models)),
		zap.Int("in_scope", len(scoped)),
		zap.Int("catalog_tables", lookup.Len()),
	)

	// Step 6: Plan
	plan := PlanReconcile(pairs, lookup, ModelKeys(models), opts)
	for _, w := range plan.Warnings {
		l.Info("Plan warning", zap.String("kind", string(w.Kind)), zap.String("key", w.Key), zap.String("detail", w.Message))
	}
	plan.Warnings = append(warnings, plan.Warnings...)

	// Step 7: Apply unless dry-run
	var summary *Summary
	if opts.DryRun {
		summary = &Summary{
			DatabaseID: databaseID,
			Planned:    len(plan.Actions),
			Actions:    plan.Actions,
			Warnings:   plan.Warnings,
		}
		l.Info("Dry run: no changes applied", zap.Int("planned", len(plan.Actions)))
	} else {
		summary = ApplyPlan(ctx, e.client, plan, l)
	}

	summary.Database = opts.MetabaseDatabase
	summary.DryRun = opts.DryRun
	summary.SyncComplete = ready && opts.SyncTimeout > 0
	summary.Skipped = plan.Summary.UnmatchedModels + plan.Summary.UnmatchedColumns

	l.Info("Export finished",
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("marked_cruft", summary.MarkedCruft),
		zap.Int("warnings", len(summary.Warnings)),
		zap.Int("failures", len(summary.Failures)),
	)

	return summary, nil
}

// ExportAll runs one export per options set concurrently. The runs share nothing but the
// catalog client. Summaries are returned in the order of opts; a run that failed before
// planning has a nil summary and contributes an *ExportError to the joined error.
func (e *Engine) ExportAll(ctx context.Context, models []Model, opts []ExportOptions, limit int) ([]*Summary, error) {
	summaries := make([]*Summary, len(opts))
	errs := make([]error, len(opts))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range opts {
		g.Go(func() error {
			summary, err := e.Export(ctx, models, opts[i])
			summaries[i] = summary
			if err != nil {
				errs[i] = &ExportError{Index: i, Database: opts[i].MetabaseDatabase, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return summaries, errors.Join(errs...)
}

// resolveDatabase accepts a numeric catalog id or a database name.
func (e *Engine) resolveDatabase(ctx context.Context, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}

	id, err := e.client.ResolveDatabase(ctx, ref)
	if errors.Is(err, ErrDatabaseNotFound) {
		return 0, fmt.Errorf("resolve %q: %w", ref, err)
	}
	if err != nil {
		return 0, unavailable(ref, "resolve_database", err)
	}
	return id, nil
}
