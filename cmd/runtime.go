package cmd

import (
	"context"
	"errors"
	"fmt"

	"dbt-metabase/core/config"
	"dbt-metabase/core/database"
	"dbt-metabase/core/logger"
	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/storage"
	"dbt-metabase/feature/export"
	"dbt-metabase/feature/history"
	"dbt-metabase/feature/manifest"
	"dbt-metabase/feature/metabase"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime bundles the components shared by the commands. service is nil until withExport.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Client
	runs    *history.Store
	service *export.Service
}

// newRuntime loads configuration and connects the logger, storage and history store.
// Object storage and the history database are optional; failing to reach them is logged.
func newRuntime(ctx context.Context, overrides ...func(*config.Config)) (*runtime, error) {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	// 2. Initialize Logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)

	// 3. Connect to Storage (Optional)
	store, err := storage.NewClient(cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		l.Debug("Object storage not configured, reports disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	case cfg.Export.ReportBucket != "":
		if err := storage.EnsureBucket(ctx, store, cfg.Export.ReportBucket, cfg.Storage.Region); err != nil {
			l.Warn("Report bucket unavailable, reports will not be uploaded", zap.Error(err))
		}
	}

	// 4. Connect to Database (Optional)
	var db *gorm.DB
	if cfg.Database.Enabled {
		if conn, err := database.Connect(cfg.Database); err != nil {
			l.Warn("Optional history database connection failed", zap.Error(err))
		} else {
			db = conn
			l.Info("Connected to history database", zap.String("driver", cfg.Database.Driver))
		}
	}
	runs := history.NewStore(db, l)

	return &runtime{
		cfg:    cfg,
		logger: l,
		store:  store,
		runs:   runs,
	}, nil
}

// withExport builds the Metabase client and the export service.
func (r *runtime) withExport() error {
	client, err := metabase.NewClient(r.cfg.Metabase, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create metabase client: %w", err)
	}
	engine := reconcile.NewEngine(client, r.logger)
	reader := manifest.NewReader(r.cfg.Manifest.Path, r.store, r.logger)
	r.service = export.NewService(reader, engine, r.store, r.runs, r.cfg.Export, r.logger)
	return nil
}
