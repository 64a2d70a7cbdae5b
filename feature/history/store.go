package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dbt-metabase/core/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrDisabled is returned by reads when no database is configured.
	ErrDisabled = errors.New("export history is disabled")
	// ErrRunNotFound is returned when no run has the requested id.
	ErrRunNotFound = errors.New("export run not found")
)

const (
	// DefaultListLimit is the number of runs List returns for a non-positive limit.
	DefaultListLimit = 20
	// MaxListLimit caps the number of runs List returns.
	MaxListLimit = 200
)

// Store persists export runs. A Store with a nil database is a no-op.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a store. db may be nil.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Enabled reports whether runs are persisted.
func (s *Store) Enabled() bool {
	return s.db != nil
}

// Migrate creates or updates the export_runs table and verifies its columns.
func (s *Store) Migrate() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.AutoMigrate(&ExportRun{}); err != nil {
		return fmt.Errorf("failed to migrate export_runs: %w", err)
	}

	missing, err := database.MissingColumns(s.db, ExportRun{}.TableName(), columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("export_runs is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Save inserts a finished run.
func (s *Store) Save(ctx context.Context, run *ExportRun) error {
	if s.db == nil {
		s.logger.Debug("History disabled, run not recorded", zap.String("run_id", run.ID))
		return nil
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save export run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the latest runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]ExportRun, error) {
	if s.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var runs []ExportRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list export runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*ExportRun, error) {
	if s.db == nil {
		return nil, ErrDisabled
	}

	var run ExportRun
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export run %s: %w", id, err)
	}
	return &run, nil
}
