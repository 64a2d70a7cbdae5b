package export

import (
	"time"

	"dbt-metabase/core/reconcile"
)

// Config holds the default export options and report settings.
type Config struct {
	// Database is the Metabase database name or id to export to.
	Database string `mapstructure:"database" default:""`
	// SkipSources excludes dbt sources.
	SkipSources bool `mapstructure:"skip_sources" default:"false"`
	// SyncTimeoutSeconds bounds the wait for the Metabase schema sync. 0 disables waiting.
	SyncTimeoutSeconds int `mapstructure:"sync_timeout_seconds" default:"30"`
	// OrderFields aligns Metabase field order with the manifest column order.
	OrderFields bool `mapstructure:"order_fields" default:"false"`
	// MarkNonDBTTablesAsCruft hides tables the manifest does not describe.
	MarkNonDBTTablesAsCruft bool `mapstructure:"mark_non_dbt_tables_as_cruft" default:"false"`
	// DryRun plans without applying.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// IncludeSchemas restricts exports to these schemas (comma separated in env).
	IncludeSchemas []string `mapstructure:"include_schemas" default:""`
	// ExcludeSchemas removes these schemas from exports (comma separated in env).
	ExcludeSchemas []string `mapstructure:"exclude_schemas" default:""`
	// Concurrency caps parallel exports when several databases are given. 0 means unlimited.
	Concurrency int `mapstructure:"concurrency" default:"2"`
	// ReportBucket receives one JSON report per run. Empty disables reports.
	ReportBucket string `mapstructure:"report_bucket" default:""`
	// ReportPrefix is the object key prefix of reports.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
}

// Options converts the configuration into engine options.
func (c Config) Options() reconcile.ExportOptions {
	return reconcile.ExportOptions{
		MetabaseDatabase:        c.Database,
		SkipSources:             c.SkipSources,
		SyncTimeout:             time.Duration(c.SyncTimeoutSeconds) * time.Second,
		OrderFields:             c.OrderFields,
		MarkNonDBTTablesAsCruft: c.MarkNonDBTTablesAsCruft,
		DryRun:                  c.DryRun,
		IncludeSchemas:          nonEmpty(c.IncludeSchemas),
		ExcludeSchemas:          nonEmpty(c.ExcludeSchemas),
	}
}

// nonEmpty drops blank entries left by comma separated env values.
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
