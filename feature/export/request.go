package export

import (
	"time"

	"dbt-metabase/core/reconcile"
)

// Request overrides the default export options. Omitted fields keep their default.
type Request struct {
	MetabaseDatabase        *string  `json:"metabase_database,omitempty"`
	SkipSources             *bool    `json:"skip_sources,omitempty"`
	SyncTimeoutSeconds      *int     `json:"sync_timeout_seconds,omitempty"`
	OrderFields             *bool    `json:"order_fields,omitempty"`
	MarkNonDBTTablesAsCruft *bool    `json:"mark_non_dbt_tables_as_cruft,omitempty"`
	DryRun                  *bool    `json:"dry_run,omitempty"`
	IncludeSchemas          []string `json:"include_schemas,omitempty"`
	ExcludeSchemas          []string `json:"exclude_schemas,omitempty"`
}

// Apply returns opts with the fields set in the request replaced.
func (r Request) Apply(opts reconcile.ExportOptions) reconcile.ExportOptions {
	if r.MetabaseDatabase != nil {
		opts.MetabaseDatabase = *r.MetabaseDatabase
	}
	if r.SkipSources != nil {
		opts.SkipSources = *r.SkipSources
	}
	if r.SyncTimeoutSeconds != nil {
		opts.SyncTimeout = time.Duration(*r.SyncTimeoutSeconds) * time.Second
	}
	if r.OrderFields != nil {
		opts.OrderFields = *r.OrderFields
	}
	if r.MarkNonDBTTablesAsCruft != nil {
		opts.MarkNonDBTTablesAsCruft = *r.MarkNonDBTTablesAsCruft
	}
	if r.DryRun != nil {
		opts.DryRun = *r.DryRun
	}
	if r.IncludeSchemas != nil {
		opts.IncludeSchemas = r.IncludeSchemas
	}
	if r.ExcludeSchemas != nil {
		opts.ExcludeSchemas = r.ExcludeSchemas
	}
	return opts
}

// RequestFrom renders options in request form, with every field set.
func RequestFrom(opts reconcile.ExportOptions) Request {
	timeout := int(opts.SyncTimeout / time.Second)
	return Request{
		MetabaseDatabase:        &opts.MetabaseDatabase,
		SkipSources:             &opts.SkipSources,
		SyncTimeoutSeconds:      &timeout,
		OrderFields:             &opts.OrderFields,
		MarkNonDBTTablesAsCruft: &opts.MarkNonDBTTablesAsCruft,
		DryRun:                  &opts.DryRun,
		IncludeSchemas:          opts.IncludeSchemas,
		ExcludeSchemas:          opts.ExcludeSchemas,
	}
}
