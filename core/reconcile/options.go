package reconcile

import (
	"strings"
	"time"
)

// ExportOptions controls a single export run.
// The zero value (plus a database) is conservative: nothing destructive is enabled.
type ExportOptions struct {
	// MetabaseDatabase is the catalog database name, or its numeric id.
	MetabaseDatabase string `json:"metabase_database"`

	// SkipSources excludes dbt sources from matching.
	SkipSources bool `json:"skip_sources"`

	// SyncTimeout bounds the wait for the catalog's schema sync. Zero disables waiting.
	SyncTimeout time.Duration `json:"sync_timeout"`

	// OrderFields aligns catalog field positions with the manifest column order.
	OrderFields bool `json:"order_fields"`

	// MarkNonDBTTablesAsCruft hides catalog tables that no manifest model describes.
	MarkNonDBTTablesAsCruft bool `json:"mark_non_dbt_tables_as_cruft"`

	// DryRun plans the updates without applying them.
	DryRun bool `json:"dry_run"`

	// IncludeSchemas restricts the run to these schemas. Empty means all schemas.
	IncludeSchemas []string `json:"include_schemas,omitempty"`

	// ExcludeSchemas removes these schemas from the run.
	ExcludeSchemas []string `json:"exclude_schemas,omitempty"`
}

// Validate rejects malformed or contradictory options before any network call.
func (o ExportOptions) Validate() error {
	if strings.TrimSpace(o.MetabaseDatabase) == "" {
		return &OptionError{Option: "metabase_database", Message: "is required"}
	}
	if o.SyncTimeout < 0 {
		return &OptionError{Option: "sync_timeout", Message: "must not be negative"}
	}

	excluded := schemaSet(o.ExcludeSchemas)
	for _, schema := range o.IncludeSchemas {
		if _, ok := excluded[NormalizeKey(schema)]; ok {
			return &OptionError{
				Option:  "include_schemas",
				Message: "schema " + schema + " is both included and excluded",
			}
		}
	}

	return nil
}

// schemaInScope reports whether a schema passes the include/exclude filters.
func (o ExportOptions) schemaInScope(schema string) bool {
	key := NormalizeKey(schema)
	if len(o.IncludeSchemas) > 0 {
		if _, ok := schemaSet(o.IncludeSchemas)[key]; !ok {
			return false
		}
	}
	_, excluded := schemaSet(o.ExcludeSchemas)[key]
	return !excluded
}

// FilterModels returns the models the run should match, in manifest order.
func (o ExportOptions) FilterModels(models []Model) []Model {
	filtered := make([]Model, 0, len(models))
	for _, m := range models {
		if o.SkipSources && m.Group == GroupSources {
			continue
		}
		if !o.schemaInScope(m.Schema) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func schemaSet(schemas []string) map[string]struct{} {
	set := make(map[string]struct{}, len(schemas))
	for _, s := range schemas {
		set[NormalizeKey(s)] = struct{}{}
	}
	return set
}
