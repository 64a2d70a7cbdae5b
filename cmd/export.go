package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"dbt-metabase/core/config"
	"dbt-metabase/core/reconcile"
	"dbt-metabase/feature/export"
	"dbt-metabase/feature/history"

	"github.com/spf13/cobra"
)

var (
	// Flags for the export command
	exportDatabases      []string
	exportManifest       string
	exportDryRun         bool
	exportSkipSources    bool
	exportOrderFields    bool
	exportMarkCruft      bool
	exportSyncTimeout    time.Duration
	exportIncludeSchemas []string
	exportExcludeSchemas []string
)

// exportCmd pushes the manifest to one or more Metabase databases.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export dbt models to Metabase",
	Long: `Reads the dbt manifest and updates the Metabase data model of each given database.

Flags override the EXPORT_* configuration. The run summary is printed as JSON.
The command exits non-zero when a run fails or an update call fails.

Examples:
  # Preview the changes
  dbt-metabase export --database warehouse --dry-run

  # Apply, ordering fields and hiding tables dbt does not know
  dbt-metabase export --database warehouse --order-fields --mark-cruft

  # Two databases from a manifest in object storage
  dbt-metabase export --database warehouse --database replica --manifest s3://artifacts/manifest.json`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringSliceVarP(&exportDatabases, "database", "d", nil, "Metabase database name or id (repeatable)")
	f.StringVarP(&exportManifest, "manifest", "m", "", "Manifest path or s3://bucket/object URL")
	f.BoolVar(&exportDryRun, "dry-run", false, "Plan without applying")
	f.BoolVar(&exportSkipSources, "skip-sources", false, "Exclude dbt sources")
	f.BoolVar(&exportOrderFields, "order-fields", false, "Align Metabase field order with the manifest")
	f.BoolVar(&exportMarkCruft, "mark-cruft", false, "Hide in-scope tables the manifest does not describe")
	f.DurationVar(&exportSyncTimeout, "sync-timeout", 0, "Wait for the Metabase sync up to this long (0 disables)")
	f.StringSliceVar(&exportIncludeSchemas, "include-schemas", nil, "Only export these schemas")
	f.StringSliceVar(&exportExcludeSchemas, "exclude-schemas", nil, "Skip these schemas")

	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, func(cfg *config.Config) {
		if cmd.Flags().Changed("manifest") {
			cfg.Manifest.Path = exportManifest
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	if err := rt.withExport(); err != nil {
		return err
	}
	if err := rt.runs.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate history: %w", err)
	}

	base := overrideOptions(cmd, rt.service.Defaults())
	databases := exportDatabases
	if len(databases) == 0 {
		databases = []string{base.MetabaseDatabase}
	}

	var (
		results []*export.RunResult
		runErr  error
	)
	if len(databases) == 1 {
		base.MetabaseDatabase = databases[0]
		result, err := rt.service.Run(ctx, base)
		results, runErr = []*export.RunResult{result}, err
	} else {
		opts := make([]reconcile.ExportOptions, len(databases))
		for i, db := range databases {
			opts[i] = base
			opts[i].MetabaseDatabase = db
		}
		results, runErr = rt.service.RunAll(ctx, opts)
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	if err := out.Encode(results); err != nil {
		return err
	}

	if runErr != nil {
		return runErr
	}
	return failedRuns(results)
}

// overrideOptions applies the flags the user set explicitly.
func overrideOptions(cmd *cobra.Command, opts reconcile.ExportOptions) reconcile.ExportOptions {
	var req export.Request
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		req.DryRun = &exportDryRun
	}
	if flags.Changed("skip-sources") {
		req.SkipSources = &exportSkipSources
	}
	if flags.Changed("order-fields") {
		req.OrderFields = &exportOrderFields
	}
	if flags.Changed("mark-cruft") {
		req.MarkNonDBTTablesAsCruft = &exportMarkCruft
	}
	if flags.Changed("sync-timeout") {
		seconds := int(exportSyncTimeout / time.Second)
		req.SyncTimeoutSeconds = &seconds
	}
	if flags.Changed("include-schemas") {
		req.IncludeSchemas = exportIncludeSchemas
	}
	if flags.Changed("exclude-schemas") {
		req.ExcludeSchemas = exportExcludeSchemas
	}
	return req.Apply(opts)
}

// failedRuns reports runs that completed with failed update calls.
func failedRuns(results []*export.RunResult) error {
	var failed int
	for _, r := range results {
		if r != nil && r.Status != history.StatusSucceeded {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d export runs did not succeed", failed, len(results))
	}
	return nil
}
