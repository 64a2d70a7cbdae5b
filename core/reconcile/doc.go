// Package reconcile provides the engine that makes a BI catalog mirror the metadata
// declared in a dbt manifest.
//
// The engine reconciles two independently evolving namespaces: manifest models and
// columns on one side, catalog tables and fields on the other. It only ever writes the
// attributes the manifest governs (descriptions, visibility, semantic types, foreign-key
// targets and, on request, field order) and never deletes anything.
//
// # Architecture
//
// An export run consists of the following steps, always in this order:
//
// 1. Sync waiter: asks the catalog to rescan the database and polls its sync status at a
// fixed interval until it completes or the timeout elapses. Timing out is not fatal.
//
// 2. Lookup builder: snapshots the catalog listing into a map keyed by qualified table
// key (SCHEMA.TABLE, uppercased), each table holding its fields keyed by field key.
// Colliding keys keep the first-seen entry and produce a warning.
//
// 3. Matcher: pairs every model with zero or one table and every column of a matched
// model with zero or one field. Misses are expected and degrade to "no match".
//
// 4. Reconciler: plans the minimal set of update calls (PlanReconcile) and applies them
// one by one (ApplyPlan). Failed calls are reported, never retried. Catalog tables that no
// model describes are marked as cruft only when explicitly enabled.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(metabaseClient, logger)
//	summary, err := engine.Export(ctx, models, reconcile.ExportOptions{
//	    MetabaseDatabase: "warehouse",
//	    SkipSources:      true,
//	    SyncTimeout:      30 * time.Second,
//	})
//	if err != nil {
//	    return err // invalid options, or the catalog could not be read
//	}
//	if err := summary.Err(); err != nil {
//	    return err // some update calls failed
//	}
//
// # Catalog Clients
//
// The engine talks to the catalog through the CatalogClient interface. Implementations
// must return typed records; see feature/metabase for the Metabase REST implementation.
package reconcile
