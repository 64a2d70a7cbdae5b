// Package export runs export passes end to end and exposes them over HTTP.
//
// A run reads the dbt manifest, hands the models to the reconcile engine, uploads a JSON report
// to object storage when a report bucket is configured, and records the run in the history
// store. Report upload and history failures are logged but never fail the run itself.
//
// # Routes
//
//   - POST /export            run one export; the JSON body overrides the configured defaults
//   - GET  /export/defaults   the configured defaults
//
// # Status Codes
//
// Invalid options map to 400, an unknown database to 404, an unreachable catalog to 502.
// Runs where some update calls failed still return 200 with status "partial".
package export
