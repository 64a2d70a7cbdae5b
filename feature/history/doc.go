// Package history records export runs in the database and serves them over HTTP.
//
// Every export run, successful or not, is stored as one ExportRun row. The store works
// without a database connection: writes are dropped and reads report ErrDisabled, so the
// export path never depends on the history database being reachable.
//
// # Routes
//
//   - GET /runs        latest runs, newest first (?limit=N, default 20, max 200)
//   - GET /runs/:id    one run
package history
