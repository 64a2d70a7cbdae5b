// Package metabase implements the catalog client of the export engine over the Metabase REST API.
//
// The client converts every raw API payload into the typed records of package reconcile
// before returning it, so nothing downstream inspects untyped JSON.
//
// # Endpoints
//
//   - GET  /api/database                      resolve a database name to its id
//   - GET  /api/database/{id}/metadata        list tables with nested fields, hidden ones included
//   - POST /api/database/{id}/sync_schema     trigger a schema rescan
//   - GET  /api/database/{id}                 read initial_sync_status
//   - PUT  /api/table/{id}                    update a table
//   - PUT  /api/field/{id}                    update a field
//
// # Authentication
//
// When an API key is configured it is sent in the x-api-key header. Otherwise the client logs
// in with username and password (POST /api/session) on first use, sends the session id in the
// X-Metabase-Session header, and logs in again once if the session expires.
//
// # Errors
//
// Non-2xx responses are returned as *StatusError. The export engine wraps every client error
// into a reconcile.CatalogUnavailableError carrying the entity key and operation.
package metabase
