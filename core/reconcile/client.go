package reconcile

import "context"

// CatalogClient defines the catalog API operations the engine depends on.
// Implementations convert raw payloads into typed records before returning them,
// so the engine never inspects untyped data.
type CatalogClient interface {
	// ResolveDatabase returns the catalog id of the database with the given name.
	ResolveDatabase(ctx context.Context, name string) (int, error)

	// ListTables returns all tables, with nested fields, of the given database.
	// Hidden tables are included.
	ListTables(ctx context.Context, databaseID int) ([]CatalogTable, error)

	// TriggerSync asks the catalog to rescan the schema of the database.
	TriggerSync(ctx context.Context, databaseID int) error

	// GetSyncStatus reports whether the catalog finished introspecting the database.
	GetSyncStatus(ctx context.Context, databaseID int) (SyncStatus, error)

	// UpdateTable applies a table update.
	UpdateTable(ctx context.Context, tableID int, update TableUpdate) error

	// UpdateField applies a field update.
	UpdateField(ctx context.Context, fieldID int, update FieldUpdate) error
}
