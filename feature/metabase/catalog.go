package metabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/utils"

	"go.uber.org/zap"
)

// syncComplete is the initial_sync_status of a fully introspected database.
const syncComplete = "complete"

// ResolveDatabase returns the id of the database with the given name, compared
// case-insensitively. Numeric names are returned as is. Concurrent lookups of the same
// name share one request.
func (c *Client) ResolveDatabase(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if id, err := strconv.Atoi(name); err == nil {
		return id, nil
	}

	v, err, _ := c.resolve.Do(strings.ToLower(name), func() (any, error) {
		var payload json.RawMessage
		if err := c.do(ctx, http.MethodGet, "/api/database", nil, &payload); err != nil {
			return 0, err
		}
		databases, err := decodeDatabases(payload)
		if err != nil {
			return 0, err
		}
		for _, db := range databases {
			if strings.EqualFold(stringValue(db["name"]), name) {
				return utils.ToInt(db["id"]), nil
			}
		}
		return 0, fmt.Errorf("%w: %s", reconcile.ErrDatabaseNotFound, name)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// ListTables returns every table of the database, hidden ones included, with nested fields.
func (c *Client) ListTables(ctx context.Context, databaseID int) ([]reconcile.CatalogTable, error) {
	var payload struct {
		Tables []rawObject `json:"tables"`
	}
	path := fmt.Sprintf("/api/database/%d/metadata?include_hidden=true", databaseID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}

	tables := make([]reconcile.CatalogTable, 0, len(payload.Tables))
	for _, raw := range payload.Tables {
		tables = append(tables, decodeTable(raw, databaseID))
	}
	c.logger.Debug("Listed Metabase tables", zap.Int("database_id", databaseID), zap.Int("tables", len(tables)))
	return tables, nil
}

// TriggerSync asks Metabase to rescan the database schema.
func (c *Client) TriggerSync(ctx context.Context, databaseID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/database/%d/sync_schema", databaseID), nil, nil)
}

// GetSyncStatus reads the initial sync status of the database.
func (c *Client) GetSyncStatus(ctx context.Context, databaseID int) (reconcile.SyncStatus, error) {
	var db rawObject
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/database/%d", databaseID), nil, &db); err != nil {
		return reconcile.SyncStatus{}, err
	}
	state := stringValue(db["initial_sync_status"])
	return reconcile.SyncStatus{Complete: state == syncComplete, State: state}, nil
}

// UpdateTable applies a table update.
func (c *Client) UpdateTable(ctx context.Context, tableID int, update reconcile.TableUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/table/%d", tableID), tableBody(update), nil)
}

// UpdateField applies a field update.
func (c *Client) UpdateField(ctx context.Context, fieldID int, update reconcile.FieldUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/field/%d", fieldID), fieldBody(update), nil)
}
