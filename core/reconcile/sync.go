package reconcile

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// WaitForSync asks the catalog to rescan the database and polls at a fixed interval
// until the catalog is ready for the given models or the timeout elapses.
//
// The catalog is ready once its sync status is complete and its listing holds a table
// for every model and a field for every column. The status alone is not enough: it
// reports the first sync ever run and stays complete afterwards. The last listing read
// is returned so the caller does not have to fetch it again; it is nil when no listing
// was read.
//
// A zero timeout disables waiting: nothing is triggered or polled and the current
// listing is accepted as is. Timing out is not an error; ready is false and the caller
// proceeds with whatever the catalog reports.
func (e *Engine) WaitForSync(ctx context.Context, databaseID int, models []Model, timeout time.Duration) (bool, []CatalogTable, error) {
	if timeout <= 0 {
		return true, nil, nil
	}

	dbKey := strconv.Itoa(databaseID)
	if err := e.client.TriggerSync(ctx, databaseID); err != nil {
		return false, nil, unavailable(dbKey, "trigger_sync", err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	var listing []CatalogTable
	for attempt := 1; ; attempt++ {
		status, err := e.client.GetSyncStatus(ctx, databaseID)
		if err != nil {
			return false, listing, unavailable(dbKey, "get_sync_status", err)
		}
		if status.Complete {
			listing, err = e.client.ListTables(ctx, databaseID)
			if err != nil {
				return false, nil, unavailable(dbKey, "list_tables", err)
			}
			lookup, _ := BuildLookup(databaseID, listing)
			missing := MissingKeys(Match(models, lookup))
			if len(missing) == 0 {
				e.logger.Debug("Catalog sync complete",
					zap.Int("database_id", databaseID),
					zap.Int("attempts", attempt),
				)
				return true, listing, nil
			}
			e.logger.Debug("Catalog sync complete but listing is behind the manifest",
				zap.Int("database_id", databaseID),
				zap.Int("attempts", attempt),
				zap.Strings("missing", head(missing, 10)),
				zap.Int("missing_count", len(missing)),
			)
		}

		select {
		case <-ctx.Done():
			return false, listing, ctx.Err()
		case <-deadline.C:
			return false, listing, nil
		case <-ticker.C:
		}
	}
}

// MissingKeys returns the keys of the tables and fields the pairs expect but the
// catalog does not list yet.
func MissingKeys(pairs []TablePair) []string {
	var missing []string
	for _, pair := range pairs {
		if !pair.Matched() {
			missing = append(missing, pair.Key)
			continue
		}
		for _, fp := range pair.Fields {
			if fp.Field == nil {
				missing = append(missing, fieldEntityKey(pair.Key, fp.Key))
			}
		}
	}
	return missing
}

func head(keys []string, n int) []string {
	if len(keys) > n {
		return keys[:n]
	}
	return keys
}
