package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/reconcile/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestWaitForSync(t *testing.T) {
	t.Run("ZeroTimeoutDoesNotPoll", func(t *testing.T) {
		client := new(mocks.CatalogClient)
		engine := reconcile.NewEngine(client, zap.NewNop())

		ready, listing, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), 0)
		assert.NoError(t, err)
		assert.True(t, ready)
		assert.Nil(t, listing)
		client.AssertNotCalled(t, "TriggerSync", mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "GetSyncStatus", mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "ListTables", mock.Anything, mock.Anything)
	})

	t.Run("CompletesAfterPolls", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = 3
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(time.Millisecond))

		ready, listing, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), 5*time.Second)
		assert.NoError(t, err)
		assert.True(t, ready)
		assert.Len(t, listing, len(jaffleShopListing()))
		assert.Equal(t, 1, catalog.triggers)
		assert.Equal(t, 3, catalog.polls)
		assert.Equal(t, 1, catalog.listCalls)
	})

	t.Run("CompleteStatusWaitsForNewTable", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = 0
		catalog.pending = []reconcile.CatalogTable{catalogTable(11, "PUBLIC", "NEW_MODEL", "ID")}
		catalog.pendingAfter = 2
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(time.Millisecond))
		models := append(jaffleShopModels(), model("public", "new_model", "id"))

		ready, listing, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, models, 5*time.Second)
		assert.NoError(t, err)
		assert.True(t, ready)
		assert.Equal(t, 3, catalog.listCalls)
		assert.Len(t, listing, len(jaffleShopListing())+1)
	})

	t.Run("CompleteStatusWaitsForNewColumn", func(t *testing.T) {
		catalog := newFakeCatalog(catalogTable(1, "PUBLIC", "CUSTOMERS", "CUSTOMER_ID"))
		catalog.completeAfter = 0
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(5*time.Millisecond))
		models := []reconcile.Model{model("public", "customers", "customer_id", "email")}

		ready, listing, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, models, 30*time.Millisecond)
		assert.NoError(t, err)
		assert.False(t, ready)
		assert.Len(t, listing, 1, "the last listing read is handed back")
		assert.Greater(t, catalog.listCalls, 1)
	})

	t.Run("ListingFails", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.listErr = errors.New("connection reset")
		engine := reconcile.NewEngine(catalog, zap.NewNop())

		_, _, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), time.Second)
		var unavailable *reconcile.CatalogUnavailableError
		assert.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "list_tables", unavailable.Operation)
	})

	t.Run("TimesOut", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.completeAfter = -1
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(5*time.Millisecond))

		ready, listing, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), 30*time.Millisecond)
		assert.NoError(t, err)
		assert.False(t, ready)
		assert.Nil(t, listing)
		assert.GreaterOrEqual(t, catalog.polls, 1)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.completeAfter = -1
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ready, _, err := engine.WaitForSync(ctx, jaffleDatabaseID, jaffleShopModels(), time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ready)
	})

	t.Run("TriggerFails", func(t *testing.T) {
		client := new(mocks.CatalogClient)
		client.On("TriggerSync", mock.Anything, jaffleDatabaseID).Return(errors.New("connection refused"))
		engine := reconcile.NewEngine(client, zap.NewNop())

		ready, _, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), time.Second)
		assert.False(t, ready)
		assert.True(t, reconcile.IsCatalogUnavailable(err))
		client.AssertExpectations(t)
	})

	t.Run("StatusFails", func(t *testing.T) {
		client := new(mocks.CatalogClient)
		client.On("TriggerSync", mock.Anything, jaffleDatabaseID).Return(nil)
		client.On("GetSyncStatus", mock.Anything, jaffleDatabaseID).Return(reconcile.SyncStatus{}, errors.New("502 bad gateway"))
		engine := reconcile.NewEngine(client, zap.NewNop())

		_, _, err := engine.WaitForSync(context.Background(), jaffleDatabaseID, jaffleShopModels(), time.Second)
		var unavailable *reconcile.CatalogUnavailableError
		assert.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "get_sync_status", unavailable.Operation)
	})
}

func TestMissingKeys(t *testing.T) {
	lookup, _ := reconcile.BuildLookup(jaffleDatabaseID, jaffleShopListing())

	tests := []struct {
		name   string
		models []reconcile.Model
		want   []string
	}{
		{"AllListed", jaffleShopModels(), nil},
		{"MissingTable", []reconcile.Model{model("public", "ghost", "id")}, []string{"PUBLIC.GHOST"}},
		{"MissingColumn", []reconcile.Model{model("public", "customers", "customer_id", "email")}, []string{"PUBLIC.CUSTOMERS.EMAIL"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile.MissingKeys(reconcile.Match(tt.models, lookup)))
		})
	}
}
