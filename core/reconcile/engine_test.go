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
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExport(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliesPlan", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = 1
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(time.Millisecond))

		summary, err := engine.Export(ctx, jaffleShopModels(), reconcile.ExportOptions{
			MetabaseDatabase: "dbtmetabase",
			SkipSources:      true,
			SyncTimeout:      time.Second,
			OrderFields:      true,
		})
		require.NoError(t, err)
		assert.NoError(t, summary.Err())
		assert.True(t, summary.SyncComplete)
		assert.Equal(t, jaffleDatabaseID, summary.DatabaseID)
		assert.Equal(t, summary.Planned, summary.Updated)
		assert.Zero(t, summary.MarkedCruft)

		assert.Equal(t, "One row per customer", catalog.table(1).Description)
		assert.Equal(t, reconcile.VisibilityTechnical, *catalog.table(7).VisibilityType)
		assert.Empty(t, catalog.table(4).Description, "skipped source must stay untouched")
	})

	t.Run("SecondRunIsNoOp", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		engine := reconcile.NewEngine(catalog, zap.NewNop())
		opts := reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", OrderFields: true, MarkNonDBTTablesAsCruft: true}

		_, err := engine.Export(ctx, jaffleShopModels(), opts)
		require.NoError(t, err)
		calls := catalog.calls()
		require.NotZero(t, calls)

		summary, err := engine.Export(ctx, jaffleShopModels(), opts)
		require.NoError(t, err)
		assert.Zero(t, summary.Planned)
		assert.Equal(t, calls, catalog.calls())
	})

	t.Run("MarkNonDBTTablesAsCruft", func(t *testing.T) {
		catalog := newFakeCatalog(
			reconcile.CatalogTable{ID: 1, DatabaseID: jaffleDatabaseID, Schema: "PUBLIC", Name: "DBT_TABLE", Kind: "table"},
			reconcile.CatalogTable{ID: 2, DatabaseID: jaffleDatabaseID, Schema: "PUBLIC", Name: "NON_DBT_TABLE", Kind: "table"},
		)
		engine := reconcile.NewEngine(catalog, zap.NewNop())
		models := []reconcile.Model{model("public", "dbt_table")}

		_, err := engine.Export(ctx, models, reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase"})
		require.NoError(t, err)
		assert.Nil(t, catalog.table(1).VisibilityType)
		assert.Nil(t, catalog.table(2).VisibilityType)

		summary, err := engine.Export(ctx, models, reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", MarkNonDBTTablesAsCruft: true})
		require.NoError(t, err)
		assert.Equal(t, 1, summary.MarkedCruft)
		assert.Nil(t, catalog.table(1).VisibilityType)
		require.NotNil(t, catalog.table(2).VisibilityType)
		assert.Equal(t, reconcile.VisibilityCruft, *catalog.table(2).VisibilityType)
	})

	t.Run("StaleCatalogIsNotFatal", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = -1
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(5*time.Millisecond))

		summary, err := engine.Export(ctx, jaffleShopModels(), reconcile.ExportOptions{
			MetabaseDatabase: "dbtmetabase",
			SyncTimeout:      20 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.False(t, summary.SyncComplete)
		require.NotEmpty(t, summary.Warnings)
		assert.Equal(t, reconcile.WarningStaleCatalog, summary.Warnings[0].Kind)
		assert.NotZero(t, summary.Updated)
	})

	t.Run("CompleteStatusWaitsForListing", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = 0
		catalog.pending = []reconcile.CatalogTable{catalogTable(11, "PUBLIC", "NEW_MODEL", "ID")}
		catalog.pendingAfter = 2
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(time.Millisecond))

		fresh := model("public", "new_model", "id")
		fresh.Description = "Built by the last dbt run"
		summary, err := engine.Export(ctx, append(jaffleShopModels(), fresh), reconcile.ExportOptions{
			MetabaseDatabase: "dbtmetabase",
			SyncTimeout:      5 * time.Second,
		})
		require.NoError(t, err)
		assert.True(t, summary.SyncComplete)
		assert.Zero(t, summary.Skipped)
		assert.Equal(t, 3, catalog.listCalls, "the ready listing is reused for planning")
		assert.Equal(t, "Built by the last dbt run", catalog.table(11).Description)
	})

	t.Run("CompleteStatusWithMissingTableTimesOut", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.completeAfter = 0
		engine := reconcile.NewEngine(catalog, zap.NewNop(), reconcile.WithPollInterval(5*time.Millisecond))

		summary, err := engine.Export(ctx, append(jaffleShopModels(), model("public", "new_model", "id")), reconcile.ExportOptions{
			MetabaseDatabase: "dbtmetabase",
			SyncTimeout:      30 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.False(t, summary.SyncComplete)
		require.NotEmpty(t, summary.Warnings)
		assert.Equal(t, reconcile.WarningStaleCatalog, summary.Warnings[0].Kind)
		assert.Equal(t, 1, summary.Skipped)
		assert.NotZero(t, summary.Updated)
	})

	t.Run("FailuresDoNotStopTheRun", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		catalog.failTables[1] = errors.New("500 internal server error")
		engine := reconcile.NewEngine(catalog, zap.NewNop())

		summary, err := engine.Export(ctx, jaffleShopModels(), reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase"})
		require.NoError(t, err)
		require.Len(t, summary.Failures, 1)
		assert.True(t, reconcile.IsCatalogUnavailable(summary.Err()))

		var unavailable *reconcile.CatalogUnavailableError
		require.ErrorAs(t, summary.Failures[0], &unavailable)
		assert.Equal(t, "PUBLIC.CUSTOMERS", unavailable.Key)
		assert.Equal(t, "update_table", unavailable.Operation)

		assert.Equal(t, summary.Planned-1, summary.Updated)
		assert.Equal(t, "One row per order", catalog.table(2).Description)
	})

	t.Run("DryRun", func(t *testing.T) {
		catalog := newFakeCatalog(jaffleShopListing()...)
		engine := reconcile.NewEngine(catalog, zap.NewNop())

		summary, err := engine.Export(ctx, jaffleShopModels(), reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", DryRun: true})
		require.NoError(t, err)
		assert.True(t, summary.DryRun)
		assert.NotZero(t, summary.Planned)
		assert.Len(t, summary.Actions, summary.Planned)
		assert.Zero(t, summary.Updated)
		assert.Zero(t, catalog.calls())
	})

	t.Run("NumericDatabaseID", func(t *testing.T) {
		client := new(mocks.CatalogClient)
		client.On("ListTables", mock.Anything, jaffleDatabaseID).Return([]reconcile.CatalogTable{}, nil)
		engine := reconcile.NewEngine(client, zap.NewNop())

		summary, err := engine.Export(ctx, nil, reconcile.ExportOptions{MetabaseDatabase: "2"})
		require.NoError(t, err)
		assert.Equal(t, jaffleDatabaseID, summary.DatabaseID)
		client.AssertNotCalled(t, "ResolveDatabase", mock.Anything, mock.Anything)
		client.AssertExpectations(t)
	})

	t.Run("InvalidOptionsMakeNoCalls", func(t *testing.T) {
		client := new(mocks.CatalogClient)
		engine := reconcile.NewEngine(client, zap.NewNop())

		summary, err := engine.Export(ctx, jaffleShopModels(), reconcile.ExportOptions{SyncTimeout: -time.Second})
		assert.Nil(t, summary)
		assert.True(t, reconcile.IsInvalidOption(err))
		client.AssertNotCalled(t, "ResolveDatabase", mock.Anything, mock.Anything)
	})

	t.Run("UnknownDatabase", func(t *testing.T) {
		engine := reconcile.NewEngine(newFakeCatalog(), zap.NewNop())

		_, err := engine.Export(ctx, nil, reconcile.ExportOptions{MetabaseDatabase: "missing"})
		assert.ErrorIs(t, err, reconcile.ErrDatabaseNotFound)
		assert.False(t, reconcile.IsCatalogUnavailable(err))
	})

	t.Run("ListingFails", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.listErr = errors.New("timeout")
		engine := reconcile.NewEngine(catalog, zap.NewNop())

		summary, err := engine.Export(ctx, nil, reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase"})
		assert.Nil(t, summary)
		assert.True(t, reconcile.IsCatalogUnavailable(err))
	})
}

func TestExportAll(t *testing.T) {
	catalog := newFakeCatalog(jaffleShopListing()...)
	engine := reconcile.NewEngine(catalog, zap.NewNop())

	opts := []reconcile.ExportOptions{
		{MetabaseDatabase: "dbtmetabase", IncludeSchemas: []string{"public"}},
		{MetabaseDatabase: "missing"},
		{MetabaseDatabase: "dbtmetabase", IncludeSchemas: []string{"inventory"}},
	}
	summaries, err := engine.ExportAll(context.Background(), jaffleShopModels(), opts, 2)

	require.Len(t, summaries, 3)
	assert.ErrorIs(t, err, reconcile.ErrDatabaseNotFound)
	assert.NotNil(t, summaries[0])
	assert.Nil(t, summaries[1])
	assert.NotNil(t, summaries[2])
	assert.NotZero(t, summaries[0].Updated)
	assert.Zero(t, summaries[2].Planned)

	failed := reconcile.ExportErrors(err)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.Equal(t, "missing", failed[0].Database)
}
