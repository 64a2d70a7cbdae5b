package reconcile_test

import (
	"testing"

	"dbt-metabase/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLookup(t *testing.T) {
	t.Run("Completeness", func(t *testing.T) {
		expected := map[string][]string{
			"PUBLIC.CUSTOMERS":     {"CUSTOMER_ID", "FIRST_NAME", "LAST_NAME", "FIRST_ORDER", "MOST_RECENT_ORDER", "NUMBER_OF_ORDERS", "CUSTOMER_LIFETIME_VALUE"},
			"PUBLIC.ORDERS":        {"ORDER_ID", "CUSTOMER_ID", "ORDER_DATE", "STATUS", "AMOUNT", "CREDIT_CARD_AMOUNT", "COUPON_AMOUNT", "BANK_TRANSFER_AMOUNT", "GIFT_CARD_AMOUNT"},
			"PUBLIC.TRANSACTIONS":  {"PAYMENT_ID", "PAYMENT_METHOD", "ORDER_ID", "AMOUNT"},
			"PUBLIC.RAW_CUSTOMERS": {"ID", "FIRST_NAME", "LAST_NAME"},
			"PUBLIC.RAW_ORDERS":    {"ID", "USER_ID", "ORDER_DATE", "STATUS"},
			"PUBLIC.RAW_PAYMENTS":  {"ID", "ORDER_ID", "PAYMENT_METHOD", "AMOUNT"},
			"PUBLIC.STG_CUSTOMERS": {"CUSTOMER_ID", "FIRST_NAME", "LAST_NAME"},
			"PUBLIC.STG_ORDERS":    {"ORDER_ID", "STATUS", "ORDER_DATE", "CUSTOMER_ID", "SKU_ID"},
			"PUBLIC.STG_PAYMENTS":  {"PAYMENT_ID", "PAYMENT_METHOD", "ORDER_ID", "AMOUNT"},
			"INVENTORY.SKUS":       {"SKU_ID", "PRODUCT"},
		}

		lookup, warnings := reconcile.BuildLookup(jaffleDatabaseID, jaffleShopListing())
		assert.Empty(t, warnings)
		assert.Equal(t, jaffleDatabaseID, lookup.DatabaseID)

		keys := make([]string, 0, len(expected))
		for k := range expected {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, keys, lookup.Keys())

		for key, fields := range expected {
			entry, ok := lookup.Table(key)
			require.True(t, ok, "table: %s", key)
			assert.ElementsMatch(t, fields, entry.FieldKeys(), "table: %s", key)
		}
	})

	t.Run("NormalizesKeys", func(t *testing.T) {
		listing := []reconcile.CatalogTable{catalogTable(1, "public", "Customers", "Customer_Id")}
		lookup, _ := reconcile.BuildLookup(jaffleDatabaseID, listing)

		entry, ok := lookup.Table("PUBLIC.CUSTOMERS")
		require.True(t, ok)
		field, ok := entry.Field("CUSTOMER_ID")
		require.True(t, ok)
		assert.Equal(t, 100, field.ID)
	})

	t.Run("TableCollisionKeepsFirst", func(t *testing.T) {
		listing := []reconcile.CatalogTable{
			catalogTable(1, "public", "customers", "id"),
			catalogTable(2, "PUBLIC", "CUSTOMERS", "id"),
		}
		lookup, warnings := reconcile.BuildLookup(jaffleDatabaseID, listing)

		assert.Equal(t, 1, lookup.Len())
		entry, _ := lookup.Table("PUBLIC.CUSTOMERS")
		assert.Equal(t, 1, entry.Table.ID)
		require.Len(t, warnings, 1)
		assert.Equal(t, reconcile.WarningKeyCollision, warnings[0].Kind)
		assert.Equal(t, "PUBLIC.CUSTOMERS", warnings[0].Key)
	})

	t.Run("FieldCollisionKeepsFirst", func(t *testing.T) {
		listing := []reconcile.CatalogTable{catalogTable(1, "public", "customers", "id", "ID")}
		lookup, warnings := reconcile.BuildLookup(jaffleDatabaseID, listing)

		entry, _ := lookup.Table("PUBLIC.CUSTOMERS")
		field, _ := entry.Field("ID")
		assert.Equal(t, 100, field.ID)
		assert.Equal(t, []string{"ID"}, entry.FieldKeys())
		require.Len(t, entry.Shadowed(), 1)
		assert.Equal(t, 101, entry.Shadowed()[0].ID)
		require.Len(t, warnings, 1)
		assert.Equal(t, "PUBLIC.CUSTOMERS.ID", warnings[0].Key)
	})

	t.Run("IgnoresOtherDatabases", func(t *testing.T) {
		other := catalogTable(11, "public", "customers", "id")
		other.DatabaseID = 3
		lookup, _ := reconcile.BuildLookup(jaffleDatabaseID, []reconcile.CatalogTable{other})
		assert.Equal(t, 0, lookup.Len())
	})
}
