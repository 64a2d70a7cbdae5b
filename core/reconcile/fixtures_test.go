package reconcile_test

import (
	"context"
	"errors"
	"sync"

	"dbt-metabase/core/reconcile"
)

const jaffleDatabaseID = 2

// fakeCatalog is an in-memory catalog that applies updates to its own listing,
// so successive exports observe the effect of earlier ones.
type fakeCatalog struct {
	mu sync.Mutex

	databases map[string]int
	tables    []reconcile.CatalogTable

	// completeAfter is the number of status polls before the sync reports completion.
	// Negative means never.
	completeAfter int

	// pending tables join the listing once it has been read pendingAfter times.
	// Negative pendingAfter means never.
	pending      []reconcile.CatalogTable
	pendingAfter int

	triggers   int
	polls      int
	listCalls  int
	tableCalls []int
	fieldCalls []int
	failTables map[int]error
	failFields map[int]error
	listErr    error
	triggerErr error
}

func newFakeCatalog(tables ...reconcile.CatalogTable) *fakeCatalog {
	return &fakeCatalog{
		databases:  map[string]int{"dbtmetabase": jaffleDatabaseID},
		tables:     tables,
		failTables: map[int]error{},
		failFields: map[int]error{},
	}
}

func (f *fakeCatalog) ResolveDatabase(_ context.Context, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.databases[name]
	if !ok {
		return 0, reconcile.ErrDatabaseNotFound
	}
	return id, nil
}

func (f *fakeCatalog) ListTables(_ context.Context, databaseID int) ([]reconcile.CatalogTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.pending) > 0 && f.pendingAfter >= 0 && f.listCalls >= f.pendingAfter {
		f.tables = append(f.tables, f.pending...)
		f.pending = nil
	}
	f.listCalls++
	listing := make([]reconcile.CatalogTable, 0, len(f.tables))
	for _, t := range f.tables {
		if t.DatabaseID != databaseID {
			continue
		}
		cp := t
		cp.Fields = append([]reconcile.CatalogField(nil), t.Fields...)
		listing = append(listing, cp)
	}
	return listing, nil
}

func (f *fakeCatalog) TriggerSync(_ context.Context, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers++
	return f.triggerErr
}

func (f *fakeCatalog) GetSyncStatus(_ context.Context, _ int) (reconcile.SyncStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.completeAfter >= 0 && f.polls >= f.completeAfter {
		return reconcile.SyncStatus{Complete: true, State: "complete"}, nil
	}
	return reconcile.SyncStatus{State: "incomplete"}, nil
}

func (f *fakeCatalog) UpdateTable(_ context.Context, tableID int, update reconcile.TableUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tableCalls = append(f.tableCalls, tableID)
	if err := f.failTables[tableID]; err != nil {
		return err
	}
	for i := range f.tables {
		t := &f.tables[i]
		if t.ID != tableID {
			continue
		}
		if update.Description != nil {
			t.Description = *update.Description
		}
		if update.SetVisibility {
			t.VisibilityType = update.VisibilityType
		}
		if update.FieldOrder != nil {
			t.FieldOrder = *update.FieldOrder
		}
		return nil
	}
	return errors.New("table not found")
}

func (f *fakeCatalog) UpdateField(_ context.Context, fieldID int, update reconcile.FieldUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fieldCalls = append(f.fieldCalls, fieldID)
	if err := f.failFields[fieldID]; err != nil {
		return err
	}
	for i := range f.tables {
		for j := range f.tables[i].Fields {
			field := &f.tables[i].Fields[j]
			if field.ID != fieldID {
				continue
			}
			if update.Description != nil {
				field.Description = *update.Description
			}
			if update.VisibilityType != nil {
				field.VisibilityType = *update.VisibilityType
			}
			if update.SemanticType != nil {
				field.SemanticType = *update.SemanticType
			}
			if update.FKTargetFieldID != nil {
				id := *update.FKTargetFieldID
				field.FKTargetFieldID = &id
			}
			if update.Position != nil {
				field.Position = *update.Position
			}
			return nil
		}
	}
	return errors.New("field not found")
}

func (f *fakeCatalog) table(id int) reconcile.CatalogTable {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tables {
		if t.ID == id {
			return t
		}
	}
	return reconcile.CatalogTable{}
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tableCalls) + len(f.fieldCalls)
}

// catalogTable builds a table whose fields are numbered from tableID*100 in listing order.
func catalogTable(tableID int, schema, name string, fields ...string) reconcile.CatalogTable {
	t := reconcile.CatalogTable{
		ID:         tableID,
		DatabaseID: jaffleDatabaseID,
		Schema:     schema,
		Name:       name,
		Kind:       "table",
	}
	for i, f := range fields {
		t.Fields = append(t.Fields, reconcile.CatalogField{
			ID:             tableID*100 + i,
			TableID:        tableID,
			Name:           f,
			VisibilityType: reconcile.VisibilityNormal,
			Position:       i,
		})
	}
	return t
}

func model(schema, name string, columns ...string) reconcile.Model {
	m := reconcile.Model{
		Database: "dbtmetabase",
		Schema:   schema,
		Group:    reconcile.GroupNodes,
		Name:     name,
		Alias:    name,
	}
	for _, c := range columns {
		m.Columns = append(m.Columns, reconcile.Column{Name: c})
	}
	return m
}

// jaffleShopListing mirrors the catalog of the jaffle shop sample project.
func jaffleShopListing() []reconcile.CatalogTable {
	return []reconcile.CatalogTable{
		catalogTable(1, "PUBLIC", "CUSTOMERS", "CUSTOMER_ID", "FIRST_NAME", "LAST_NAME", "FIRST_ORDER", "MOST_RECENT_ORDER", "NUMBER_OF_ORDERS", "CUSTOMER_LIFETIME_VALUE"),
		catalogTable(2, "PUBLIC", "ORDERS", "ORDER_ID", "CUSTOMER_ID", "ORDER_DATE", "STATUS", "AMOUNT", "CREDIT_CARD_AMOUNT", "COUPON_AMOUNT", "BANK_TRANSFER_AMOUNT", "GIFT_CARD_AMOUNT"),
		catalogTable(3, "PUBLIC", "TRANSACTIONS", "PAYMENT_ID", "PAYMENT_METHOD", "ORDER_ID", "AMOUNT"),
		catalogTable(4, "PUBLIC", "RAW_CUSTOMERS", "ID", "FIRST_NAME", "LAST_NAME"),
		catalogTable(5, "PUBLIC", "RAW_ORDERS", "ID", "USER_ID", "ORDER_DATE", "STATUS"),
		catalogTable(6, "PUBLIC", "RAW_PAYMENTS", "ID", "ORDER_ID", "PAYMENT_METHOD", "AMOUNT"),
		catalogTable(7, "PUBLIC", "STG_CUSTOMERS", "CUSTOMER_ID", "FIRST_NAME", "LAST_NAME"),
		catalogTable(8, "PUBLIC", "STG_ORDERS", "ORDER_ID", "STATUS", "ORDER_DATE", "CUSTOMER_ID", "SKU_ID"),
		catalogTable(9, "PUBLIC", "STG_PAYMENTS", "PAYMENT_ID", "PAYMENT_METHOD", "ORDER_ID", "AMOUNT"),
		catalogTable(10, "INVENTORY", "SKUS", "SKU_ID", "PRODUCT"),
	}
}

// jaffleShopModels describes part of the jaffle shop catalog, in lowercase as dbt writes it.
func jaffleShopModels() []reconcile.Model {
	customers := model("public", "customers", "customer_id", "first_name", "last_name")
	customers.Description = "One row per customer"
	customers.Columns[0].Description = "Primary key"
	customers.Columns[0].SemanticType = "type/PK"

	orders := model("public", "orders", "order_id", "customer_id", "amount")
	orders.Description = "One row per order"
	orders.Columns[1].FKTargetTable = "customers"
	orders.Columns[1].FKTargetField = "customer_id"

	stgCustomers := model("public", "stg_customers", "customer_id", "first_name", "last_name")
	stgCustomers.VisibilityType = reconcile.VisibilityTechnical

	raw := model("public", "raw_customers", "id", "first_name", "last_name")
	raw.Group = reconcile.GroupSources
	raw.Description = "Raw customer records"

	return []reconcile.Model{customers, orders, stgCustomers, raw}
}
