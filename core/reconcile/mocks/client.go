package mocks

import (
	"context"

	"dbt-metabase/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// CatalogClient is a mock implementation of reconcile.CatalogClient
type CatalogClient struct {
	mock.Mock
}

func (m *CatalogClient) ResolveDatabase(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *CatalogClient) ListTables(ctx context.Context, databaseID int) ([]reconcile.CatalogTable, error) {
	args := m.Called(ctx, databaseID)
	if tables, ok := args.Get(0).([]reconcile.CatalogTable); ok {
		return tables, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogClient) TriggerSync(ctx context.Context, databaseID int) error {
	args := m.Called(ctx, databaseID)
	return args.Error(0)
}

func (m *CatalogClient) GetSyncStatus(ctx context.Context, databaseID int) (reconcile.SyncStatus, error) {
	args := m.Called(ctx, databaseID)
	return args.Get(0).(reconcile.SyncStatus), args.Error(1)
}

func (m *CatalogClient) UpdateTable(ctx context.Context, tableID int, update reconcile.TableUpdate) error {
	args := m.Called(ctx, tableID, update)
	return args.Error(0)
}

func (m *CatalogClient) UpdateField(ctx context.Context, fieldID int, update reconcile.FieldUpdate) error {
	args := m.Called(ctx, fieldID, update)
	return args.Error(0)
}
