package reconcile_test

import (
	"testing"
	"time"

	"dbt-metabase/core/reconcile"

	"github.com/stretchr/testify/assert"
)

func TestExportOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    reconcile.ExportOptions
		wantErr bool
	}{
		{"Valid", reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", SyncTimeout: time.Second}, false},
		{"ZeroTimeout", reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase"}, false},
		{"MissingDatabase", reconcile.ExportOptions{MetabaseDatabase: "  "}, true},
		{"NegativeTimeout", reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", SyncTimeout: -time.Second}, true},
		{
			"IncludeExcludeOverlap",
			reconcile.ExportOptions{MetabaseDatabase: "dbtmetabase", IncludeSchemas: []string{"public"}, ExcludeSchemas: []string{"PUBLIC"}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, reconcile.IsInvalidOption(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFilterModels(t *testing.T) {
	models := jaffleShopModels()
	inventory := model("inventory", "skus", "sku_id")
	models = append(models, inventory)

	t.Run("NoFilters", func(t *testing.T) {
		opts := reconcile.ExportOptions{}
		assert.Len(t, opts.FilterModels(models), len(models))
	})

	t.Run("SkipSources", func(t *testing.T) {
		opts := reconcile.ExportOptions{SkipSources: true}
		for _, m := range opts.FilterModels(models) {
			assert.NotEqual(t, reconcile.GroupSources, m.Group)
		}
		assert.Len(t, opts.FilterModels(models), len(models)-1)
	})

	t.Run("IncludeSchemas", func(t *testing.T) {
		opts := reconcile.ExportOptions{IncludeSchemas: []string{"INVENTORY"}}
		filtered := opts.FilterModels(models)
		assert.Equal(t, []reconcile.Model{inventory}, filtered)
	})

	t.Run("ExcludeSchemas", func(t *testing.T) {
		opts := reconcile.ExportOptions{ExcludeSchemas: []string{"public"}}
		filtered := opts.FilterModels(models)
		assert.Equal(t, []reconcile.Model{inventory}, filtered)
	})
}
