package metabase

import (
	"encoding/json"
	"fmt"

	"dbt-metabase/core/reconcile"
	"dbt-metabase/core/utils"
)

// rawObject is an untyped API object. It never leaves this package.
type rawObject = map[string]any

// decodeTable converts a raw table of the metadata payload into a typed catalog table.
func decodeTable(raw rawObject, databaseID int) reconcile.CatalogTable {
	table := reconcile.CatalogTable{
		ID:             utils.ToInt(raw["id"]),
		DatabaseID:     databaseID,
		Schema:         stringValue(raw["schema"]),
		Name:           stringValue(raw["name"]),
		Kind:           "table",
		Description:    stringValue(raw["description"]),
		VisibilityType: optionalString(raw["visibility_type"]),
		FieldOrder:     stringValue(raw["field_order"]),
	}
	if dbID, ok := raw["db_id"]; ok && dbID != nil {
		table.DatabaseID = utils.ToInt(dbID)
	}
	if kind := stringValue(raw["kind"]); kind != "" {
		table.Kind = kind
	}

	fields, _ := raw["fields"].([]any)
	table.Fields = make([]reconcile.CatalogField, 0, len(fields))
	for _, f := range fields {
		rawField, ok := f.(rawObject)
		if !ok {
			continue
		}
		table.Fields = append(table.Fields, decodeField(rawField, table.ID))
	}
	return table
}

// decodeField converts a raw field into a typed catalog field.
func decodeField(raw rawObject, tableID int) reconcile.CatalogField {
	field := reconcile.CatalogField{
		ID:              utils.ToInt(raw["id"]),
		TableID:         tableID,
		Name:            stringValue(raw["name"]),
		Description:     stringValue(raw["description"]),
		VisibilityType:  stringValue(raw["visibility_type"]),
		SemanticType:    stringValue(raw["semantic_type"]),
		FKTargetFieldID: optionalInt(raw["fk_target_field_id"]),
		Position:        utils.ToInt(raw["position"]),
	}
	if id, ok := raw["table_id"]; ok && id != nil {
		field.TableID = utils.ToInt(id)
	}
	return field
}

// decodeDatabases accepts both the paginated ({"data": [...]}) and the legacy (bare array)
// shape of the database listing.
func decodeDatabases(payload json.RawMessage) ([]rawObject, error) {
	var paged struct {
		Data []rawObject `json:"data"`
	}
	if err := json.Unmarshal(payload, &paged); err == nil && paged.Data != nil {
		return paged.Data, nil
	}

	var list []rawObject
	if err := json.Unmarshal(payload, &list); err != nil {
		return nil, fmt.Errorf("decode database listing: %w", err)
	}
	return list, nil
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	return utils.ToString(v)
}

func optionalString(v any) *string {
	if v == nil {
		return nil
	}
	s := utils.ToString(v)
	return &s
}

func optionalInt(v any) *int {
	if v == nil {
		return nil
	}
	i := utils.ToInt(v)
	return &i
}

// tableBody builds the PUT /api/table payload. A visibility reset is sent as JSON null.
func tableBody(update reconcile.TableUpdate) rawObject {
	body := rawObject{}
	if update.Description != nil {
		body["description"] = *update.Description
	}
	if update.SetVisibility {
		if update.VisibilityType == nil {
			body["visibility_type"] = nil
		} else {
			body["visibility_type"] = *update.VisibilityType
		}
	}
	if update.FieldOrder != nil {
		body["field_order"] = *update.FieldOrder
	}
	return body
}

// fieldBody builds the PUT /api/field payload.
func fieldBody(update reconcile.FieldUpdate) rawObject {
	body := rawObject{}
	if update.Description != nil {
		body["description"] = *update.Description
	}
	if update.VisibilityType != nil {
		body["visibility_type"] = *update.VisibilityType
	}
	if update.SemanticType != nil {
		body["semantic_type"] = *update.SemanticType
	}
	if update.FKTargetFieldID != nil {
		body["fk_target_field_id"] = *update.FKTargetFieldID
	}
	if update.Position != nil {
		body["position"] = *update.Position
	}
	return body
}
