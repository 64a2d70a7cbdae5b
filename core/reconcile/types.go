package reconcile

// Group distinguishes the dbt node types a Model can come from.
type Group string

const (
	// GroupNodes is a dbt model (a node built by dbt).
	GroupNodes Group = "nodes"
	// GroupSources is a dbt source (a table dbt reads but does not build).
	GroupSources Group = "sources"
)

// Visibility values understood by the catalog.
const (
	// VisibilityNormal is the manifest value that makes a table visible again.
	// Tables store visibility as null when visible; fields store "normal".
	VisibilityNormal = "normal"
	// VisibilityHidden hides a table from end users.
	VisibilityHidden = "hidden"
	// VisibilityTechnical hides a table as technical data.
	VisibilityTechnical = "technical"
	// VisibilityCruft hides a table that is not described by the manifest.
	VisibilityCruft = "cruft"
)

// FieldOrderCustom is the table field order under which per-field positions apply.
const FieldOrderCustom = "custom"

// SemanticTypeFK is the semantic type assigned to fields with a foreign-key target.
const SemanticTypeFK = "type/FK"

// Model is a manifest-side table (a dbt model or source).
type Model struct {
	// Database is the warehouse database the model is materialized in.
	Database string `json:"database"`

	// Schema is the warehouse schema the model is materialized in.
	Schema string `json:"schema"`

	// Group is the dbt node type.
	Group Group `json:"group"`

	// Name is the dbt name of the model.
	Name string `json:"name"`

	// Alias is the physical table name. It is the join key into the catalog.
	// When empty, Name is used.
	Alias string `json:"alias"`

	// Description is copied verbatim to the catalog.
	Description string `json:"description"`

	// VisibilityType is the declared table visibility. Empty means undeclared.
	VisibilityType string `json:"visibility_type,omitempty"`

	// Columns is the ordered column list of the model.
	Columns []Column `json:"columns"`
}

// TableName returns the physical table name of the model.
func (m Model) TableName() string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}

// Column is a manifest-side field.
type Column struct {
	// Name is the column name.
	Name string `json:"name"`

	// Description is copied verbatim to the catalog.
	Description string `json:"description"`

	// VisibilityType is the declared field visibility. Empty means undeclared.
	VisibilityType string `json:"visibility_type,omitempty"`

	// SemanticType is the declared catalog semantic type (e.g. "type/PK").
	SemanticType string `json:"semantic_type,omitempty"`

	// FKTargetTable is the table referenced by this column, optionally schema-qualified.
	FKTargetTable string `json:"fk_target_table,omitempty"`

	// FKTargetField is the column referenced in FKTargetTable.
	FKTargetField string `json:"fk_target_field,omitempty"`
}

// CatalogTable is a catalog-side table as returned by the catalog API client.
type CatalogTable struct {
	ID         int    `json:"id"`
	DatabaseID int    `json:"db_id"`
	Schema     string `json:"schema"`
	Name       string `json:"name"`

	// Kind is "table" or "view".
	Kind        string `json:"kind"`
	Description string `json:"description"`

	// VisibilityType is nil when the table is visible, otherwise the reason it is hidden.
	VisibilityType *string `json:"visibility_type"`

	// FieldOrder is how the catalog sorts the fields: "database", "alphabetical", "custom" or "smart".
	FieldOrder string `json:"field_order"`

	// Fields is the field listing in catalog order.
	Fields []CatalogField `json:"fields"`
}

// CatalogField is a catalog-side field.
type CatalogField struct {
	ID              int    `json:"id"`
	TableID         int    `json:"table_id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	VisibilityType  string `json:"visibility_type"`
	SemanticType    string `json:"semantic_type"`
	FKTargetFieldID *int   `json:"fk_target_field_id"`
	Position        int    `json:"position"`
}

// SyncStatus reports the state of the catalog's own schema introspection.
type SyncStatus struct {
	// Complete is true once the catalog listing reflects the current schema.
	Complete bool

	// State is the raw status reported by the catalog, for logging.
	State string
}

// TableUpdate is the set of table attributes to change in one call.
// Nil pointers are left untouched.
type TableUpdate struct {
	Description *string `json:"description,omitempty"`

	// VisibilityType is applied only when SetVisibility is true.
	// A nil value with SetVisibility makes the table visible.
	VisibilityType *string `json:"visibility_type,omitempty"`
	SetVisibility  bool    `json:"-"`

	// FieldOrder switches the table to custom field order when positions are written.
	FieldOrder *string `json:"field_order,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u TableUpdate) IsEmpty() bool {
	return u.Description == nil && !u.SetVisibility && u.FieldOrder == nil
}

// FieldUpdate is the set of field attributes to change in one call.
// Nil pointers are left untouched.
type FieldUpdate struct {
	Description     *string `json:"description,omitempty"`
	VisibilityType  *string `json:"visibility_type,omitempty"`
	SemanticType    *string `json:"semantic_type,omitempty"`
	FKTargetFieldID *int    `json:"fk_target_field_id,omitempty"`
	Position        *int    `json:"position,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u FieldUpdate) IsEmpty() bool {
	return u.Description == nil && u.VisibilityType == nil && u.SemanticType == nil &&
		u.FKTargetFieldID == nil && u.Position == nil
}

// ActionType represents the type of catalog mutation.
type ActionType string

const (
	// ActionUpdateTable changes table description, visibility and/or field order.
	ActionUpdateTable ActionType = "update_table"
	// ActionUpdateField changes field attributes and/or position.
	ActionUpdateField ActionType = "update_field"
	// ActionMarkCruft hides a table that no manifest model describes.
	ActionMarkCruft ActionType = "mark_cruft"
)

// Action represents one planned catalog update call.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the qualified key of the entity (table key, or table key plus field key).
	Key string `json:"key"`

	// TableID is set for table actions.
	TableID int `json:"table_id,omitempty"`

	// FieldID is set for field actions.
	FieldID int `json:"field_id,omitempty"`

	// Changes lists the attributes changed by this action, e.g. "position: 2 -> 0".
	Changes []string `json:"changes"`

	// Table holds the table update. Only populated for table and cruft actions.
	Table *TableUpdate `json:"-"`

	// Field holds the field update. Only populated for ActionUpdateField.
	Field *FieldUpdate `json:"-"`
}

// ReconcilePlan contains the planned actions and everything learned while planning.
type ReconcilePlan struct {
	// DatabaseID is the catalog database the plan targets.
	DatabaseID int `json:"database_id"`

	// Actions contains planned updates in deterministic order.
	Actions []Action `json:"actions"`

	// Warnings contains the non-fatal findings of the planning pass.
	Warnings []Warning `json:"warnings"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// Models is the number of manifest models considered.
	Models int `json:"models"`

	// MatchedModels counts models with a catalog table.
	MatchedModels int `json:"matched_models"`

	// UnmatchedModels counts models without a catalog table.
	UnmatchedModels int `json:"unmatched_models"`

	// UnmatchedColumns counts columns of matched models without a catalog field.
	UnmatchedColumns int `json:"unmatched_columns"`

	// TableUpdates counts planned table updates.
	TableUpdates int `json:"table_updates"`

	// FieldUpdates counts planned field updates.
	FieldUpdates int `json:"field_updates"`

	// CruftMarks counts planned cruft markings.
	CruftMarks int `json:"cruft_marks"`
}
