package reconcile

import (
	"fmt"
	"slices"
	"sort"
)

// ModelKeys returns the set of table keys described by the manifest.
// This is the reverse image used to decide which catalog tables are cruft.
func ModelKeys(models []Model) map[string]struct{} {
	keys := make(map[string]struct{}, len(models))
	for _, m := range models {
		keys[TableKey(m)] = struct{}{}
	}
	return keys
}

// PlanReconcile computes the minimal set of catalog updates that aligns the matched
// catalog tables with the manifest. It does NOT execute anything; use ApplyPlan for that.
//
// modelKeys is the set of table keys of every manifest model, including models filtered
// out of this run, so that filtering never turns a described table into cruft.
func PlanReconcile(pairs []TablePair, lookup *Lookup, modelKeys map[string]struct{}, opts ExportOptions) *ReconcilePlan {
	plan := &ReconcilePlan{
		DatabaseID: lookup.DatabaseID,
		Actions:    []Action{},
		Warnings:   []Warning{},
	}
	pairs, collisions := dedupePairs(pairs)
	plan.Warnings = append(plan.Warnings, collisions...)
	plan.Summary.Models = len(pairs)

	for _, pair := range pairs {
		if !pair.Matched() {
			plan.Summary.UnmatchedModels++
			plan.Warnings = append(plan.Warnings, Warning{
				Kind:    WarningUnmatchedEntity,
				Key:     pair.Key,
				Message: fmt.Sprintf("model %s has no catalog table", pair.Model.Name),
			})
			continue
		}

		plan.Summary.MatchedModels++
		at := len(plan.Actions)
		planTable(plan, pair)
		if moved := planFields(plan, pair, lookup, opts); moved {
			planCustomOrder(plan, pair, at)
		}
	}

	if opts.MarkNonDBTTablesAsCruft {
		planCruft(plan, lookup, modelKeys, opts)
	}

	return plan
}

// dedupePairs keeps one model per table key. A dbt model wins over a source describing
// the same table; otherwise the first model in input order wins. Without this, two
// models would rewrite the same table on every run.
func dedupePairs(pairs []TablePair) ([]TablePair, []Warning) {
	out := make([]TablePair, 0, len(pairs))
	index := make(map[string]int, len(pairs))
	var warnings []Warning

	for _, pair := range pairs {
		i, seen := index[pair.Key]
		if !seen {
			index[pair.Key] = len(out)
			out = append(out, pair)
			continue
		}

		kept, dropped := out[i], pair
		if kept.Model.Group == GroupSources && pair.Model.Group != GroupSources {
			kept, dropped = pair, out[i]
			out[i] = pair
		}
		warnings = append(warnings, Warning{
			Kind:    WarningKeyCollision,
			Key:     pair.Key,
			Message: fmt.Sprintf("%s %s and %s %s describe the same table, using %s", kept.Model.Group, kept.Model.Name, dropped.Model.Group, dropped.Model.Name, kept.Model.Name),
		})
	}
	return out, warnings
}

// planTable plans description and visibility changes of a matched table.
func planTable(plan *ReconcilePlan, pair TablePair) {
	table := pair.Table.Table
	var (
		update  TableUpdate
		changes []string
	)

	// Blank manifest text never clobbers a description edited in the catalog.
	if desc := pair.Model.Description; desc != "" && desc != table.Description {
		update.Description = &desc
		changes = append(changes, "description")
	}

	if declared := pair.Model.VisibilityType; declared != "" {
		want := tableVisibility(declared)
		if !sameVisibility(want, table.VisibilityType) {
			update.VisibilityType = want
			update.SetVisibility = true
			changes = append(changes, fmt.Sprintf("visibility_type: %s -> %s", showVisibility(table.VisibilityType), showVisibility(want)))
		}
	}

	if update.IsEmpty() {
		return
	}

	plan.Actions = append(plan.Actions, Action{
		Type:    ActionUpdateTable,
		Key:     pair.Key,
		TableID: table.ID,
		Changes: changes,
		Table:   &update,
	})
	plan.Summary.TableUpdates++
}

// planFields plans field attribute and position changes of a matched table.
// It reports whether any position changes.
func planFields(plan *ReconcilePlan, pair TablePair, lookup *Lookup, opts ExportOptions) bool {
	// Duplicate column names resolve to the same field; the later column wins.
	desired := make(map[int]FieldPair, len(pair.Fields))
	order := make([]int, 0, len(pair.Fields))
	for _, fp := range pair.Fields {
		if fp.Field == nil {
			plan.Summary.UnmatchedColumns++
			plan.Warnings = append(plan.Warnings, Warning{
				Kind:    WarningUnmatchedEntity,
				Key:     fieldEntityKey(pair.Key, fp.Key),
				Message: fmt.Sprintf("column %s of model %s has no catalog field", fp.Column.Name, pair.Model.Name),
			})
			continue
		}
		if _, seen := desired[fp.Field.ID]; !seen {
			order = append(order, fp.Field.ID)
		}
		desired[fp.Field.ID] = fp
	}

	var (
		positions map[int]int
		moved     bool
	)
	if opts.OrderFields {
		positions = targetPositions(pair, desired)
	}

	for _, id := range order {
		fp := desired[id]
		update, changes := diffField(plan, pair, fp, lookup)
		if pos, ok := positions[id]; ok && pos != fp.Field.Position {
			update.Position = &pos
			changes = append(changes, fmt.Sprintf("position: %d -> %d", fp.Field.Position, pos))
			moved = true
		}
		appendFieldAction(plan, fieldEntityKey(pair.Key, fp.Key), *fp.Field, update, changes)
	}

	// Catalog fields the manifest does not know, shadowed ones included, are only moved
	// behind the known ones.
	for _, field := range unknownFields(pair, desired) {
		pos, ok := positions[field.ID]
		if !ok || pos == field.Position {
			continue
		}
		update := FieldUpdate{Position: &pos}
		changes := []string{fmt.Sprintf("position: %d -> %d", field.Position, pos)}
		appendFieldAction(plan, fieldEntityKey(pair.Key, NormalizeKey(field.Name)), field, update, changes)
		moved = true
	}
	return moved
}

// planCustomOrder makes sure the table uses custom field order, merging into the table
// action planned at index at when there is one. Positions are ignored otherwise.
func planCustomOrder(plan *ReconcilePlan, pair TablePair, at int) {
	table := pair.Table.Table
	if table.FieldOrder == FieldOrderCustom {
		return
	}
	custom := FieldOrderCustom
	change := fmt.Sprintf("field_order: %s -> %s", showFieldOrder(table.FieldOrder), custom)

	if at < len(plan.Actions) && plan.Actions[at].Type == ActionUpdateTable && plan.Actions[at].TableID == table.ID {
		plan.Actions[at].Table.FieldOrder = &custom
		plan.Actions[at].Changes = append(plan.Actions[at].Changes, change)
		return
	}

	plan.Actions = slices.Insert(plan.Actions, at, Action{
		Type:    ActionUpdateTable,
		Key:     pair.Key,
		TableID: table.ID,
		Changes: []string{change},
		Table:   &TableUpdate{FieldOrder: &custom},
	})
	plan.Summary.TableUpdates++
}

// diffField compares one manifest column with its catalog field.
func diffField(plan *ReconcilePlan, pair TablePair, fp FieldPair, lookup *Lookup) (FieldUpdate, []string) {
	var (
		update  FieldUpdate
		changes []string
		field   = *fp.Field
		column  = fp.Column
	)

	if desc := column.Description; desc != "" && desc != field.Description {
		update.Description = &desc
		changes = append(changes, "description")
	}

	if vis := column.VisibilityType; vis != "" && vis != field.VisibilityType {
		update.VisibilityType = &vis
		changes = append(changes, fmt.Sprintf("visibility_type: %s -> %s", field.VisibilityType, vis))
	}

	semantic := column.SemanticType
	if column.FKTargetTable != "" && column.FKTargetField != "" {
		if targetID, ok := resolveFKTarget(plan, pair, column, lookup); ok {
			if semantic == "" {
				semantic = SemanticTypeFK
			}
			if field.FKTargetFieldID == nil || *field.FKTargetFieldID != targetID {
				update.FKTargetFieldID = &targetID
				changes = append(changes, "fk_target_field_id")
			}
		}
	}
	if semantic != "" && semantic != field.SemanticType {
		update.SemanticType = &semantic
		changes = append(changes, fmt.Sprintf("semantic_type: %s -> %s", field.SemanticType, semantic))
	}

	return update, changes
}

// resolveFKTarget finds the catalog field id referenced by a column's foreign key.
func resolveFKTarget(plan *ReconcilePlan, pair TablePair, column Column, lookup *Lookup) (int, bool) {
	tableKey := fkTargetKey(pair.Model, column.FKTargetTable)
	fieldKey := NormalizeKey(column.FKTargetField)

	if entry, ok := lookup.Table(tableKey); ok {
		if target, ok := entry.Field(fieldKey); ok {
			return target.ID, true
		}
	}

	plan.Warnings = append(plan.Warnings, Warning{
		Kind:    WarningUnmatchedEntity,
		Key:     fieldEntityKey(pair.Key, FieldKey(column)),
		Message: fmt.Sprintf("foreign key target %s has no catalog field", fieldEntityKey(tableKey, fieldKey)),
	})
	return 0, false
}

// targetPositions assigns every field of the table its target ordinal: known fields take
// the position of their column, unknown fields follow all manifest positions in their
// current relative order, and fields shadowed by a key collision come last.
func targetPositions(pair TablePair, desired map[int]FieldPair) map[int]int {
	positions := make(map[int]int, len(pair.Table.FieldKeys())+len(pair.Table.Shadowed()))
	for id, fp := range desired {
		positions[id] = fp.Index
	}

	var unknown []CatalogField
	for _, key := range pair.Table.FieldKeys() {
		field, _ := pair.Table.Field(key)
		if _, known := desired[field.ID]; !known {
			unknown = append(unknown, field)
		}
	}
	byPosition := func(fields []CatalogField) {
		sort.SliceStable(fields, func(i, j int) bool {
			if fields[i].Position != fields[j].Position {
				return fields[i].Position < fields[j].Position
			}
			return fields[i].ID < fields[j].ID
		})
	}
	byPosition(unknown)
	shadowed := append([]CatalogField(nil), pair.Table.Shadowed()...)
	byPosition(shadowed)

	next := len(pair.Model.Columns)
	for _, field := range append(unknown, shadowed...) {
		positions[field.ID] = next
		next++
	}
	return positions
}

// unknownFields returns the catalog fields of the table no column maps to, in listing
// order, followed by the fields shadowed by a key collision.
func unknownFields(pair TablePair, desired map[int]FieldPair) []CatalogField {
	var fields []CatalogField
	for _, key := range pair.Table.FieldKeys() {
		field, _ := pair.Table.Field(key)
		if _, known := desired[field.ID]; !known {
			fields = append(fields, field)
		}
	}
	return append(fields, pair.Table.Shadowed()...)
}

func appendFieldAction(plan *ReconcilePlan, key string, field CatalogField, update FieldUpdate, changes []string) {
	if update.IsEmpty() {
		return
	}
	plan.Actions = append(plan.Actions, Action{
		Type:    ActionUpdateField,
		Key:     key,
		TableID: field.TableID,
		FieldID: field.ID,
		Changes: changes,
		Field:   &update,
	})
	plan.Summary.FieldUpdates++
}

// planCruft hides in-scope catalog tables that no manifest model describes.
func planCruft(plan *ReconcilePlan, lookup *Lookup, modelKeys map[string]struct{}, opts ExportOptions) {
	for _, key := range lookup.Keys() {
		if _, described := modelKeys[key]; described {
			continue
		}

		entry, _ := lookup.Table(key)
		if !opts.schemaInScope(entry.Table.Schema) {
			continue
		}
		if v := entry.Table.VisibilityType; v != nil && *v == VisibilityCruft {
			continue
		}

		cruft := VisibilityCruft
		plan.Actions = append(plan.Actions, Action{
			Type:    ActionMarkCruft,
			Key:     key,
			TableID: entry.Table.ID,
			Changes: []string{fmt.Sprintf("visibility_type: %s -> %s", showVisibility(entry.Table.VisibilityType), cruft)},
			Table:   &TableUpdate{VisibilityType: &cruft, SetVisibility: true},
		})
		plan.Summary.CruftMarks++
	}
}

// tableVisibility maps a declared manifest visibility onto the catalog's nullable value.
func tableVisibility(declared string) *string {
	if declared == VisibilityNormal {
		return nil
	}
	return &declared
}

func sameVisibility(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func showFieldOrder(order string) string {
	if order == "" {
		return "null"
	}
	return order
}

func showVisibility(v *string) string {
	if v == nil {
		return "null"
	}
	return *v
}
