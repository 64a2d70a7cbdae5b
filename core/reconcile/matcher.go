package reconcile

// TablePair pairs a manifest model with its catalog table, if any.
type TablePair struct {
	// Key is the qualified table key of the model.
	Key string

	// Model is the manifest model.
	Model Model

	// Table is nil when the catalog has no table for the model.
	Table *TableEntry

	// Fields pairs every column of the model with its catalog field.
	// Empty when Table is nil.
	Fields []FieldPair
}

// Matched reports whether the model has a catalog table.
func (p TablePair) Matched() bool {
	return p.Table != nil
}

// FieldPair pairs a manifest column with its catalog field, if any.
type FieldPair struct {
	// Key is the field key of the column.
	Key string

	// Index is the position of the column in the model's column sequence.
	Index int

	// Column is the manifest column.
	Column Column

	// Field is nil when the catalog table lacks the column.
	Field *CatalogField
}

// Match resolves each model to zero or one catalog table, and each column of a
// matched model to zero or one catalog field, by normalized key equality.
func Match(models []Model, lookup *Lookup) []TablePair {
	pairs := make([]TablePair, 0, len(models))

	for _, model := range models {
		pair := TablePair{
			Key:   TableKey(model),
			Model: model,
		}

		entry, ok := lookup.Table(pair.Key)
		if !ok {
			pairs = append(pairs, pair)
			continue
		}
		pair.Table = entry

		pair.Fields = make([]FieldPair, 0, len(model.Columns))
		for i, column := range model.Columns {
			fp := FieldPair{
				Key:    FieldKey(column),
				Index:  i,
				Column: column,
			}
			if field, ok := entry.Field(fp.Key); ok {
				fp.Field = &field
			}
			pair.Fields = append(pair.Fields, fp)
		}

		pairs = append(pairs, pair)
	}

	return pairs
}
