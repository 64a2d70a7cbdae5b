package reconcile

import "fmt"

// TableEntry is a catalog table snapshot with its fields indexed by field key.
type TableEntry struct {
	// Key is the qualified table key.
	Key string

	// Table is the catalog table as listed.
	Table CatalogTable

	fields    map[string]CatalogField
	fieldKeys []string
	shadowed  []CatalogField
}

// Field returns the catalog field with the given field key.
func (e *TableEntry) Field(key string) (CatalogField, bool) {
	f, ok := e.fields[key]
	return f, ok
}

// FieldKeys returns the field keys in listing order.
func (e *TableEntry) FieldKeys() []string {
	return e.fieldKeys
}

// Shadowed returns the fields dropped by a field key collision, in listing order.
// They are unreachable by key but still occupy positions in the table.
func (e *TableEntry) Shadowed() []CatalogField {
	return e.shadowed
}

// Lookup is the keyed snapshot of one catalog database used for a single export run.
// It is built once and never refreshed mid-run.
type Lookup struct {
	// DatabaseID is the catalog database the snapshot was taken from.
	DatabaseID int

	tables map[string]*TableEntry
	keys   []string
}

// Table returns the entry for the given table key.
func (l *Lookup) Table(key string) (*TableEntry, bool) {
	e, ok := l.tables[key]
	return e, ok
}

// Keys returns the table keys in listing order.
func (l *Lookup) Keys() []string {
	return l.keys
}

// Len returns the number of tables in the snapshot.
func (l *Lookup) Len() int {
	return len(l.keys)
}

// BuildLookup groups a flat catalog listing by table key and, within each table, by field key.
// On a key collision the first-seen entry wins and a warning is reported.
// Tables of other databases are ignored. No network calls are made.
func BuildLookup(databaseID int, listing []CatalogTable) (*Lookup, []Warning) {
	lookup := &Lookup{
		DatabaseID: databaseID,
		tables:     make(map[string]*TableEntry, len(listing)),
		keys:       make([]string, 0, len(listing)),
	}
	var warnings []Warning

	for _, table := range listing {
		if table.DatabaseID != 0 && table.DatabaseID != databaseID {
			continue
		}

		key := CatalogTableKey(table)
		if existing, ok := lookup.tables[key]; ok {
			warnings = append(warnings, Warning{
				Kind:    WarningKeyCollision,
				Key:     key,
				Message: fmt.Sprintf("table %d collides with table %d, keeping table %d", table.ID, existing.Table.ID, existing.Table.ID),
			})
			continue
		}

		entry := &TableEntry{
			Key:       key,
			Table:     table,
			fields:    make(map[string]CatalogField, len(table.Fields)),
			fieldKeys: make([]string, 0, len(table.Fields)),
		}
		for _, field := range table.Fields {
			fk := NormalizeKey(field.Name)
			if existing, ok := entry.fields[fk]; ok {
				warnings = append(warnings, Warning{
					Kind:    WarningKeyCollision,
					Key:     fieldEntityKey(key, fk),
					Message: fmt.Sprintf("field %d collides with field %d, keeping field %d", field.ID, existing.ID, existing.ID),
				})
				entry.shadowed = append(entry.shadowed, field)
				continue
			}
			entry.fields[fk] = field
			entry.fieldKeys = append(entry.fieldKeys, fk)
		}

		lookup.tables[key] = entry
		lookup.keys = append(lookup.keys, key)
	}

	return lookup, warnings
}
