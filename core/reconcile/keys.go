package reconcile

import "strings"

// NormalizeKey is the single normalization applied to every name used for matching.
func NormalizeKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// QualifiedKey joins the non-empty normalized parts with dots,
// e.g. QualifiedKey("public", "Customers") == "PUBLIC.CUSTOMERS".
// Pass the database as first part for cross-database keys.
func QualifiedKey(parts ...string) string {
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := NormalizeKey(part); p != "" {
			normalized = append(normalized, p)
		}
	}
	return strings.Join(normalized, ".")
}

// TableKey returns the qualified key of a manifest model.
func TableKey(m Model) string {
	return QualifiedKey(m.Schema, m.TableName())
}

// CatalogTableKey returns the qualified key of a catalog table.
func CatalogTableKey(t CatalogTable) string {
	return QualifiedKey(t.Schema, t.Name)
}

// FieldKey returns the key of a manifest column.
func FieldKey(c Column) string {
	return NormalizeKey(c.Name)
}

// fieldEntityKey identifies a field in warnings and actions.
func fieldEntityKey(tableKey, fieldKey string) string {
	return tableKey + "." + fieldKey
}

// fkTargetKey resolves the table key of a foreign-key target.
// Unqualified targets are assumed to live in the schema of the referencing model.
// A leading database segment equal to the model's database is dropped, since lookups
// hold one database only; any other three-part target keeps its database and stays
// unresolved.
func fkTargetKey(m Model, target string) string {
	parts := strings.Split(target, ".")
	switch {
	case len(parts) == 1:
		return QualifiedKey(m.Schema, target)
	case len(parts) == 3 && NormalizeKey(parts[0]) == NormalizeKey(m.Database):
		return QualifiedKey(parts[1:]...)
	default:
		return QualifiedKey(parts...)
	}
}
