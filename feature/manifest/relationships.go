package manifest

import (
	"strings"

	"dbt-metabase/core/reconcile"
)

// foreignKey is a column reference inferred from a relationships test.
type foreignKey struct {
	Table string
	Field string
}

// collectRelationships maps node unique id -> lowercase column name -> referenced column,
// from the relationships tests of the manifest. The referenced table is schema-qualified.
func collectRelationships(raw rawManifest) map[string]map[string]foreignKey {
	out := make(map[string]map[string]foreignKey)

	for _, test := range raw.Nodes {
		if test.ResourceType != resourceTest || test.TestMetadata == nil {
			continue
		}
		if test.TestMetadata.Name != relationshipsTest {
			continue
		}

		field, _ := test.TestMetadata.Kwargs["field"].(string)
		column := test.ColumnName
		if column == "" {
			column, _ = test.TestMetadata.Kwargs["column_name"].(string)
		}
		if field == "" || column == "" || test.AttachedNode == "" {
			continue
		}

		targetID := relationshipTarget(test)
		target, ok := lookupNode(raw, targetID)
		if !ok {
			continue
		}

		if out[test.AttachedNode] == nil {
			out[test.AttachedNode] = make(map[string]foreignKey)
		}
		out[test.AttachedNode][strings.ToLower(column)] = foreignKey{
			Table: reconcile.QualifiedKey(target.Schema, physicalName(target)),
			Field: field,
		}
	}

	return out
}

// relationshipTarget returns the node a relationships test points to: the dependency
// that is not the node the test is attached to.
func relationshipTarget(test rawNode) string {
	for _, dep := range test.DependsOn.Nodes {
		if dep != test.AttachedNode {
			return dep
		}
	}
	return ""
}

func lookupNode(raw rawManifest, id string) (rawNode, bool) {
	if n, ok := raw.Nodes[id]; ok {
		return n, true
	}
	n, ok := raw.Sources[id]
	return n, ok
}

func physicalName(n rawNode) string {
	switch {
	case n.Identifier != "":
		return n.Identifier
	case n.Alias != "":
		return n.Alias
	default:
		return n.Name
	}
}
