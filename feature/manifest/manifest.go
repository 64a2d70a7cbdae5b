package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"dbt-metabase/core/reconcile"
)

const (
	resourceModel = "model"
	resourceTest  = "test"

	materializedEphemeral = "ephemeral"
	relationshipsTest     = "relationships"

	// metaNamespace prefixes Metabase keys in node and column meta.
	metaNamespace = "metabase"
)

// rawManifest holds the parts of manifest.json the reader needs.
type rawManifest struct {
	Nodes   map[string]rawNode `json:"nodes"`
	Sources map[string]rawNode `json:"sources"`
}

type rawNode struct {
	UniqueID     string         `json:"unique_id"`
	ResourceType string         `json:"resource_type"`
	Database     string         `json:"database"`
	Schema       string         `json:"schema"`
	Name         string         `json:"name"`
	Alias        string         `json:"alias"`
	Identifier   string         `json:"identifier"`
	Description  string         `json:"description"`
	Meta         map[string]any `json:"meta"`
	Config       rawConfig      `json:"config"`
	Columns      orderedColumns `json:"columns"`

	// Test nodes only.
	ColumnName   string          `json:"column_name"`
	AttachedNode string          `json:"attached_node"`
	TestMetadata *rawTestMeta    `json:"test_metadata"`
	DependsOn    rawDependencies `json:"depends_on"`
}

type rawConfig struct {
	Enabled      *bool          `json:"enabled"`
	Materialized string         `json:"materialized"`
	Meta         map[string]any `json:"meta"`
}

type rawColumn struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Meta        map[string]any `json:"meta"`
}

type rawTestMeta struct {
	Name   string         `json:"name"`
	Kwargs map[string]any `json:"kwargs"`
}

type rawDependencies struct {
	Nodes []string `json:"nodes"`
}

// Parse decodes a manifest and returns its models followed by its sources,
// each sorted by dbt unique id.
func Parse(r io.Reader) ([]reconcile.Model, error) {
	var raw rawManifest
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	relationships := collectRelationships(raw)

	models := make([]reconcile.Model, 0, len(raw.Nodes)+len(raw.Sources))
	for _, id := range sortedIDs(raw.Nodes) {
		node := raw.Nodes[id]
		if node.ResourceType != resourceModel || !node.enabled() {
			continue
		}
		if node.Config.Materialized == materializedEphemeral {
			continue
		}
		m, err := node.toModel(id, reconcile.GroupNodes, node.Alias, relationships[id])
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	for _, id := range sortedIDs(raw.Sources) {
		node := raw.Sources[id]
		if !node.enabled() {
			continue
		}
		m, err := node.toModel(id, reconcile.GroupSources, node.Identifier, relationships[id])
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}

	return models, nil
}

func (n rawNode) enabled() bool {
	return n.Config.Enabled == nil || *n.Config.Enabled
}

func (n rawNode) toModel(id string, group reconcile.Group, alias string, fks map[string]foreignKey) (reconcile.Model, error) {
	if strings.TrimSpace(n.Name) == "" {
		return reconcile.Model{}, fmt.Errorf("manifest entry %s has no name", id)
	}

	m := reconcile.Model{
		Database:       n.Database,
		Schema:         n.Schema,
		Group:          group,
		Name:           n.Name,
		Alias:          alias,
		Description:    strings.TrimSpace(n.Description),
		VisibilityType: metaValue("visibility_type", n.Meta, n.Config.Meta),
		Columns:        make([]reconcile.Column, 0, len(n.Columns)),
	}

	for _, col := range n.Columns {
		c := reconcile.Column{
			Name:           col.Name,
			Description:    strings.TrimSpace(col.Description),
			VisibilityType: metaValue("visibility_type", col.Meta),
			SemanticType:   metaValue("semantic_type", col.Meta),
			FKTargetTable:  metaValue("fk_target_table", col.Meta),
			FKTargetField:  metaValue("fk_target_field", col.Meta),
		}
		if c.FKTargetTable == "" {
			if fk, ok := fks[strings.ToLower(col.Name)]; ok {
				c.FKTargetTable = fk.Table
				c.FKTargetField = fk.Field
			}
		}
		m.Columns = append(m.Columns, c)
	}

	return m, nil
}

// metaValue returns a Metabase meta key, flat ("metabase.key") or nested
// ({"metabase": {"key": ...}}), from the first meta map that declares it.
func metaValue(key string, metas ...map[string]any) string {
	for _, meta := range metas {
		if v, ok := meta[metaNamespace+"."+key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		if nested, ok := meta[metaNamespace].(map[string]any); ok {
			if v, ok := nested[key]; ok && v != nil {
				return fmt.Sprint(v)
			}
		}
	}
	return ""
}

func sortedIDs(nodes map[string]rawNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
