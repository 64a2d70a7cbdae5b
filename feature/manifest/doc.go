// Package manifest reads dbt manifest.json artifacts into the models the export engine consumes.
//
// Models come from "nodes" entries with resource_type "model" and sources from the "sources"
// map. Disabled nodes and ephemeral models are skipped. Column order follows the order of the
// manifest's column map, which a plain map decode would lose.
//
// Metabase metadata is read from the node meta, either flat ("metabase.semantic_type") or
// nested ({"metabase": {"semantic_type": ...}}). Foreign keys are declared with fk_target_table
// and fk_target_field, or inferred from dbt relationships tests.
//
// A Reader loads the manifest from a local path or from object storage (s3://bucket/key).
package manifest
