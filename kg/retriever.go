// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package kg

import (
	"context"
	"fmt"

	"github.com/poiesic/hypograph/core"
)

// tripleMatchQuery matches any relation where one of the lookup entities
// appears (case-insensitive substring) in the subject or object's name,
// title or abstract, or in the relation type.
const tripleMatchQuery = `
MATCH (s)-[r]->(o)
WHERE any(entity IN $entities WHERE
    ((s.name IS NOT NULL AND toLower(s.name) CONTAINS toLower(entity)))
    OR ((s.title IS NOT NULL AND toLower(s.title) CONTAINS toLower(entity)))
    OR ((s.abstract IS NOT NULL AND toLower(s.abstract) CONTAINS toLower(entity)))
    OR ((o.name IS NOT NULL AND toLower(o.name) CONTAINS toLower(entity)))
    OR ((o.title IS NOT NULL AND toLower(o.title) CONTAINS toLower(entity)))
    OR ((o.abstract IS NOT NULL AND toLower(o.abstract) CONTAINS toLower(entity)))
    OR (toLower(type(r)) CONTAINS toLower(entity))
)
RETURN
    coalesce(s.name, s.title, '') AS subject,
    type(r) AS relation,
    coalesce(o.name, o.title, '') AS object,
    coalesce(r.pmids, []) AS supporting_pmids
LIMIT $limit`

// LookupTriples is the pipeline's best-effort triple lookup: any failure
// (backend down, query error) is logged and an empty slice returned. It
// never errors to the caller.
func (c *Client) LookupTriples(ctx context.Context, entities []string, limit int) []core.KGTriple {
	if !c.Connected() {
		return []core.KGTriple{}
	}
	triples, err := c.QueryTriples(ctx, entities, limit)
	if err != nil {
		c.logger.Warn("graph lookup failed, continuing without triples", "err", err)
		return []core.KGTriple{}
	}
	return triples
}

// QueryTriples returns relation triples matching the lookup entities.
// Duplicate triples are passed through as the backend returns them.
func (c *Client) QueryTriples(ctx context.Context, entities []string, limit int) ([]core.KGTriple, error) {
	if limit < 1 {
		limit = 10
	}

	records, err := c.run(ctx, tripleMatchQuery, map[string]any{
		"entities": entities,
		"limit":    limit,
	})
	if err != nil {
		return nil, err
	}

	triples := make([]core.KGTriple, 0, len(records))
	for _, record := range records {
		pmids := stringsOf(record["supporting_pmids"])
		if pmids == nil {
			pmids = []string{}
		}
		triples = append(triples, core.KGTriple{
			Subject:         stringOf(record["subject"]),
			Relation:        stringOf(record["relation"]),
			Object:          stringOf(record["object"]),
			SupportingPMIDs: pmids,
		})
	}
	return triples, nil
}

// Entities lists graph nodes, optionally filtered by label and by a
// case-insensitive search term against name or title.
func (c *Client) Entities(ctx context.Context, entityType, searchTerm string, limit int) ([]core.GraphEntity, error) {
	if limit < 1 {
		limit = 20
	}

	params := map[string]any{"limit": limit}
	var conditions []string
	if entityType != "" {
		conditions = append(conditions, "any(l IN labels(n) WHERE toLower(l) = toLower($label))")
		params["label"] = entityType
	}
	if searchTerm != "" {
		conditions = append(conditions,
			"((n.name IS NOT NULL AND toLower(n.name) CONTAINS toLower($term)) OR (n.title IS NOT NULL AND toLower(n.title) CONTAINS toLower($term)))")
		params["term"] = searchTerm
	}

	cypher := "MATCH (n)\n"
	for i, cond := range conditions {
		if i == 0 {
			cypher += "WHERE " + cond + "\n"
		} else {
			cypher += "AND " + cond + "\n"
		}
	}
	cypher += "RETURN labels(n) AS labels, coalesce(n.name, n.title, '') AS label_value, properties(n) AS properties\nLIMIT $limit"

	records, err := c.run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	entities := make([]core.GraphEntity, 0, len(records))
	for _, record := range records {
		props, _ := record["properties"].(map[string]any)
		entities = append(entities, core.GraphEntity{
			Labels:     stringsOf(record["labels"]),
			LabelValue: stringOf(record["label_value"]),
			Properties: props,
		})
	}
	return entities, nil
}

// Relations lists the relationship types present in the graph.
func (c *Client) Relations(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = 20
	}

	records, err := c.run(ctx,
		"CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType LIMIT $limit",
		map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	relations := make([]string, 0, len(records))
	for _, record := range records {
		if rel := stringOf(record["relationshipType"]); rel != "" {
			relations = append(relations, rel)
		}
	}
	return relations, nil
}

// Neighborhood holds the subgraph around a central entity.
type Neighborhood struct {
	Center        any   `json:"center"`
	Nodes         []any `json:"nodes"`
	Relationships []any `json:"relationships"`
}

// EntityNeighborhood returns the nodes and relationships within hops of the
// entity, matched by exact name, title or label (case-insensitive). Hops is
// clamped to 1..3; traversal depth is never caller-unbounded.
func (c *Client) EntityNeighborhood(ctx context.Context, entity string, hops, limit int) (*Neighborhood, error) {
	if hops < 1 {
		hops = 1
	}
	if hops > 3 {
		hops = 3
	}
	if limit < 1 {
		limit = 50
	}

	// Hop count cannot be parameterized in a variable-length pattern, so it
	// is interpolated after clamping.
	cypher := fmt.Sprintf(`
MATCH (c)
WHERE (c.name IS NOT NULL AND toLower(c.name) = toLower($entity))
   OR (c.title IS NOT NULL AND toLower(c.title) = toLower($entity))
   OR (toLower($entity) IN [x IN labels(c) | toLower(x)])
WITH c LIMIT 1
OPTIONAL MATCH path = (c)-[*1..%d]-(n)
WITH c, collect(DISTINCT n) AS nodes, collect(DISTINCT last(relationships(path))) AS rels
RETURN c AS center, nodes[..%d] AS nodes, rels[..%d] AS relationships`, hops, limit, limit)

	records, err := c.run(ctx, cypher, map[string]any{"entity": entity})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Neighborhood{Nodes: []any{}, Relationships: []any{}}, nil
	}

	record := records[0]
	nodes, _ := record["nodes"].([]any)
	rels, _ := record["relationships"].([]any)
	if nodes == nil {
		nodes = []any{}
	}
	if rels == nil {
		rels = []any{}
	}
	return &Neighborhood{
		Center:        record["center"],
		Nodes:         nodes,
		Relationships: rels,
	}, nil
}

// Paths returns shortest paths between two entities, each flattened to
// {nodes, relationships}. Path length is clamped to 1..5.
func (c *Client) Paths(ctx context.Context, entity1, entity2 string, maxLength, limit int) ([]any, error) {
	if maxLength < 1 {
		maxLength = 1
	}
	if maxLength > 5 {
		maxLength = 5
	}
	if limit < 1 {
		limit = 5
	}

	cypher := fmt.Sprintf(`
MATCH p = shortestPath((a)-[*..%d]-(b))
WHERE
    ((a.name IS NOT NULL AND toLower(a.name) = toLower($e1)) OR (a.title IS NOT NULL AND toLower(a.title) = toLower($e1)) OR (toLower($e1) IN [x IN labels(a) | toLower(x)]))
    AND
    ((b.name IS NOT NULL AND toLower(b.name) = toLower($e2)) OR (b.title IS NOT NULL AND toLower(b.title) = toLower($e2)) OR (toLower($e2) IN [x IN labels(b) | toLower(x)]))
RETURN p LIMIT $limit`, maxLength)

	records, err := c.run(ctx, cypher, map[string]any{
		"e1":    entity1,
		"e2":    entity2,
		"limit": limit,
	})
	if err != nil {
		return nil, err
	}

	paths := make([]any, 0, len(records))
	for _, record := range records {
		paths = append(paths, record["p"])
	}
	return paths, nil
}

// Statistics summarizes the graph contents.
func (c *Client) Statistics(ctx context.Context) (*core.GraphStats, error) {
	nodeRecords, err := c.run(ctx, "MATCH (n) RETURN count(n) AS count", nil)
	if err != nil {
		return nil, err
	}
	relRecords, err := c.run(ctx, "MATCH ()-[r]-() RETURN count(r) AS count", nil)
	if err != nil {
		return nil, err
	}
	labelRecords, err := c.run(ctx, "CALL db.labels() YIELD label RETURN label LIMIT 100", nil)
	if err != nil {
		return nil, err
	}
	typeRecords, err := c.run(ctx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType LIMIT 100", nil)
	if err != nil {
		return nil, err
	}

	stats := &core.GraphStats{
		Labels:            make([]string, 0, len(labelRecords)),
		RelationshipTypes: make([]string, 0, len(typeRecords)),
	}
	if len(nodeRecords) > 0 {
		stats.NodeCount = intOf(nodeRecords[0]["count"])
	}
	if len(relRecords) > 0 {
		stats.RelationshipCount = intOf(relRecords[0]["count"])
	}
	for _, record := range labelRecords {
		if label := stringOf(record["label"]); label != "" {
			stats.Labels = append(stats.Labels, label)
		}
	}
	for _, record := range typeRecords {
		if relType := stringOf(record["relationshipType"]); relType != "" {
			stats.RelationshipTypes = append(stats.RelationshipTypes, relType)
		}
	}
	return stats, nil
}

// RunCypher executes a guarded raw read query, returning records as plain
// maps. Write keywords are rejected before reaching the backend.
func (c *Client) RunCypher(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	if err := GuardReadOnly(cypher); err != nil {
		return nil, err
	}
	return c.run(ctx, cypher, params)
}
