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

import "github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

// convertValue flattens driver graph types into plain JSON-friendly values.
// Nodes become {labels, properties}, relationships {type, properties}, paths
// {nodes, relationships}. Everything else passes through as-is.
func convertValue(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return convertNode(v)
	case dbtype.Relationship:
		return convertRelationship(v)
	case dbtype.Path:
		nodes := make([]any, len(v.Nodes))
		for i, n := range v.Nodes {
			nodes[i] = convertNode(n)
		}
		rels := make([]any, len(v.Relationships))
		for i, r := range v.Relationships {
			rels[i] = convertRelationship(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = convertValue(item)
		}
		return out
	default:
		return value
	}
}

func convertNode(n dbtype.Node) map[string]any {
	return map[string]any{
		"labels":     n.Labels,
		"properties": n.Props,
	}
}

func convertRelationship(r dbtype.Relationship) map[string]any {
	return map[string]any{
		"type":       r.Type,
		"properties": r.Props,
	}
}

// stringOf returns v as a string when it already is one, else "".
func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// stringsOf converts a driver list value into a string slice, dropping nils
// and non-string entries.
func stringsOf(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// intOf converts a driver integer value to int64.
func intOf(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
