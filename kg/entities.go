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

import "strings"

const maxEntities = 6

// ExtractEntities derives lookup terms from a free-text query. This is a
// crude lexical pass, not NER: split on whitespace and commas, lowercase,
// keep tokens longer than 2 characters, dedupe keeping first occurrence,
// cap at 6. An empty query yields broad biomedical defaults; a query that
// tokenizes to nothing yields {"disease"}.
func ExtractEntities(query string) []string {
	if strings.TrimSpace(query) == "" {
		return []string{"disease", "treatment", "gene"}
	}

	fields := strings.Fields(strings.ReplaceAll(query, ",", " "))
	entities := make([]string, 0, maxEntities)
	seen := make(map[string]bool, maxEntities)

	for _, field := range fields {
		token := strings.ToLower(strings.TrimSpace(field))
		if len(token) <= 2 || seen[token] {
			continue
		}
		seen[token] = true
		entities = append(entities, token)
		if len(entities) >= maxEntities {
			break
		}
	}

	if len(entities) == 0 {
		return []string{"disease"}
	}
	return entities
}

// ExtendWithTitles widens an entity set with up to 3 tokens from each given
// title, deduping case-insensitively against the existing entities. Used by
// the pipeline to fold top evidence titles into the graph lookup.
func ExtendWithTitles(entities []string, titles []string) []string {
	out := make([]string, 0, len(entities))
	seen := make(map[string]bool, len(entities))
	for _, e := range entities {
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}

	for _, title := range titles {
		added := 0
		for _, field := range strings.Fields(strings.ReplaceAll(title, ",", " ")) {
			token := strings.ToLower(strings.TrimSpace(field))
			if len(token) <= 2 || seen[token] {
				continue
			}
			seen[token] = true
			out = append(out, token)
			added++
			if added >= 3 {
				break
			}
		}
	}
	return out
}
