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
	"testing"

	"github.com/poiesic/hypograph/core"
	"github.com/stretchr/testify/assert"
)

func TestGuardReadOnlyAcceptsReadQueries(t *testing.T) {
	queries := []string{
		"MATCH (n) RETURN n",
		"MATCH (s)-[r]->(o) RETURN s, r, o LIMIT 10",
		"CALL db.labels() YIELD label RETURN label",
		"RETURN 1",
	}
	for _, q := range queries {
		assert.NoError(t, GuardReadOnly(q), q)
	}
}

func TestGuardReadOnlyRejectsWriteKeywords(t *testing.T) {
	queries := []string{
		"CREATE (n:Entity {name: 'x'})",
		"MATCH (n) DELETE n",
		"MATCH (n) DETACH DELETE n",
		"MERGE (n:Entity {name: 'x'})",
		"MATCH (n) SET n.flag = true",
		"MATCH (n) REMOVE n.flag",
		"DROP INDEX idx",
		"match (n) delete n", // case-insensitive
	}
	for _, q := range queries {
		err := GuardReadOnly(q)
		assert.ErrorIs(t, err, core.ErrForbiddenQuery, q)
	}
}

func TestGuardReadOnlyIsOverBroadBySubstring(t *testing.T) {
	// The lexical filter also trips on identifiers that merely contain a
	// write keyword. That trade-off is accepted: structured endpoints cover
	// those cases.
	err := GuardReadOnly("MATCH (a)-[:CREATED_BY]->(b) RETURN a, b")
	assert.ErrorIs(t, err, core.ErrForbiddenQuery)
}
