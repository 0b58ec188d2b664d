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
	"fmt"
	"strings"

	"github.com/poiesic/hypograph/core"
)

// writeKeywords are substrings that disqualify a raw cypher query from the
// read-only escape hatch.
var writeKeywords = []string{"DROP", "DELETE", "REMOVE", "CREATE", "MERGE", "SET", "DETACH"}

// GuardReadOnly rejects raw queries containing write or destructive keywords.
// The check is a deliberately over-broad substring match on the upper-cased
// query: "CREATED_BY" trips it too. Callers needing such identifiers must use
// the structured endpoints instead.
func GuardReadOnly(query string) error {
	upper := strings.ToUpper(query)
	for _, keyword := range writeKeywords {
		if strings.Contains(upper, keyword) {
			return fmt.Errorf("%w: query contains write keyword %q, only read queries allowed",
				core.ErrForbiddenQuery, keyword)
		}
	}
	return nil
}
