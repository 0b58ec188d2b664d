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
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const mergeTripleQuery = `
MERGE (s:Entity {name: $subject})
MERGE (o:Entity {name: $object})
MERGE (s)-[r:RELATION {type: $relation}]->(o)`

// Importer loads relation triples from CSV exports into the graph.
type Importer struct {
	client *Client
	logger *slog.Logger
}

// NewImporter creates a triples importer backed by the given client.
func NewImporter(client *Client) (*Importer, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	return &Importer{
		client: client,
		logger: slog.Default().With("component", "kg-importer"),
	}, nil
}

// ImportCSV merges triples from a CSV with subject/relation/object columns
// (case-insensitive headers) plus an optional pmids column holding
// ';'-separated identifiers. Rows with an empty subject, relation or object
// are skipped. Entity nodes and RELATION edges are merged, so re-importing
// the same file is idempotent. Returns the number of triples imported.
func (im *Importer) ImportCSV(ctx context.Context, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	subjectCol, okSubject := cols["subject"]
	relationCol, okRelation := cols["relation"]
	objectCol, okObject := cols["object"]
	if !okSubject || !okRelation || !okObject {
		return 0, ErrMissingColumns
	}
	pmidsCol, hasPMIDs := cols["pmids"]

	imported := 0
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading csv row: %w", err)
		}

		subject := strings.TrimSpace(columnValue(row, subjectCol))
		relation := strings.TrimSpace(columnValue(row, relationCol))
		object := strings.TrimSpace(columnValue(row, objectCol))
		if subject == "" || relation == "" || object == "" {
			skipped++
			continue
		}

		cypher := mergeTripleQuery
		params := map[string]any{
			"subject":  subject,
			"relation": relation,
			"object":   object,
		}
		if hasPMIDs {
			if pmids := splitPMIDs(columnValue(row, pmidsCol)); len(pmids) > 0 {
				cypher += "\nSET r.pmids = $pmids"
				params["pmids"] = pmids
			}
		}

		if _, err := im.client.run(ctx, cypher, params); err != nil {
			return imported, fmt.Errorf("importing triple (%s, %s, %s): %w", subject, relation, object, err)
		}
		imported++
	}

	im.logger.Info("triples import complete", "imported", imported, "skipped", skipped)
	return imported, nil
}

func columnValue(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func splitPMIDs(field string) []string {
	var pmids []string
	for _, part := range strings.Split(field, ";") {
		if p := strings.TrimSpace(part); p != "" {
			pmids = append(pmids, p)
		}
	}
	return pmids
}
