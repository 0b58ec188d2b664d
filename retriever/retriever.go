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


package retriever

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/hypograph/ai"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/storage"
)

// snippetLimit bounds evidence snippets returned to callers.
const snippetLimit = 300

// Retriever answers free-text queries with ranked literature evidence from
// the paper index. It is the pipeline's only hard dependency: callers must
// check Ready before Retrieve, and any backend failure here is fatal for the
// whole request.
type Retriever struct {
	papers   storage.PaperRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new evidence retriever.
func NewRetriever(papers storage.PaperRepository, provider ai.Provider, opts ...Option) (*Retriever, error) {
	if papers == nil {
		return nil, ErrPaperRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		papers:   papers,
		embedder: provider.Embedder(),
		logger:   slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Ready reports whether the index holds any papers. Retrieve must not be
// called when Ready is false; the orchestration rejects the request first.
func (r *Retriever) Ready(ctx context.Context) bool {
	count, err := r.papers.Count(ctx)
	if err != nil {
		r.logger.Error("error checking index readiness", "err", err)
		return false
	}
	return count > 0
}

// Retrieve returns up to k evidence items for the query, ranked by cosine
// similarity (higher = more similar), plus the number of candidates dropped
// for missing or sentinel PMIDs. Duplicate PMIDs keep the earliest-ranked
// occurrence. Retrieval against an unchanged index is deterministic.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]core.EvidenceItem, int, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, 0, fmt.Errorf("%w: embedding query: %w", core.ErrInternal, err)
	}

	matches, err := r.papers.FindSimilar(ctx, vector, k)
	if err != nil {
		r.logger.Error("error querying for similar papers", "err", err)
		return nil, 0, fmt.Errorf("%w: similarity search: %w", core.ErrInternal, err)
	}

	evidence := make([]core.EvidenceItem, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	skipped := 0

	for _, match := range matches {
		record := match.Record
		if !core.IsUsablePMID(record.PMID) {
			skipped++
			continue
		}
		if seen[record.PMID] {
			continue
		}
		seen[record.PMID] = true

		title := record.Title
		if title == "" {
			title = "No title"
		}
		source := record.Source
		if source == "" {
			source = "pubmed"
		}

		evidence = append(evidence, core.EvidenceItem{
			PMID:    record.PMID,
			Title:   title,
			Snippet: truncateSnippet(record.Document(), snippetLimit),
			Score:   float64(match.Score),
			Source:  source,
		})
	}

	r.logger.Debug("retrieved evidence",
		"query", query,
		"candidates", len(matches),
		"returned", len(evidence),
		"skipped", skipped)

	return evidence, skipped, nil
}

// truncateSnippet bounds text to limit characters, appending an ellipsis
// marker when truncation happened.
func truncateSnippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
