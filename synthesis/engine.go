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


package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/hypograph/ai"
	"github.com/poiesic/hypograph/core"
)

const (
	// maxSummaryEvidence bounds the evidence sent to the summary prompt.
	maxSummaryEvidence = 8
	// maxHypothesisEvidence and maxHypothesisTriples bound the payload sent
	// to the hypothesis prompt.
	maxHypothesisEvidence = 5
	maxHypothesisTriples  = 3
)

// Engine synthesizes summaries and hypotheses from gathered evidence.
// A nil generator (backend disabled) routes every call straight to the
// deterministic fallbacks; the engine itself never errors.
type Engine struct {
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a synthesis engine. The provider's generator may be nil.
func NewEngine(provider ai.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		generator: provider.Generator(),
		logger:    slog.Default().With("component", "synthesis"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Ready reports whether a generative backend is configured.
func (e *Engine) Ready() bool {
	return e.generator != nil
}

// Summarize produces a structured research summary for the query. Empty
// evidence short-circuits to a distinct "no papers retrieved" summary with
// no backend call. Backend failure or undecodable output falls back to a
// summary built from the first evidence items. The second return reports
// whether the fallback path was taken.
func (e *Engine) Summarize(ctx context.Context, query string, evidence []core.EvidenceItem) (*core.SummarySection, bool) {
	if len(evidence) == 0 {
		return emptySummary(query), true
	}
	if e.generator == nil {
		return fallbackSummary(query, evidence), true
	}

	response, err := e.generator.Complete(ctx, summarySystemPrompt, summaryUserPrompt(query, evidence), 0)
	if err != nil {
		e.logger.Warn("summary generation failed, using fallback", "err", err)
		return fallbackSummary(query, evidence), true
	}

	var summary core.SummarySection
	if err := decodeRecoverable(response, &summary); err != nil {
		e.logger.Warn("summary response undecodable, using fallback", "err", err)
		return fallbackSummary(query, evidence), true
	}
	return &summary, false
}

// summaryUserPrompt formats the query and top evidence for the summary call.
// Snippets are capped at 200 characters.
func summaryUserPrompt(query string, evidence []core.EvidenceItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research Query: %s\n\nRetrieved Papers:\n", query)
	for i, item := range evidence {
		if i >= maxSummaryEvidence {
			break
		}
		keyPoints := item.Snippet
		if runes := []rune(keyPoints); len(runes) > 200 {
			keyPoints = string(runes[:200]) + "..."
		}
		fmt.Fprintf(&b, "Paper %d (PMID: %s):\nTitle: %s\nKey Content: %s\n---\n",
			i+1, item.PMID, item.Title, keyPoints)
	}
	b.WriteString("\nPlease analyze these papers and provide the structured summary.")
	return b.String()
}

// hypothesisPayload is the user message for the hypothesis call. Field names
// match what the system prompt tells the model to expect.
type hypothesisPayload struct {
	UserQuery          string              `json:"USER_QUERY"`
	RetrievedPassages  []core.EvidenceItem `json:"RETRIEVED_PASSAGES"`
	KGResults          []core.KGTriple     `json:"KG_RESULTS"`
	OptionalSeededText string              `json:"OPTIONAL_SEEDED_TEXT,omitempty"`
}

// hypothesisResult is the expected shape of the model's response.
type hypothesisResult struct {
	Query      string            `json:"query"`
	Hypotheses []core.Hypothesis `json:"hypotheses"`
	Note       string            `json:"note"`
}

// Synthesize generates validated hypotheses from evidence and graph triples.
// One backend invocation, no retries: failure, undecodable output and
// zero surviving hypotheses after per-record validation all produce the
// deterministic fallback set. The note return carries the model's own note
// (or a fallback reason); the pipeline composes the response-level note.
func (e *Engine) Synthesize(ctx context.Context, query string, evidence []core.EvidenceItem, triples []core.KGTriple, seed string, temperature float64) ([]core.Hypothesis, string, bool) {
	if e.generator == nil {
		return fallbackHypotheses(query, evidence), "generative backend not available", true
	}

	payload := hypothesisPayload{
		UserQuery:          query,
		RetrievedPassages:  capEvidence(evidence, maxHypothesisEvidence),
		KGResults:          capTriples(triples, maxHypothesisTriples),
		OptionalSeededText: seed,
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		e.logger.Error("failed to encode hypothesis payload", "err", err)
		return fallbackHypotheses(query, evidence), "payload encoding failed", true
	}

	response, err := e.generator.Complete(ctx, hypothesisSystemPrompt, string(body), temperature)
	if err != nil {
		e.logger.Warn("hypothesis generation failed, using fallback", "err", err)
		return fallbackHypotheses(query, evidence), "generation failed", true
	}

	var result hypothesisResult
	if err := decodeRecoverable(response, &result); err != nil {
		e.logger.Warn("hypothesis response undecodable, using fallback", "err", err)
		return fallbackHypotheses(query, evidence), "response parsing failed", true
	}

	hypotheses := e.validateHypotheses(result.Hypotheses)
	if len(hypotheses) == 0 {
		e.logger.Warn("no valid hypotheses in response, using fallback",
			"candidates", len(result.Hypotheses))
		return fallbackHypotheses(query, evidence), "no valid hypotheses in response", true
	}

	note := result.Note
	if note == "" {
		note = "Hypotheses generated successfully with research summary"
	}
	return hypotheses, note, false
}

// validateHypotheses keeps the hypotheses that pass record validation,
// skipping (not failing on) malformed ones. A missing suggested experiment
// is filled with placeholders before validation; a duplicate id drops the
// later record.
func (e *Engine) validateHypotheses(candidates []core.Hypothesis) []core.Hypothesis {
	kept := make([]core.Hypothesis, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))

	for i := range candidates {
		h := candidates[i]
		if h.SuggestedExperiment == (core.SuggestedExperiment{}) {
			h.SuggestedExperiment = core.SuggestedExperiment{
				Model:          "Not specified",
				Intervention:   "Not specified",
				PrimaryOutcome: "Not specified",
				DesignSummary:  "Not specified",
			}
		}
		if err := core.ValidateHypothesis(&h); err != nil {
			e.logger.Warn("skipping invalid hypothesis", "index", i, "err", err)
			continue
		}
		if seen[h.Id] {
			e.logger.Warn("skipping duplicate hypothesis id", "id", h.Id)
			continue
		}
		seen[h.Id] = true
		kept = append(kept, h)
	}
	return kept
}

func capEvidence(evidence []core.EvidenceItem, n int) []core.EvidenceItem {
	if len(evidence) <= n {
		return evidence
	}
	return evidence[:n]
}

func capTriples(triples []core.KGTriple, n int) []core.KGTriple {
	if len(triples) <= n {
		return triples
	}
	return triples[:n]
}
