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


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/kg"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTopK        = 5
	graphTripleLimit   = 10
	titleEntitySources = 3
)

// EvidenceRetriever is the similarity-search stage.
type EvidenceRetriever interface {
	Ready(ctx context.Context) bool
	Retrieve(ctx context.Context, query string, k int) ([]core.EvidenceItem, int, error)
}

// GraphRetriever is the best-effort knowledge-graph stage.
type GraphRetriever interface {
	Connected() bool
	Ready(ctx context.Context) bool
	LookupTriples(ctx context.Context, entities []string, limit int) []core.KGTriple
}

// Synthesizer is the summary and hypothesis generation stage.
type Synthesizer interface {
	Ready() bool
	Summarize(ctx context.Context, query string, evidence []core.EvidenceItem) (*core.SummarySection, bool)
	Synthesize(ctx context.Context, query string, evidence []core.EvidenceItem, triples []core.KGTriple, seed string, temperature float64) ([]core.Hypothesis, string, bool)
}

// Assembler runs the hypothesis pipeline. The stage order is fixed:
// readiness check and evidence retrieval are fatal, the graph lookup and
// summary run concurrently and degrade softly, hypothesis generation falls
// back to a deterministic result. The assembled response is built once and
// not mutated afterwards.
type Assembler struct {
	retriever EvidenceRetriever
	graph     GraphRetriever
	synth     Synthesizer

	searchTimeout     time.Duration
	graphTimeout      time.Duration
	generationTimeout time.Duration

	logger *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithSearchTimeout bounds the readiness check and evidence retrieval.
// Default is 15s.
func WithSearchTimeout(d time.Duration) Option {
	return func(a *Assembler) error {
		if d > 0 {
			a.searchTimeout = d
		}
		return nil
	}
}

// WithGraphTimeout bounds the knowledge-graph lookup. Default is 10s.
func WithGraphTimeout(d time.Duration) Option {
	return func(a *Assembler) error {
		if d > 0 {
			a.graphTimeout = d
		}
		return nil
	}
}

// WithGenerationTimeout bounds each generative call. Default is 120s.
func WithGenerationTimeout(d time.Duration) Option {
	return func(a *Assembler) error {
		if d > 0 {
			a.generationTimeout = d
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssembler creates the pipeline orchestrator.
func NewAssembler(retriever EvidenceRetriever, graph GraphRetriever, synth Synthesizer, opts ...Option) (*Assembler, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if graph == nil {
		return nil, ErrGraphRequired
	}
	if synth == nil {
		return nil, ErrSynthesizerRequired
	}

	a := &Assembler{
		retriever:         retriever,
		graph:             graph,
		synth:             synth,
		searchTimeout:     15 * time.Second,
		graphTimeout:      10 * time.Second,
		generationTimeout: 120 * time.Second,
		logger:            slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Generate runs the full pipeline for one request. Once minimal evidence
// exists the call cannot hard-fail: soft stage failures are absorbed into
// fallbacks and surfaced through the response note. Caller cancellation
// propagates between stages; a cancelled request returns the context error,
// never a partial response.
func (a *Assembler) Generate(ctx context.Context, req *core.QueryRequest) (*core.HypothesisResponse, error) {
	if req != nil && req.TopK == 0 {
		req.TopK = defaultTopK
	}
	if err := core.ValidateQueryRequest(req); err != nil {
		return nil, err
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, a.searchTimeout)
	defer cancelSearch()

	if !a.retriever.Ready(searchCtx) {
		return nil, fmt.Errorf("%w: evidence index not ready, build the index first", core.ErrUnavailable)
	}

	evidence, skipped, err := a.retriever.Retrieve(searchCtx, req.Query, req.TopK)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entities := kg.ExtractEntities(req.Query)
	entities = kg.ExtendWithTitles(entities, topTitles(evidence, titleEntitySources))

	var (
		triples         []core.KGTriple
		summary         *core.SummarySection
		summaryFallback bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		graphCtx, cancel := context.WithTimeout(gctx, a.graphTimeout)
		defer cancel()
		triples = a.graph.LookupTriples(graphCtx, entities, graphTripleLimit)
		return nil
	})
	g.Go(func() error {
		genCtx, cancel := context.WithTimeout(gctx, a.generationTimeout)
		defer cancel()
		summary, summaryFallback = a.synth.Summarize(genCtx, req.Query, evidence)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	genCtx, cancelGen := context.WithTimeout(ctx, a.generationTimeout)
	defer cancelGen()

	hypotheses, synthNote, synthFallback := a.synth.Synthesize(
		genCtx, req.Query, evidence, triples, req.SeededInput, req.Temperature)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if triples == nil {
		triples = []core.KGTriple{}
	}
	if evidence == nil {
		evidence = []core.EvidenceItem{}
	}

	a.logger.Info("pipeline complete",
		"query", req.Query,
		"evidence", len(evidence),
		"skipped", skipped,
		"triples", len(triples),
		"hypotheses", len(hypotheses),
		"summary_fallback", summaryFallback,
		"hypothesis_fallback", synthFallback)

	return &core.HypothesisResponse{
		Query:      req.Query,
		Summary:    summary,
		Hypotheses: hypotheses,
		Evidence:   evidence,
		KGTriples:  triples,
		Note:       composeNote(len(evidence), skipped, synthNote, synthFallback),
	}, nil
}

// composeNote builds the response note: evidence and skipped counts, then
// which generation path produced the hypotheses.
func composeNote(evidenceCount, skipped int, synthNote string, usedFallback bool) string {
	note := fmt.Sprintf("Retrieved %d evidence items. %d items skipped due to missing pmid.",
		evidenceCount, skipped)
	if usedFallback {
		note += fmt.Sprintf(" Used fallback hypothesis generation (%s).", synthNote)
	} else if synthNote != "" {
		note += " " + synthNote
	}
	return note
}

// topTitles returns the titles of the first n evidence items.
func topTitles(evidence []core.EvidenceItem, n int) []string {
	titles := make([]string, 0, n)
	for _, item := range evidence {
		if len(titles) >= n {
			break
		}
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}
	return titles
}
