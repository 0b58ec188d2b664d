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
	"strings"
	"testing"

	"github.com/poiesic/hypograph/ai/mock"
	"github.com/poiesic/hypograph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvidence() []core.EvidenceItem {
	return []core.EvidenceItem{
		{PMID: "111", Title: "Metformin and AMPK", Snippet: "Metformin activates AMPK in neurons.", Score: 0.91},
		{PMID: "222", Title: "Exercise and BDNF", Snippet: "Exercise raises hippocampal BDNF.", Score: 0.84},
		{PMID: "333", Title: "Tau clearance", Snippet: "Autophagy clears tau aggregates.", Score: 0.77},
		{PMID: "444", Title: "Insulin signaling", Snippet: "Insulin resistance in AD brains.", Score: 0.70},
	}
}

func newEngine(t *testing.T, generator *mock.MockGenerator) *Engine {
	t.Helper()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)
	e, err := NewEngine(provider)
	require.NoError(t, err)
	return e
}

const validHypothesisResponse = `{
  "query": "alzheimer treatment",
  "hypotheses": [
    {
      "id": "H1",
      "statement": "Metformin slows cognitive decline via AMPK activation",
      "type": "evidence-backed",
      "plausibility": "High",
      "confidence_score": 0.85,
      "supporting_evidence": ["PMID 111: Metformin activates AMPK"],
      "mechanistic_rationale": "AMPK activation promotes autophagy and tau clearance",
      "suggested_experiment": {
        "model": "APP/PS1 mouse model",
        "intervention": "Oral metformin",
        "primary_outcome": "Morris water maze performance",
        "design_summary": "Randomized dosing with vehicle controls",
        "safety_measures": "Glucose monitoring"
      },
      "limitations": "Mouse models translate imperfectly"
    }
  ],
  "note": "Generated from evidence and graph"
}`

func TestSynthesizeParsesValidResponse(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator(validHypothesisResponse)
	e := newEngine(t, gen)

	hypotheses, note, usedFallback := e.Synthesize(ctx, "alzheimer treatment", sampleEvidence(), nil, "", 0.2)
	assert.False(t, usedFallback)
	assert.Equal(t, "Generated from evidence and graph", note)
	require.Len(t, hypotheses, 1)
	assert.Equal(t, "H1", hypotheses[0].Id)
	assert.Equal(t, core.HypothesisEvidenceBacked, hypotheses[0].Type)
	assert.InDelta(t, 0.85, hypotheses[0].ConfidenceScore, 1e-9)
}

func TestSynthesizePayloadCapsInputs(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator(validHypothesisResponse)
	e := newEngine(t, gen)

	evidence := sampleEvidence()
	evidence = append(evidence,
		core.EvidenceItem{PMID: "555", Title: "Extra 1"},
		core.EvidenceItem{PMID: "666", Title: "Extra 2"},
	)
	triples := []core.KGTriple{
		{Subject: "metformin", Relation: "ACTIVATES", Object: "ampk", SupportingPMIDs: []string{"111"}},
		{Subject: "exercise", Relation: "RAISES", Object: "bdnf", SupportingPMIDs: []string{}},
		{Subject: "autophagy", Relation: "CLEARS", Object: "tau", SupportingPMIDs: []string{}},
		{Subject: "insulin", Relation: "MODULATES", Object: "amyloid", SupportingPMIDs: []string{}},
	}

	e.Synthesize(ctx, "alzheimer treatment", evidence, triples, "seed text", 0)

	// Evidence caps at 5, triples at 3; the seed rides along.
	assert.Contains(t, gen.LastUserPrompt, `"555"`)
	assert.NotContains(t, gen.LastUserPrompt, `"666"`)
	assert.Contains(t, gen.LastUserPrompt, "CLEARS")
	assert.NotContains(t, gen.LastUserPrompt, "MODULATES")
	assert.Contains(t, gen.LastUserPrompt, "seed text")
	assert.Equal(t, hypothesisSystemPrompt, gen.LastSystemPrompt)
}

func TestSynthesizeSkipsInvalidRecordsKeepsRest(t *testing.T) {
	ctx := context.Background()
	response := `{
  "hypotheses": [
    {"id": "bogus", "statement": "bad id", "type": "evidence-backed", "plausibility": "High",
     "confidence_score": 0.5, "mechanistic_rationale": "r", "limitations": "l"},
    {"id": "H1", "statement": "confidence out of range", "type": "evidence-backed", "plausibility": "High",
     "confidence_score": 1.4, "mechanistic_rationale": "r", "limitations": "l"},
    {"id": "H2", "statement": "valid one", "type": "speculative", "plausibility": "Low",
     "confidence_score": 0.3, "mechanistic_rationale": "r", "limitations": "l"},
    {"id": "H2", "statement": "duplicate id", "type": "speculative", "plausibility": "Low",
     "confidence_score": 0.3, "mechanistic_rationale": "r", "limitations": "l"}
  ]
}`
	e := newEngine(t, mock.NewMockGenerator(response))

	hypotheses, _, usedFallback := e.Synthesize(ctx, "q", sampleEvidence(), nil, "", 0)
	assert.False(t, usedFallback)
	require.Len(t, hypotheses, 1)
	assert.Equal(t, "H2", hypotheses[0].Id)
	assert.Equal(t, "valid one", hypotheses[0].Statement)
	// Missing experiment was filled with placeholders, not rejected.
	assert.Equal(t, "Not specified", hypotheses[0].SuggestedExperiment.Model)
}

func TestSynthesizeFallsBackWhenNothingSurvives(t *testing.T) {
	ctx := context.Background()
	response := `{"hypotheses": [{"id": "nope", "statement": "", "type": "?", "plausibility": "?", "confidence_score": 2}]}`
	e := newEngine(t, mock.NewMockGenerator(response))

	hypotheses, note, usedFallback := e.Synthesize(ctx, "alzheimer", sampleEvidence(), nil, "", 0)
	assert.True(t, usedFallback)
	assert.Equal(t, "no valid hypotheses in response", note)
	require.Len(t, hypotheses, 1)
	assert.Equal(t, "H1", hypotheses[0].Id)
	assert.Equal(t, core.PlausibilityMedium, hypotheses[0].Plausibility)
	assert.InDelta(t, 0.6, hypotheses[0].ConfidenceScore, 1e-9)
	assert.Len(t, hypotheses[0].SupportingEvidence, 3)
	assert.NoError(t, core.ValidateHypothesis(&hypotheses[0]))
}

func TestSynthesizeFallsBackOnBackendFailure(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, mock.NewFailingGenerator())

	hypotheses, note, usedFallback := e.Synthesize(ctx, "alzheimer", sampleEvidence(), nil, "", 0)
	assert.True(t, usedFallback)
	assert.Equal(t, "generation failed", note)
	require.Len(t, hypotheses, 1)
}

func TestSynthesizeWithoutGenerator(t *testing.T) {
	ctx := context.Background()
	provider := mock.NewMockProvider() // no generator
	e, err := NewEngine(provider)
	require.NoError(t, err)
	assert.False(t, e.Ready())

	hypotheses, _, usedFallback := e.Synthesize(ctx, "alzheimer", sampleEvidence(), nil, "", 0)
	assert.True(t, usedFallback)
	require.Len(t, hypotheses, 1)
}

func TestSynthesizeFallbackWithNoEvidenceFabricatesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, mock.NewFailingGenerator())

	hypotheses, _, usedFallback := e.Synthesize(ctx, "obscure topic", nil, nil, "", 0)
	assert.True(t, usedFallback)
	require.Len(t, hypotheses, 1)
	assert.Empty(t, hypotheses[0].SupportingEvidence)
}

const validSummaryResponse = `{
  "overview": "Metformin research converges on AMPK.",
  "key_findings": ["AMPK activation", "BDNF elevation"],
  "knowledge_gaps": ["Human trials missing"],
  "implications": "Repurposing potential."
}`

func TestSummarizeParsesValidResponse(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator(validSummaryResponse)
	e := newEngine(t, gen)

	summary, usedFallback := e.Summarize(ctx, "alzheimer treatment", sampleEvidence())
	assert.False(t, usedFallback)
	assert.Equal(t, "Metformin research converges on AMPK.", summary.Overview)
	assert.Equal(t, summarySystemPrompt, gen.LastSystemPrompt)
	assert.Contains(t, gen.LastUserPrompt, "Research Query: alzheimer treatment")
	assert.Contains(t, gen.LastUserPrompt, "PMID: 111")
}

func TestSummarizeEmptyEvidenceShortCircuits(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator(validSummaryResponse)
	e := newEngine(t, gen)

	summary, usedFallback := e.Summarize(ctx, "obscure topic", nil)
	assert.True(t, usedFallback)
	assert.Equal(t, "No papers retrieved for query: obscure topic", summary.Overview)
	assert.Zero(t, gen.CallCount(), "no backend call for empty evidence")
}

func TestSummarizeFallsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, mock.NewFailingGenerator())

	summary, usedFallback := e.Summarize(ctx, "alzheimer", sampleEvidence())
	assert.True(t, usedFallback)
	assert.True(t, strings.HasPrefix(summary.Overview, "Research on alzheimer based on 4 retrieved papers"))
	assert.Len(t, summary.KeyFindings, 3)
}

func TestSummarizeFallsBackOnGarbageResponse(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, mock.NewMockGenerator("I am not JSON today."))

	summary, usedFallback := e.Summarize(ctx, "alzheimer", sampleEvidence())
	assert.True(t, usedFallback)
	assert.NotEmpty(t, summary.KeyFindings)
}

func TestSummarizeCapsEvidenceAtEight(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator(validSummaryResponse)
	e := newEngine(t, gen)

	evidence := make([]core.EvidenceItem, 0, 10)
	for i := 0; i < 10; i++ {
		evidence = append(evidence, core.EvidenceItem{
			PMID:  string(rune('a' + i)),
			Title: "paper",
		})
	}

	e.Summarize(ctx, "q", evidence)
	assert.Contains(t, gen.LastUserPrompt, "Paper 8")
	assert.NotContains(t, gen.LastUserPrompt, "Paper 9")
}
