package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records, derived from content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID, which makes index rebuilds idempotent.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HypothesisType classifies how a hypothesis is grounded.
type HypothesisType string

const (
	// HypothesisEvidenceBacked marks a hypothesis supported directly by retrieved literature.
	HypothesisEvidenceBacked HypothesisType = "evidence-backed"
	// HypothesisAnalogyDerived marks a hypothesis transferred from an analogous mechanism.
	HypothesisAnalogyDerived HypothesisType = "analogy-derived"
	// HypothesisSpeculative marks a hypothesis with little or no direct support.
	HypothesisSpeculative HypothesisType = "speculative"
)

// Plausibility is a coarse expert-style rating of a hypothesis.
type Plausibility string

const (
	PlausibilityHigh   Plausibility = "High"
	PlausibilityMedium Plausibility = "Medium"
	PlausibilityLow    Plausibility = "Low"
)

// QueryRequest is the caller's input to the hypothesis pipeline.
type QueryRequest struct {
	Query       string  `json:"query" validate:"required"`
	SeededInput string  `json:"seeded_input,omitempty"`
	TopK        int     `json:"top_k" validate:"gte=1,lte=20"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=1"`
}

// PaperRecord is a literature record stored in the evidence index.
// Vector holds the normalized embedding of the record's document text.
type PaperRecord struct {
	Id       ID        `json:"id"`
	PMID     string    `json:"pmid"`
	Title    string    `json:"title"`
	Abstract string    `json:"abstract"`
	Source   string    `json:"source"`
	Vector   []float32 `json:"vector,omitempty"`
}

// Document returns the text that is embedded and searched for this record.
func (p *PaperRecord) Document() string {
	return "Title: " + p.Title + "\n\nAbstract: " + p.Abstract
}

// PaperMatch is a paper returned from vector similarity search.
type PaperMatch struct {
	Record *PaperRecord
	Score  float32
}

// EvidenceItem is one ranked literature hit returned to the caller.
// Score is cosine similarity over normalized embeddings: higher means more
// similar. Items are unique by PMID within a response, in retrieval order.
type EvidenceItem struct {
	PMID    string  `json:"pmid" validate:"required"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
}

// KGTriple is a subject-relation-object fact from the knowledge graph.
// Duplicates are permitted if the backend returns them.
type KGTriple struct {
	Subject         string   `json:"subject"`
	Relation        string   `json:"relation"`
	Object          string   `json:"object"`
	SupportingPMIDs []string `json:"supporting_pmids"`
}

// SummarySection is the structured research summary for a query.
type SummarySection struct {
	Overview      string   `json:"overview"`
	KeyFindings   []string `json:"key_findings"`
	KnowledgeGaps []string `json:"knowledge_gaps"`
	Implications  string   `json:"implications"`
}

// SuggestedExperiment describes how a hypothesis could be tested.
type SuggestedExperiment struct {
	Model          string `json:"model" validate:"required"`
	Intervention   string `json:"intervention" validate:"required"`
	PrimaryOutcome string `json:"primary_outcome" validate:"required"`
	DesignSummary  string `json:"design_summary" validate:"required"`
	SafetyMeasures string `json:"safety_measures,omitempty"`
}

// Hypothesis is one generated, testable research hypothesis.
type Hypothesis struct {
	Id                   string              `json:"id" validate:"required,hypothesis_id"`
	Statement            string              `json:"statement" validate:"required"`
	Type                 HypothesisType      `json:"type" validate:"required,oneof=evidence-backed analogy-derived speculative"`
	Plausibility         Plausibility        `json:"plausibility" validate:"required,oneof=High Medium Low"`
	ConfidenceScore      float64             `json:"confidence_score" validate:"gte=0,lte=1"`
	SupportingEvidence   []string            `json:"supporting_evidence"`
	MechanisticRationale string              `json:"mechanistic_rationale" validate:"required"`
	SuggestedExperiment  SuggestedExperiment `json:"suggested_experiment"`
	Limitations          string              `json:"limitations" validate:"required"`
}

// HypothesisResponse is the aggregate result of one pipeline run.
// It is constructed once by the assembler and never mutated afterwards.
type HypothesisResponse struct {
	Query      string          `json:"query"`
	Summary    *SummarySection `json:"summary,omitempty"`
	Hypotheses []Hypothesis    `json:"hypotheses"`
	Evidence   []EvidenceItem  `json:"evidence"`
	KGTriples  []KGTriple      `json:"kg_triples"`
	Note       string          `json:"note"`
}

// GraphEntity is one node returned by entity browsing.
type GraphEntity struct {
	Labels     []string       `json:"labels"`
	LabelValue string         `json:"label_value"`
	Properties map[string]any `json:"properties"`
}

// GraphStats summarizes the knowledge graph contents.
type GraphStats struct {
	NodeCount         int64    `json:"node_count"`
	RelationshipCount int64    `json:"relationship_count"`
	Labels            []string `json:"labels"`
	RelationshipTypes []string `json:"relationship_types"`
}
