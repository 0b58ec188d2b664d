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
	"fmt"

	"github.com/poiesic/hypograph/core"
)

// evidenceLine formats one evidence item for fallback findings and
// supporting-evidence lists.
func evidenceLine(item core.EvidenceItem) string {
	snippet := item.Snippet
	if len([]rune(snippet)) > 100 {
		snippet = string([]rune(snippet)[:100])
	}
	return fmt.Sprintf("PMID %s: %s - %s...", item.PMID, item.Title, snippet)
}

// emptySummary is returned when no evidence was retrieved at all. It is a
// distinct wording so callers can tell "nothing found" from "backend failed".
func emptySummary(query string) *core.SummarySection {
	return &core.SummarySection{
		Overview:      fmt.Sprintf("No papers retrieved for query: %s", query),
		KeyFindings:   []string{"No evidence available for analysis"},
		KnowledgeGaps: []string{"Limited research available in the database"},
		Implications:  "Consider broadening search terms or updating the knowledge base",
	}
}

// fallbackSummary builds a deterministic summary from the first evidence
// items when the generative backend is unavailable or failed.
func fallbackSummary(query string, evidence []core.EvidenceItem) *core.SummarySection {
	findings := make([]string, 0, 3)
	for _, item := range evidence {
		findings = append(findings, evidenceLine(item))
		if len(findings) >= 3 {
			break
		}
	}

	return &core.SummarySection{
		Overview:    fmt.Sprintf("Research on %s based on %d retrieved papers", query, len(evidence)),
		KeyFindings: findings,
		KnowledgeGaps: []string{
			"Need for more comprehensive studies",
			"Limited understanding of underlying mechanisms",
		},
		Implications: "Suggests potential for novel therapeutic approaches",
	}
}

// fallbackHypotheses builds the deterministic single-hypothesis result used
// whenever generation cannot produce at least one valid hypothesis. The
// result always validates: id H1, evidence-backed, Medium plausibility,
// confidence 0.6, citing up to the first three evidence items.
func fallbackHypotheses(query string, evidence []core.EvidenceItem) []core.Hypothesis {
	supporting := make([]string, 0, 3)
	for _, item := range evidence {
		supporting = append(supporting, evidenceLine(item))
		if len(supporting) >= 3 {
			break
		}
	}

	return []core.Hypothesis{{
		Id:                 "H1",
		Statement:          fmt.Sprintf("Potential therapeutic intervention for %s targeting key molecular pathways identified in literature", query),
		Type:               core.HypothesisEvidenceBacked,
		Plausibility:       core.PlausibilityMedium,
		ConfidenceScore:    0.6,
		SupportingEvidence: supporting,
		MechanisticRationale: "Based on associations between biological pathways and disease mechanisms identified in retrieved literature. " +
			"The evidence suggests potential targets for intervention.",
		SuggestedExperiment: core.SuggestedExperiment{
			Model:          "In vitro cell culture model",
			Intervention:   "Compound screening targeting identified pathways",
			PrimaryOutcome: "Reduction in pathological biomarkers",
			DesignSummary:  "Dose-response study with appropriate controls",
			SafetyMeasures: "Standard laboratory safety protocols",
		},
		Limitations: "Limited by available literature scope and requires experimental validation.",
	}}
}
