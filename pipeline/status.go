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

import "context"

// Status reports per-backend readiness.
type Status struct {
	IndexReady bool `json:"index_ready"`
	GraphReady bool `json:"graph_ready"`
	LLMReady   bool `json:"llm_ready"`
}

// Status probes each backend. A degraded backend never fails the probe; it
// just reports false.
func (a *Assembler) Status(ctx context.Context) Status {
	return Status{
		IndexReady: a.retriever.Ready(ctx),
		GraphReady: a.graph.Connected() && a.graph.Ready(ctx),
		LLMReady:   a.synth.Ready(),
	}
}
