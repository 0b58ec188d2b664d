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


// Package pipeline orchestrates a hypothesis request end to end: readiness
// check, evidence retrieval, entity extraction, concurrent graph lookup and
// summarization, hypothesis synthesis, and response assembly. Only the
// readiness check and retrieval are fatal; every later stage degrades to a
// fallback recorded in the response note.
package pipeline
