// Package ai defines the embedding and text-generation contracts consumed by
// the retrieval and synthesis pipelines, plus shared provider configuration.
// Concrete implementations live in subpackages: openai for OpenAI-compatible
// HTTP services, mock for deterministic test doubles.
package ai
