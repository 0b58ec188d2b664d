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


// Package hypograph assembles the full evidence-gathering and
// hypothesis-synthesis stack behind one facade: badger-backed paper index,
// OpenAI-compatible embedding and generation backends, Neo4j knowledge
// graph, and the orchestration pipeline on top of them.
package hypograph

import (
	"context"
	"log/slog"

	"github.com/poiesic/hypograph/ai"
	"github.com/poiesic/hypograph/ai/openai"
	"github.com/poiesic/hypograph/kg"
	"github.com/poiesic/hypograph/pipeline"
	"github.com/poiesic/hypograph/retriever"
	"github.com/poiesic/hypograph/server"
	"github.com/poiesic/hypograph/storage"
	"github.com/poiesic/hypograph/storage/badger"
	"github.com/poiesic/hypograph/synthesis"
)

// Engine wires all backends once at startup and owns their lifecycles.
type Engine struct {
	backend   *badger.Backend
	papers    storage.PaperRepository
	provider  ai.Provider
	graph     *kg.Client
	ret       *retriever.Retriever
	indexer   *retriever.Indexer
	synth     *synthesis.Engine
	assembler *pipeline.Assembler
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	graphConfig  *kg.Config
	pipelineOpts []pipeline.Option
	indexerOpts  []retriever.IndexerOption
}

// WithAIConfig sets the embedding/generation backend configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithGraphConfig sets the knowledge-graph backend configuration.
func WithGraphConfig(config *kg.Config) EngineOption {
	return func(o *engineOptions) {
		o.graphConfig = config
	}
}

// WithPipelineOptions passes options through to the pipeline assembler.
func WithPipelineOptions(opts ...pipeline.Option) EngineOption {
	return func(o *engineOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithIndexerOptions passes options through to the index builder.
func WithIndexerOptions(opts ...retriever.IndexerOption) EngineOption {
	return func(o *engineOptions) {
		o.indexerOpts = append(o.indexerOpts, opts...)
	}
}

// NewEngine opens the paper store at filePath and wires every component.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig:    ai.DefaultConfig(),
		graphConfig: kg.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	papers := badger.NewPaperRepository(backend)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graph, err := kg.NewClient(options.graphConfig)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	ret, err := retriever.NewRetriever(papers, provider)
	if err != nil {
		graph.Close(context.Background())
		provider.Close()
		backend.Close()
		return nil, err
	}

	indexer, err := retriever.NewIndexer(papers, provider, options.indexerOpts...)
	if err != nil {
		graph.Close(context.Background())
		provider.Close()
		backend.Close()
		return nil, err
	}

	synth, err := synthesis.NewEngine(provider)
	if err != nil {
		graph.Close(context.Background())
		provider.Close()
		backend.Close()
		return nil, err
	}

	assembler, err := pipeline.NewAssembler(ret, graph, synth, options.pipelineOpts...)
	if err != nil {
		graph.Close(context.Background())
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:   backend,
		papers:    papers,
		provider:  provider,
		graph:     graph,
		ret:       ret,
		indexer:   indexer,
		synth:     synth,
		assembler: assembler,
		logger:    slog.Default(),
	}, nil
}

// Close shuts down the graph driver, AI provider and storage backend.
func (e *Engine) Close(ctx context.Context) error {
	if err := e.graph.Close(ctx); err != nil {
		e.logger.Error("error closing graph client", "err", err)
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.papers.Close(); err != nil {
		e.logger.Error("error closing paper repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Assembler returns the pipeline orchestrator.
func (e *Engine) Assembler() *pipeline.Assembler {
	return e.assembler
}

// Retriever returns the evidence retriever.
func (e *Engine) Retriever() *retriever.Retriever {
	return e.ret
}

// Indexer returns the index builder.
func (e *Engine) Indexer() *retriever.Indexer {
	return e.indexer
}

// Papers returns the paper repository.
func (e *Engine) Papers() storage.PaperRepository {
	return e.papers
}

// Graph returns the knowledge-graph client.
func (e *Engine) Graph() *kg.Client {
	return e.graph
}

// NewImporter creates a triples importer against the graph backend.
func (e *Engine) NewImporter() (*kg.Importer, error) {
	return kg.NewImporter(e.graph)
}

// NewServer creates the HTTP transport around this engine's backends.
func (e *Engine) NewServer(opts ...server.Option) (*server.Server, error) {
	return server.NewServer(server.Deps{
		Assembler: e.assembler,
		Retriever: e.ret,
		Indexer:   e.indexer,
		Papers:    e.papers,
		Graph:     e.graph,
	}, opts...)
}
