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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	hypograph "github.com/poiesic/hypograph"
	"github.com/poiesic/hypograph/ai"
	"github.com/poiesic/hypograph/kg"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "hypograph",
		Usage: "Evidence-gathering and hypothesis-synthesis engine over PubMed literature",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8000",
					},
				),
			},
			{
				Name:   "build-index",
				Usage:  "Build the evidence index from a PubMed CSV export",
				Action: buildIndexCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to CSV with pmid,title,abstract columns",
						Required: true,
					},
				),
			},
			{
				Name:   "import-kg",
				Usage:  "Import relation triples from a CSV into the knowledge graph",
				Action: importKGCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to CSV with subject,relation,object[,pmids] columns",
						Required: true,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// backendFlags are shared by every command that touches the backends.
func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "hypograph.db",
			EnvVars: []string{"HYPOGRAPH_DB"},
		},
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service host URL for embeddings and generation",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"HYPOGRAPH_AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"HYPOGRAPH_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generator-model",
			Usage:   "Generation model name (empty disables generation, falling back to deterministic output)",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"HYPOGRAPH_GENERATOR_MODEL"},
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token for the AI backends",
			Value:   "none",
			EnvVars: []string{"HYPOGRAPH_AI_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "neo4j-uri",
			Usage:   "Neo4j bolt URI",
			Value:   "bolt://localhost:7687",
			EnvVars: []string{"NEO4J_URI"},
		},
		&cli.StringFlag{
			Name:    "neo4j-user",
			Usage:   "Neo4j username",
			Value:   "neo4j",
			EnvVars: []string{"NEO4J_USER"},
		},
		&cli.StringFlag{
			Name:    "neo4j-password",
			Usage:   "Neo4j password (empty disables knowledge-graph features)",
			EnvVars: []string{"NEO4J_PASSWORD"},
		},
	}
}

// newEngine builds an Engine from the command's backend flags.
func newEngine(c *cli.Context) (*hypograph.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithToken(c.String("ai-token")),
	)
	graphConfig := kg.NewConfig(
		kg.WithURI(c.String("neo4j-uri")),
		kg.WithCredentials(c.String("neo4j-user"), c.String("neo4j-password")),
	)

	return hypograph.NewEngine(c.String("db"),
		hypograph.WithAIConfig(aiConfig),
		hypograph.WithGraphConfig(graphConfig),
	)
}

func serveCommand(c *cli.Context) error {
	engine, err := newEngine(c)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close(context.Background())

	srv, err := engine.NewServer()
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}
	return srv.Run(c.String("addr"))
}

func buildIndexCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := newEngine(c)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close(ctx)

	indexed, err := engine.Indexer().Build(ctx, c.String("csv"))
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Printf("Indexed %d papers\n", indexed)
	return nil
}

func importKGCommand(c *cli.Context) error {
	ctx := context.Background()

	engine, err := newEngine(c)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close(ctx)

	importer, err := engine.NewImporter()
	if err != nil {
		return fmt.Errorf("initializing importer: %w", err)
	}

	imported, err := importer.ImportCSV(ctx, c.String("csv"))
	if err != nil {
		return fmt.Errorf("importing triples: %w", err)
	}

	fmt.Printf("Imported %d triples\n", imported)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
