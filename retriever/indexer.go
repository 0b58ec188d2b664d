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


package retriever

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/hypograph/ai"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/storage"
)

// Indexer builds the evidence index from a tabular PubMed export.
// Embedding runs on a bounded worker pool; transient backend failures are
// retried with exponential backoff.
type Indexer struct {
	papers     storage.PaperRepository
	embedder   ai.Embedder
	poolSize   int
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per backend call.
// Default is 32.
func WithBatchSize(size int) IndexerOption {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.batchSize = size
		return nil
	}
}

// WithRetry sets the retry budget for failed embedding batches.
// Default is 3 attempts with a 1s base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) IndexerOption {
	return func(ix *Indexer) error {
		if maxRetries < 1 {
			maxRetries = 1
		}
		ix.maxRetries = maxRetries
		ix.retryDelay = baseDelay
		return nil
	}
}

// WithIndexerLogger sets a custom logger.
func WithIndexerLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates a new index builder.
func NewIndexer(papers storage.PaperRepository, provider ai.Provider, opts ...IndexerOption) (*Indexer, error) {
	if papers == nil {
		return nil, ErrPaperRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	ix := &Indexer{
		papers:     papers,
		embedder:   provider.Embedder(),
		poolSize:   poolSize,
		batchSize:  32,
		maxRetries: 3,
		retryDelay: time.Second,
		logger:     slog.Default().With("component", "indexer"),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// Build replaces the evidence index with the contents of a CSV file holding
// pmid, title and abstract columns (header names matched case-insensitively).
// Rows with missing or sentinel pmids are skipped. Returns the number of
// papers indexed.
func (ix *Indexer) Build(ctx context.Context, csvPath string) (int, error) {
	records, err := ix.readCSV(csvPath)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, ErrNoDocuments
	}

	// Rebuild from scratch so removed upstream rows disappear too.
	if err := ix.papers.Clear(ctx); err != nil {
		return 0, err
	}

	pool, err := ants.NewPool(ix.poolSize)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		indexed  int
	)

	for start := 0; start < len(records); start += ix.batchSize {
		end := min(start+ix.batchSize, len(records))
		batch := records[start:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := ix.embedAndStore(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			mu.Lock()
			indexed += len(batch)
			count := indexed
			mu.Unlock()
			ix.logger.Info("index build progress", "indexed", count, "total", len(records))
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return indexed, firstErr
	}

	ix.logger.Info("index build complete", "papers", indexed)
	return indexed, nil
}

// embedAndStore embeds one batch of papers and persists it, retrying
// transient embedding failures with exponential backoff.
func (ix *Indexer) embedAndStore(ctx context.Context, batch []*core.PaperRecord) error {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.Document()
	}

	var vectors [][]float32
	err := withRetry(ctx, ix.maxRetries, ix.retryDelay, func() error {
		var err error
		vectors, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("embedding batch of %d: %w", len(batch), err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch))
	}

	for i, record := range batch {
		record.Vector = vectors[i]
	}
	return ix.papers.AddPapers(ctx, batch...)
}

// readCSV parses the export into paper records, skipping unusable pmids.
func (ix *Indexer) readCSV(csvPath string) ([]*core.PaperRecord, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	pmidCol, okPMID := cols["pmid"]
	titleCol, okTitle := cols["title"]
	abstractCol, okAbstract := cols["abstract"]
	if !okPMID || !okTitle || !okAbstract {
		return nil, ErrMissingColumns
	}

	var records []*core.PaperRecord
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		pmid := strings.TrimSpace(field(row, pmidCol))
		if !core.IsUsablePMID(pmid) {
			skipped++
			continue
		}

		records = append(records, &core.PaperRecord{
			Id:       core.IDFromContent(pmid),
			PMID:     pmid,
			Title:    strings.TrimSpace(field(row, titleCol)),
			Abstract: strings.TrimSpace(field(row, abstractCol)),
			Source:   "pubmed",
		})
	}

	ix.logger.Info("parsed csv", "path", csvPath, "rows", len(records), "skipped", skipped)
	return records, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// withRetry runs fn up to attempts times with exponential backoff,
// honoring context cancellation between attempts.
func withRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
