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
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/hypograph/ai/mock"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/storage"
	"github.com/poiesic/hypograph/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetriever(t *testing.T, embedder *mock.MockEmbedder) (*Retriever, storage.PaperRepository) {
	t.Helper()

	repo, backend, err := badger.NewMemoryPaperRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProviderWithServices(embedder, nil)
	r, err := NewRetriever(repo, provider)
	require.NoError(t, err)
	return r, repo
}

func TestNewRetrieverRequiresDependencies(t *testing.T) {
	provider := mock.NewMockProvider()

	_, err := NewRetriever(nil, provider)
	assert.ErrorIs(t, err, ErrPaperRepositoryRequired)

	repo, backend, err := badger.NewMemoryPaperRepository()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewRetriever(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestReadyReflectsIndexContents(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestRetriever(t, mock.NewMockEmbedder())

	assert.False(t, r.Ready(ctx))

	err := repo.AddPapers(ctx, &core.PaperRecord{
		PMID:   "101",
		Title:  "BDNF signaling in hippocampus",
		Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	assert.True(t, r.Ready(ctx))
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	r, repo := newTestRetriever(t, embedder)

	err := repo.AddPapers(ctx,
		&core.PaperRecord{PMID: "1", Title: "exact match", Vector: []float32{1, 0}},
		&core.PaperRecord{PMID: "2", Title: "diagonal", Vector: []float32{0.7, 0.7}},
		&core.PaperRecord{PMID: "3", Title: "orthogonal", Vector: []float32{0, 1}},
	)
	require.NoError(t, err)

	evidence, skipped, err := r.Retrieve(ctx, "anything", 10)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, evidence, 3)

	assert.Equal(t, "1", evidence[0].PMID)
	assert.Equal(t, "2", evidence[1].PMID)
	assert.Equal(t, "3", evidence[2].PMID)
	assert.Greater(t, evidence[0].Score, evidence[1].Score)
	assert.Greater(t, evidence[1].Score, evidence[2].Score)
}

func TestRetrieveIsIdempotent(t *testing.T) {
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	r, repo := newTestRetriever(t, embedder)

	err := repo.AddPapers(ctx,
		&core.PaperRecord{PMID: "1", Title: "first", Vector: []float32{1, 0}},
		&core.PaperRecord{PMID: "2", Title: "second", Vector: []float32{0.7, 0.7}},
	)
	require.NoError(t, err)

	first, firstSkipped, err := r.Retrieve(ctx, "same query", 5)
	require.NoError(t, err)
	second, secondSkipped, err := r.Retrieve(ctx, "same query", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSkipped, secondSkipped)
}

func TestRetrieveSkipsUnusablePMIDs(t *testing.T) {
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	r, repo := newTestRetriever(t, embedder)

	err := repo.AddPapers(ctx,
		&core.PaperRecord{PMID: "12345", Title: "kept", Vector: []float32{1, 0}},
		&core.PaperRecord{PMID: "nan", Title: "pandas artifact", Vector: []float32{1, 0}},
		&core.PaperRecord{PMID: "NoNe", Title: "another artifact", Vector: []float32{1, 0}},
	)
	require.NoError(t, err)

	evidence, skipped, err := r.Retrieve(ctx, "anything", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, evidence, 1)
	assert.Equal(t, "12345", evidence[0].PMID)
}

// stubPaperRepo returns a fixed match list, letting tests exercise paths the
// badger backend cannot produce (like duplicate PMIDs across matches).
type stubPaperRepo struct {
	matches []*core.PaperMatch
	findErr error
}

func (s *stubPaperRepo) AddPapers(ctx context.Context, papers ...*core.PaperRecord) error {
	return nil
}

func (s *stubPaperRepo) GetPaper(ctx context.Context, pmid string) (*core.PaperRecord, error) {
	return nil, storage.ErrNotFound
}

func (s *stubPaperRepo) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.PaperMatch, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.matches, nil
}

func (s *stubPaperRepo) Count(ctx context.Context) (int, error) { return len(s.matches), nil }
func (s *stubPaperRepo) Clear(ctx context.Context) error        { return nil }
func (s *stubPaperRepo) Close() error                           { return nil }

func TestRetrieveDedupesKeepingFirst(t *testing.T) {
	ctx := context.Background()

	repo := &stubPaperRepo{matches: []*core.PaperMatch{
		{Record: &core.PaperRecord{PMID: "7", Title: "first ranked"}, Score: 0.9},
		{Record: &core.PaperRecord{PMID: "7", Title: "duplicate, lower ranked"}, Score: 0.8},
		{Record: &core.PaperRecord{PMID: "8", Title: "other"}, Score: 0.7},
	}}
	r, err := NewRetriever(repo, mock.NewMockProvider())
	require.NoError(t, err)

	evidence, skipped, err := r.Retrieve(ctx, "anything", 10)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, evidence, 2)
	assert.Equal(t, "first ranked", evidence[0].Title)
	assert.Equal(t, "8", evidence[1].PMID)
}

func TestRetrieveFillsDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &stubPaperRepo{matches: []*core.PaperMatch{
		{Record: &core.PaperRecord{PMID: "9"}, Score: 0.5},
	}}
	r, err := NewRetriever(repo, mock.NewMockProvider())
	require.NoError(t, err)

	evidence, _, err := r.Retrieve(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, evidence, 1)
	assert.Equal(t, "No title", evidence[0].Title)
	assert.Equal(t, "pubmed", evidence[0].Source)
}

func TestRetrieveTruncatesSnippets(t *testing.T) {
	ctx := context.Background()

	repo := &stubPaperRepo{matches: []*core.PaperMatch{
		{Record: &core.PaperRecord{
			PMID:     "10",
			Title:    "long abstract",
			Abstract: strings.Repeat("x", 1000),
		}, Score: 0.5},
	}}
	r, err := NewRetriever(repo, mock.NewMockProvider())
	require.NoError(t, err)

	evidence, _, err := r.Retrieve(ctx, "anything", 10)
	require.NoError(t, err)
	require.Len(t, evidence, 1)

	snippet := evidence[0].Snippet
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Len(t, []rune(snippet), snippetLimit+3)
	assert.True(t, strings.HasPrefix(snippet, "Title: long abstract"))
}

func TestRetrieveWrapsBackendFailures(t *testing.T) {
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}
	provider := mock.NewMockProviderWithServices(embedder, nil)

	r, err := NewRetriever(&stubPaperRepo{}, provider)
	require.NoError(t, err)

	_, _, err = r.Retrieve(ctx, "anything", 10)
	assert.ErrorIs(t, err, core.ErrInternal)

	r, err = NewRetriever(&stubPaperRepo{findErr: errors.New("index corrupt")}, mock.NewMockProvider())
	require.NoError(t, err)

	_, _, err = r.Retrieve(ctx, "anything", 10)
	assert.ErrorIs(t, err, core.ErrInternal)
}

func TestTruncateSnippetRuneSafe(t *testing.T) {
	text := strings.Repeat("β", 10)

	assert.Equal(t, text, truncateSnippet(text, 10))
	assert.Equal(t, strings.Repeat("β", 4)+"...", truncateSnippet(text, 4))
}
