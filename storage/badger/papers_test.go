package badger

import (
	"context"
	"testing"

	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.PaperRepository {
	t.Helper()
	repo, backend, err := NewMemoryPaperRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestAddAndGetPaper(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	paper := &core.PaperRecord{
		PMID:     "11111111",
		Title:    "Tau propagation in neural circuits",
		Abstract: "Tau spreads trans-synaptically.",
		Source:   "pubmed",
		Vector:   []float32{3, 4}, // normalized to (0.6, 0.8) on write
	}
	require.NoError(t, repo.AddPapers(ctx, paper))

	got, err := repo.GetPaper(ctx, "11111111")
	require.NoError(t, err)
	assert.Equal(t, "Tau propagation in neural circuits", got.Title)
	assert.Equal(t, core.IDFromContent("11111111"), got.Id)
	assert.InDelta(t, 0.6, got.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, got.Vector[1], 1e-6)
}

func TestGetPaperNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetPaper(context.Background(), "99999999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindSimilarOrdersByCosineSimilarity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	papers := []*core.PaperRecord{
		{PMID: "1", Title: "exact", Vector: []float32{1, 0}},
		{PMID: "2", Title: "close", Vector: []float32{0.9, 0.1}},
		{PMID: "3", Title: "orthogonal", Vector: []float32{0, 1}},
		{PMID: "4", Title: "no vector"},
	}
	require.NoError(t, repo.AddPapers(ctx, papers...))

	matches, err := repo.FindSimilar(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3, "papers without vectors are skipped")

	assert.Equal(t, "1", matches[0].Record.PMID)
	assert.Equal(t, "2", matches[1].Record.PMID)
	assert.Equal(t, "3", matches[2].Record.PMID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	assert.Greater(t, matches[1].Score, matches[2].Score)
}

func TestFindSimilarLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, pmid := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, repo.AddPapers(ctx, &core.PaperRecord{PMID: pmid, Vector: []float32{1, 0}}))
	}

	matches, err := repo.FindSimilar(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestCountAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddPapers(ctx,
		&core.PaperRecord{PMID: "1", Vector: []float32{1, 0}},
		&core.PaperRecord{PMID: "2", Vector: []float32{0, 1}},
	))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.Clear(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddPapersOverwritesByPMID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddPapers(ctx, &core.PaperRecord{PMID: "1", Title: "old"}))
	require.NoError(t, repo.AddPapers(ctx, &core.PaperRecord{PMID: "1", Title: "new"}))

	got, err := repo.GetPaper(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
