package storage

import (
	"context"

	"github.com/poiesic/hypograph/core"
)

// PaperRepository provides operations for managing the literature evidence
// index. Implementations must be thread-safe and support concurrent access:
// the pipeline shares one repository across all in-flight requests and only
// the index builder writes.
type PaperRepository interface {
	// AddPapers stores one or more paper records. Records are keyed by PMID;
	// re-adding an existing PMID overwrites the stored record.
	AddPapers(ctx context.Context, papers ...*core.PaperRecord) error

	// GetPaper retrieves a single paper by PMID.
	// Returns ErrNotFound if the paper doesn't exist.
	GetPaper(ctx context.Context, pmid string) (*core.PaperRecord, error)

	// FindSimilar finds papers whose vectors are most similar to the given
	// vector. Results are ordered by cosine similarity, highest first, up to
	// limit entries. Papers without a vector are skipped.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.PaperMatch, error)

	// Count returns the number of stored paper records.
	Count(ctx context.Context) (int, error)

	// Clear removes all paper records. Used by index rebuilds.
	Clear(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}
