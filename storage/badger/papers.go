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


package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hypograph/core"
	"github.com/poiesic/hypograph/storage"
)

// PaperRepository implements storage.PaperRepository for BadgerDB.
type PaperRepository struct {
	backend *Backend
}

var _ storage.PaperRepository = (*PaperRepository)(nil)

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(backend *Backend) *PaperRepository {
	return &PaperRepository{backend: backend}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *PaperRepository) Close() error {
	return nil
}

// AddPapers stores one or more paper records keyed by PMID.
// Vectors are normalized before storage so FindSimilar can use a plain dot
// product as cosine similarity.
func (r *PaperRepository) AddPapers(ctx context.Context, papers ...*core.PaperRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, paper := range papers {
			if paper.Id == 0 {
				paper.Id = core.IDFromContent(paper.PMID)
			}
			if len(paper.Vector) > 0 {
				paper.Vector = Normalize(paper.Vector)
			}
			value := storage.MarshalPaperRecord(paper)
			if err := tx.Set(makePaperKey(paper.PMID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPaper retrieves a single paper by PMID.
func (r *PaperRepository) GetPaper(ctx context.Context, pmid string) (*core.PaperRecord, error) {
	var record *core.PaperRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePaperKey(pmid))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalPaperRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindSimilar scans all stored papers and ranks them by cosine similarity to
// the query vector. The index is small enough (thousands of abstracts) that a
// full scan beats maintaining an approximate-nearest-neighbor structure.
func (r *PaperRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.PaperMatch, error) {
	query := Normalize(slices.Clone(vector))

	var results []*core.PaperMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(paperRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var record *core.PaperRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalPaperRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			results = append(results, &core.PaperMatch{
				Record: record,
				Score:  dotProduct(query, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.PaperMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored paper records.
func (r *PaperRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(paperRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Clear removes all paper records. Used by index rebuilds.
func (r *PaperRepository) Clear(ctx context.Context) error {
	return r.backend.DropPrefix([]byte(paperRecordPrefix))
}
