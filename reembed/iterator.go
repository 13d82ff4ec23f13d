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


package reembed

import (
	"context"
	"time"

	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
)

// DefaultBatchSize is the default number of documents per batch.
const DefaultBatchSize = 100

// DocumentIterator walks every document in the repository in batches.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates an iterator. A non-positive batchSize uses
// the default.
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn once per batch until all documents are processed or
// fn returns an error. Context cancellation is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// The date index covers every stored document, so a wide range is a
	// full scan in start-time order.
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	documents, err := it.repo.GetDocumentsByDateRange(ctx, start, end)
	if err != nil {
		return err
	}

	for i := 0; i < len(documents); i += it.batchSize {
		j := i + it.batchSize
		if j > len(documents) {
			j = len(documents)
		}

		if err := fn(documents[i:j]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
