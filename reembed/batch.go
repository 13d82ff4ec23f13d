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
	"fmt"
	"time"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
)

// BatchProcessor re-embeds one batch of documents and writes them back.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the documents' contents in one batch call, normalizes
// the vectors, and upserts the documents. Transient embedding errors are
// retried with exponential backoff.
func (bp *BatchProcessor) Process(ctx context.Context, documents []*core.Document) error {
	if len(documents) == 0 {
		return nil
	}

	texts := make([]string, len(documents))
	for i, doc := range documents {
		texts[i] = doc.Contents
	}

	var embeddings [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(documents) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(documents), len(embeddings))
	}

	for i := range documents {
		documents[i].Vector = NormalizeVector(embeddings[i])
	}

	if err := bp.repo.UpsertDocuments(ctx, documents...); err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}

	return nil
}
