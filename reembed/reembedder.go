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
	"io"
	"time"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
)

// Config holds the reembedding knobs.
type Config struct {
	// BatchSize is the number of documents per embedding call.
	BatchSize int

	// ReportInterval is how often to report progress, in documents.
	ReportInterval int

	// MaxRetries is the maximum retry attempts for embedding calls.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder rewrites the vectors of every document in the archive.
type Reembedder struct {
	repo      storage.DocumentRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a reembedder. progress is where progress output
// is written, typically os.Stderr.
func NewReembedder(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewDocumentIterator(repo, config.BatchSize),
	}
}

// Run re-embeds every document in the archive, reporting progress to the
// configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 23, 59, 59, 0, time.UTC)

	all, err := r.repo.GetDocumentsByDateRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}

	total := len(all)
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in archive (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(documents []*core.Document) error {
		if err := r.processor.Process(ctx, documents); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(documents)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
