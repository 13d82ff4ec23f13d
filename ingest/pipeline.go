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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/extract"
	"github.com/poiesic/chatvault/storage"
)

// Pipeline orchestrates ingestion of a chat export: sessionization,
// entity extraction, chunking, embedding, and upsert into the document
// repository. Conversations are processed concurrently on a bounded
// worker pool; each worker owns one conversation end-to-end, and the
// only shared state is the append-only checkpoint record.
type Pipeline struct {
	documents   storage.DocumentRepository
	checkpoints storage.CheckpointRepository
	provider    ai.AIProvider
	config      *Config
	fileParser  FileParser
	pool        *ants.Pool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithConfig replaces the default ingestion configuration.
func WithConfig(config *Config) Option {
	return func(p *Pipeline) error {
		if err := config.Validate(); err != nil {
			return err
		}
		p.config = config
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent conversations.
// Default is Config.PoolSize.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.config.PoolSize = size
		return nil
	}
}

// WithFileParser sets the attachment text parser.
// Default is a plain-text parser rooted at the export directory.
func WithFileParser(parser FileParser) Option {
	return func(p *Pipeline) error {
		p.fileParser = parser
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingest")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	checkpoints storage.CheckpointRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	p := &Pipeline{
		documents:   documents,
		checkpoints: checkpoints,
		provider:    provider,
		config:      DefaultConfig(),
		logger:      slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(p.config.PoolSize)
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Run ingests the export and returns the per-conversation report.
// Conversations completed in earlier runs are skipped; failed ones are
// retried with backoff until the attempt bound is reached. Failures
// local to one conversation are recorded, not propagated; Run only
// errors when the run as a whole cannot proceed.
func (p *Pipeline) Run(ctx context.Context, export *Export) (*Report, error) {
	report := newReport()
	p.logger.Info("starting ingestion run",
		"runId", report.RunID,
		"conversations", len(export.Conversations()),
		"poolSize", p.config.PoolSize)

	fileParser := p.fileParser
	if fileParser == nil {
		fileParser = NewTextFileParser(export.Root())
	}

	sessionizer := NewSessionizer(p.config.InactivityGap, export.Users(), fileParser)
	chunker := NewChunker(p.config.ChunkTokenThreshold, p.config.ChunkOverlapFraction)
	extractor := extract.NewExtractor(p.provider.EntityExtractor(),
		extract.WithLLMTimeout(p.config.LLMTimeout))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, conv := range export.Conversations() {
		conv := conv

		checkpoint, err := p.checkpoints.LoadCheckpoint(ctx, conv.Name)
		if err != nil {
			return nil, fmt.Errorf("loading checkpoint for %s: %w", conv.Name, err)
		}

		if skip, reason := p.shouldSkip(checkpoint); skip {
			p.logger.Debug("skipping conversation", "conversation", conv.Name, "reason", reason)
			mu.Lock()
			report.Conversations = append(report.Conversations, ConversationReport{
				Conversation: conv.Name,
				Status:       checkpoint.Status,
				Skipped:      true,
			})
			mu.Unlock()
			continue
		}

		attempts := 0
		if checkpoint != nil {
			attempts = checkpoint.Attempts
		}

		wg.Add(1)
		err = p.pool.Submit(func() {
			defer wg.Done()
			result := p.processConversation(ctx, export, conv, sessionizer, chunker, extractor, attempts)
			mu.Lock()
			report.Conversations = append(report.Conversations, result)
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	wg.Wait()
	report.FinishedAt = time.Now().UTC()

	p.logger.Info("ingestion run finished",
		"runId", report.RunID,
		"completed", report.Completed(),
		"failed", report.Failed(),
		"skipped", report.SkippedCount())
	return report, nil
}

// shouldSkip decides whether a conversation's checkpoint excuses it from
// this run.
func (p *Pipeline) shouldSkip(checkpoint *core.Checkpoint) (bool, string) {
	if checkpoint == nil {
		return false, ""
	}
	if checkpoint.Status == core.StatusCompleted {
		return true, "already completed"
	}
	if checkpoint.Attempts >= p.config.MaxAttempts {
		return true, "attempt bound reached"
	}
	return false, ""
}

// processConversation runs one conversation end-to-end and saves its
// checkpoint. attempts is the count of previous failed attempts; a
// retried conversation waits out an exponential backoff first.
func (p *Pipeline) processConversation(
	ctx context.Context,
	export *Export,
	conv Conversation,
	sessionizer *Sessionizer,
	chunker *Chunker,
	extractor *extract.Extractor,
	attempts int,
) ConversationReport {
	logger := p.logger.With("conversation", conv.Name)

	if attempts > 0 {
		if err := p.retryDelay(ctx, attempts); err != nil {
			return p.fail(ctx, conv.Name, attempts, nil, err, logger)
		}
		logger.Info("retrying previously failed conversation", "attempt", attempts+1)
	}

	messages, failures := export.ReadMessages(conv)
	if len(messages) == 0 && len(failures) > 0 {
		return p.fail(ctx, conv.Name, attempts, failures,
			fmt.Errorf("no readable messages in %d file(s)", len(conv.Files)), logger)
	}

	sessions := sessionizer.Sessionize(conv.Name, conv.Kind, messages)
	documents := 0

	for i := range sessions {
		session := &sessions[i]
		session.Entities = p.filterEntities(extractor.Extract(ctx, session.EnrichedTranscript))

		docs := chunker.Chunk(session)
		if err := p.embedDocuments(ctx, docs); err != nil {
			return p.fail(ctx, conv.Name, attempts, failures, fmt.Errorf("embedding session %d: %w", session.Id, err), logger)
		}
		if err := p.documents.UpsertDocuments(ctx, docs...); err != nil {
			return p.fail(ctx, conv.Name, attempts, failures, fmt.Errorf("upserting session %d: %w", session.Id, err), logger)
		}
		documents += len(docs)
	}

	checkpoint := &core.Checkpoint{
		Conversation: conv.Name,
		Status:       core.StatusCompleted,
		Attempts:     attempts + 1,
		Failures:     failures,
	}
	if err := p.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		logger.Error("failed to save checkpoint", "err", err)
	}

	logger.Info("conversation ingested",
		"sessions", len(sessions),
		"documents", documents,
		"fileFailures", len(failures))

	return ConversationReport{
		Conversation: conv.Name,
		Status:       core.StatusCompleted,
		Sessions:     len(sessions),
		Documents:    documents,
		Failures:     failures,
	}
}

// embedDocuments fills in the documents' vectors in one batch call,
// retrying transient embedder errors with backoff.
func (p *Pipeline) embedDocuments(ctx context.Context, docs []*core.Document) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Contents
	}

	var vectors [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.provider.Embedder().EmbedTexts(ctx, texts)
		return embedErr
	}, p.config.MaxAttempts, p.config.RetryBaseDelay)
	if err != nil {
		return err
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	for i, doc := range docs {
		doc.Vector = vectors[i]
	}
	return nil
}

// filterEntities drops entities below the configured confidence floor.
func (p *Pipeline) filterEntities(entities []core.Entity) []core.Entity {
	kept := entities[:0]
	for _, ent := range entities {
		if ent.Confidence >= p.config.EntityConfidenceFloor {
			kept = append(kept, ent)
		}
	}
	return kept
}

// fail records a failed attempt in the checkpoint and reports it.
func (p *Pipeline) fail(
	ctx context.Context,
	conversation string,
	attempts int,
	failures []core.FileFailure,
	cause error,
	logger *slog.Logger,
) ConversationReport {
	logger.Error("conversation ingestion failed", "attempt", attempts+1, "err", cause)

	checkpoint := &core.Checkpoint{
		Conversation: conversation,
		Status:       core.StatusFailed,
		Attempts:     attempts + 1,
		Failures:     failures,
	}
	if err := p.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		logger.Error("failed to save checkpoint", "err", err)
	}

	return ConversationReport{
		Conversation: conversation,
		Status:       core.StatusFailed,
		Failures:     failures,
		Error:        cause.Error(),
	}
}

// retryDelay waits out the exponential backoff owed after earlier failed
// attempts, honoring context cancellation.
func (p *Pipeline) retryDelay(ctx context.Context, attempts int) error {
	delay := p.config.RetryBaseDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
