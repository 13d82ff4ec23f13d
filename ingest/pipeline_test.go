package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/ai/mock"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
	"github.com/poiesic/chatvault/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		InactivityGap:         6 * time.Hour,
		ChunkTokenThreshold:   10000,
		ChunkOverlapFraction:  0.10,
		EntityConfidenceFloor: 0.3,
		PoolSize:              2,
		MaxAttempts:           3,
		RetryBaseDelay:        time.Millisecond,
		LLMTimeout:            time.Second,
	}
}

func newTestPipeline(t *testing.T, provider ai.AIProvider) (*Pipeline, storage.DocumentRepository, storage.CheckpointRepository) {
	t.Helper()
	docRepo, checkpointRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})

	pipeline, err := NewPipeline(docRepo, checkpointRepo, provider, WithConfig(testConfig()))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return pipeline, docRepo, checkpointRepo
}

const pipelineExportUsers = `[{"id": "U1", "name": "mike"}, {"id": "U2", "name": "sara"}]`

func pipelineExport(t *testing.T) *Export {
	root := writeExport(t, map[string]string{
		"users.json": pipelineExportUsers,
		"deals-west/2025-03-14.json": `[
			{"ts": "2025-03-14T09:00:00Z", "user": "U1", "text": "offer on 156 Seymour at $850,000", "type": "message"},
			{"ts": "2025-03-14T09:05:00Z", "user": "U2", "text": "nice, MLS 88123 right?", "type": "message"},
			{"ts": "2025-03-14T17:00:00Z", "user": "U1", "text": "countered at $875,000", "type": "message"}
		]`,
		"general/2025-03-14.json": `[
			{"ts": "2025-03-14T12:00:00Z", "user": "U2", "text": "lunch?", "type": "message"}
		]`,
	})

	export, err := OpenExport(root)
	require.NoError(t, err)
	return export
}

func TestPipelineRun_IngestsConversations(t *testing.T) {
	pipeline, docRepo, checkpointRepo := newTestPipeline(t, mock.NewMockProvider())
	export := pipelineExport(t)
	ctx := context.Background()

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Completed())
	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 0, report.SkippedCount())

	// deals-west splits at the 8h gap into two sessions
	morning := core.SessionID("deals-west", time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	evening := core.SessionID("deals-west", time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC))

	docs, err := docRepo.GetSessionDocuments(ctx, morning)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Contents, "156 Seymour")
	assert.NotEmpty(t, docs[0].Vector, "documents are embedded before upsert")
	assert.NotEmpty(t, docs[0].Entities)

	docs, err = docRepo.GetSessionDocuments(ctx, evening)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	checkpoint, err := checkpointRepo.LoadCheckpoint(ctx, "deals-west")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, core.StatusCompleted, checkpoint.Status)
}

func TestPipelineRun_SecondRunSkipsCompleted(t *testing.T) {
	pipeline, docRepo, _ := newTestPipeline(t, mock.NewMockProvider())
	export := pipelineExport(t)
	ctx := context.Background()

	_, err := pipeline.Run(ctx, export)
	require.NoError(t, err)

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Completed())
	assert.Equal(t, 2, report.SkippedCount())

	// Idempotent either way: same deterministic IDs, no duplicates
	morning := core.SessionID("deals-west", time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	docs, err := docRepo.GetSessionDocuments(ctx, morning)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestPipelineRun_LLMFailureDegradesNotFails(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockExtractor().ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
		return nil, errors.New("model server down")
	}

	pipeline, docRepo, _ := newTestPipeline(t, provider)
	export := pipelineExport(t)
	ctx := context.Background()

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Completed())

	// Pattern-extracted entities still present
	morning := core.SessionID("deals-west", time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC))
	docs, err := docRepo.GetSessionDocuments(ctx, morning)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	var hasPrice bool
	for _, ent := range docs[0].Entities {
		if ent.Type == core.EntityPrice {
			hasPrice = true
			assert.Equal(t, core.SourcePattern, ent.Sources)
		}
	}
	assert.True(t, hasPrice)
}

func TestPipelineRun_EmbedderFailureFailsConversation(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service unavailable")
	}

	pipeline, _, checkpointRepo := newTestPipeline(t, provider)
	export := pipelineExport(t)
	ctx := context.Background()

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed())

	checkpoint, err := checkpointRepo.LoadCheckpoint(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, core.StatusFailed, checkpoint.Status)
	assert.Equal(t, 1, checkpoint.Attempts)
}

func TestPipelineRun_RetriesFailedThenSucceeds(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	failing := true
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failing {
			return nil, errors.New("flaky")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	pipeline, _, checkpointRepo := newTestPipeline(t, provider)
	export := pipelineExport(t)
	ctx := context.Background()

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed())

	failing = false
	report, err = pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Completed())

	checkpoint, err := checkpointRepo.LoadCheckpoint(ctx, "deals-west")
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, checkpoint.Status)
	assert.Equal(t, 2, checkpoint.Attempts)
}

func TestPipelineRun_AttemptBoundStopsRetries(t *testing.T) {
	pipeline, _, checkpointRepo := newTestPipeline(t, mock.NewMockProvider())
	export := pipelineExport(t)
	ctx := context.Background()

	require.NoError(t, checkpointRepo.SaveCheckpoint(ctx, &core.Checkpoint{
		Conversation: "deals-west",
		Status:       core.StatusFailed,
		Attempts:     3,
	}))

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedCount())
	assert.Equal(t, 1, report.Completed())
}

func TestPipelineRun_CorruptDailyFileRecordedInCheckpoint(t *testing.T) {
	root := writeExport(t, map[string]string{
		"users.json":              pipelineExportUsers,
		"general/2025-03-14.json": `broken`,
		"general/2025-03-15.json": `[
			{"ts": "2025-03-15T09:00:00Z", "user": "U1", "text": "still here", "type": "message"}
		]`,
	})
	export, err := OpenExport(root)
	require.NoError(t, err)

	pipeline, _, checkpointRepo := newTestPipeline(t, mock.NewMockProvider())
	ctx := context.Background()

	report, err := pipeline.Run(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed())

	checkpoint, err := checkpointRepo.LoadCheckpoint(ctx, "general")
	require.NoError(t, err)
	require.NotNil(t, checkpoint)
	assert.Equal(t, core.StatusCompleted, checkpoint.Status)
	require.Len(t, checkpoint.Failures, 1)
	assert.Contains(t, checkpoint.Failures[0].Reason, "invalid JSON")
}

func TestNewPipeline_RequiredDependencies(t *testing.T) {
	docRepo, checkpointRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	_, err = NewPipeline(nil, checkpointRepo, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(docRepo, nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrCheckpointRepositoryRequired)

	_, err = NewPipeline(docRepo, checkpointRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
