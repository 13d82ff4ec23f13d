package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chatvault/ai/mock"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
	"github.com/poiesic/chatvault/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(channel string, hour int, contents string) *core.Document {
	start := time.Date(2025, 3, 14, hour, 0, 0, 0, time.UTC)
	id := core.SessionID(channel, start)
	return &core.Document{
		Id:           id,
		SessionId:    id,
		ChunkCount:   1,
		Channel:      channel,
		Kind:         core.KindChannel,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		MessageCount: 3,
		Contents:     contents,
		Vector:       []float32{1, 0, 0},
	}
}

func newTestRepo(t *testing.T, docs ...*core.Document) storage.DocumentRepository {
	t.Helper()
	docRepo, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})

	if len(docs) > 0 {
		require.NoError(t, docRepo.UpsertDocuments(context.Background(), docs...))
	}
	return docRepo
}

func TestReembedder_RewritesAllVectors(t *testing.T) {
	docs := []*core.Document{
		testDocument("general", 9, "first session"),
		testDocument("general", 12, "second session"),
		testDocument("deals-west", 15, "third session"),
	}
	repo := newTestRepo(t, docs...)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0, 2, 0} // not unit length on purpose
		}
		return out, nil
	}

	var progress bytes.Buffer
	r := NewReembedder(repo, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}, &progress)

	require.NoError(t, r.Run(context.Background()))

	for _, doc := range docs {
		stored, err := repo.GetDocument(context.Background(), doc.Id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 1, 0}, stored.Vector, "vector must be normalized")
	}
	assert.Contains(t, progress.String(), "Reembedding complete")
}

func TestReembedder_EmptyArchive(t *testing.T) {
	repo := newTestRepo(t)

	var progress bytes.Buffer
	r := NewReembedder(repo, mock.NewMockEmbedder(), nil, &progress)

	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, progress.String(), "No documents found")
}

func TestReembedder_TransientFailureRetries(t *testing.T) {
	repo := newTestRepo(t, testDocument("general", 9, "only session"))

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("embedding service overloaded")
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}

	var progress bytes.Buffer
	r := NewReembedder(repo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}, &progress)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReembedder_PersistentFailure(t *testing.T) {
	repo := newTestRepo(t, testDocument("general", 9, "only session"))

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var progress bytes.Buffer
	r := NewReembedder(repo, embedder, &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &progress)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}
