package reembed

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/chatvault/ai/mock"
	"github.com/poiesic/chatvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	bp := NewBatchProcessor(newTestRepo(t), mock.NewMockEmbedder(), 1, time.Millisecond)
	assert.NoError(t, bp.Process(context.Background(), nil))
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	doc := testDocument("general", 9, "session")
	repo := newTestRepo(t, doc)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}, {0, 1}}, nil // one document, two vectors
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	err := bp.Process(context.Background(), []*core.Document{doc})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBatchProcessor_EmbedsContents(t *testing.T) {
	doc := testDocument("general", 9, "mike: hello there")
	repo := newTestRepo(t, doc)

	var embedded []string
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embedded = texts
		return [][]float32{{0, 3, 4}}, nil
	}

	bp := NewBatchProcessor(repo, embedder, 1, time.Millisecond)
	require.NoError(t, bp.Process(context.Background(), []*core.Document{doc}))

	assert.Equal(t, []string{"mike: hello there"}, embedded)

	stored, err := repo.GetDocument(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, stored.Vector[1], 1e-6)
	assert.InDelta(t, 0.8, stored.Vector[2], 1e-6)
}
