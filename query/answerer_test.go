package query

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/chatvault/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswer_GeneratesFromRetrievedContext(t *testing.T) {
	provider := fixedEmbedder([]float32{1, 0, 0})

	var (
		capturedContext  string
		capturedExtended bool
	)
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error) {
		capturedContext = contextText
		capturedExtended = extendedReasoning
		return "the asking price was $850,000", nil
	}

	doc := queryDocument("deals-west", 9, "mike: asking is $850,000 for 156 Seymour", []float32{1, 0, 0})
	_, docRepo := newTestRetriever(t, provider, doc)

	answerer, err := NewAnswerer(docRepo, provider, nil)
	require.NoError(t, err)

	answer, err := answerer.Answer(context.Background(), "what is the asking price?")
	require.NoError(t, err)

	assert.Equal(t, "the asking price was $850,000", answer.Text)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, doc.Id, answer.Sources[0].Document.Id)
	assert.Contains(t, capturedContext, "asking is $850,000")
	assert.Contains(t, capturedContext, "--- #deals-west")
	assert.False(t, capturedExtended, "factual questions use standard reasoning")
}

func TestAnswer_ExtendedReasoningForwarded(t *testing.T) {
	provider := fixedEmbedder([]float32{1, 0, 0})

	var capturedExtended bool
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error) {
		capturedExtended = extendedReasoning
		return "summary", nil
	}

	doc := queryDocument("general", 9, "pricing debate transcript", []float32{1, 0, 0})
	_, docRepo := newTestRetriever(t, provider, doc)

	answerer, err := NewAnswerer(docRepo, provider, nil)
	require.NoError(t, err)

	_, err = answerer.Answer(context.Background(), "Summarize the discussion about pricing")
	require.NoError(t, err)
	assert.True(t, capturedExtended)
}

func TestAnswer_EmptyArchive(t *testing.T) {
	provider := fixedEmbedder([]float32{1, 0, 0})
	generatorCalled := false
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error) {
		generatorCalled = true
		return "", nil
	}

	_, docRepo := newTestRetriever(t, provider)
	answerer, err := NewAnswerer(docRepo, provider, nil)
	require.NoError(t, err)

	answer, err := answerer.Answer(context.Background(), "what is the asking price?")
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Text, "No relevant conversations")
	assert.False(t, generatorCalled, "no context means no generation call")
}

func TestAnswer_RetrievalFailurePropagates(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	_, docRepo := newTestRetriever(t, provider,
		queryDocument("general", 9, "content", []float32{1, 0, 0}))

	answerer, err := NewAnswerer(docRepo, provider, nil)
	require.NoError(t, err)

	_, err = answerer.Answer(context.Background(), "what is the asking price?")
	assert.ErrorIs(t, err, ErrRetrievalUnavailable)
}

func TestAnswer_GeneratorFailurePropagates(t *testing.T) {
	provider := fixedEmbedder([]float32{1, 0, 0})
	provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error) {
		return "", errors.New("chat model unavailable")
	}

	_, docRepo := newTestRetriever(t, provider,
		queryDocument("general", 9, "content", []float32{1, 0, 0}))

	answerer, err := NewAnswerer(docRepo, provider, nil)
	require.NoError(t, err)

	_, err = answerer.Answer(context.Background(), "what is the asking price?")
	assert.ErrorContains(t, err, "chat model unavailable")
}

func TestNewAnswerer_RequiresDependencies(t *testing.T) {
	provider := mock.NewMockProvider()

	_, err := NewAnswerer(nil, provider, nil)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, docRepo := newTestRetriever(t, mock.NewMockProvider().(*mock.MockProvider))
	_, err = NewAnswerer(docRepo, nil, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
