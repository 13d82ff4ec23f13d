package mock

import (
	"context"
	"strings"

	"github.com/poiesic/chatvault/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default keyword-based behavior.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.ExtractedEntity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: reports a PRICE for any "$" token and a PERSON for any
// capitalized word pair, which is enough for pipeline-level tests.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	entities := []ai.ExtractedEntity{}
	words := strings.Fields(text)
	for i, word := range words {
		if strings.HasPrefix(word, "$") && len(word) > 1 {
			entities = append(entities, ai.ExtractedEntity{
				Type:       "PRICE",
				Value:      strings.Trim(word, ".,!?;:"),
				Confidence: 0.9,
			})
			continue
		}
		if i+1 < len(words) && isCapitalized(word) && isCapitalized(words[i+1]) {
			entities = append(entities, ai.ExtractedEntity{
				Type:       "PERSON",
				Value:      strings.Trim(word, ".,!?;:") + " " + strings.Trim(words[i+1], ".,!?;:"),
				Confidence: 0.7,
			})
		}
	}

	return entities, nil
}

func isCapitalized(word string) bool {
	return len(word) > 1 && word[0] >= 'A' && word[0] <= 'Z'
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
