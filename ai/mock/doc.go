// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder,
// ai.EntityExtractor, ai.Generator, and ai.AIProvider for use in unit tests.
// The mocks allow tests to run without external AI service dependencies and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockExtractor := mock.NewMockEntityExtractor()
//	mockExtractor.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	// Check call counts
//	count := mockExtractor.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockEntityExtractor: Reports prices and capitalized name pairs
//   - MockGenerator: Returns a canned answer echoing the question
//   - MockProvider: Aggregates the three mocks
package mock
