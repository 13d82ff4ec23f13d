package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses a default canned response.
	GenerateFunc func(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a deterministic answer echoing the question.
func (m *MockGenerator) Generate(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, question, contextText, extendedReasoning)
	}

	return fmt.Sprintf("mock answer to %q (context %d chars, extended=%v)",
		question, len(contextText), extendedReasoning), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
}
