package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EntityExtractor extracts structured entities from text via a tool-call
// style LLM request. Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities analyzes text and extracts entities conforming to the
	// core entity type enum, with per-entity confidence.
	// Returns an empty slice if no entities are found.
	// Returns an error if extraction fails; callers are expected to degrade
	// to pattern-only extraction on error.
	ExtractEntities(ctx context.Context, text string) ([]ExtractedEntity, error)
}

// ExtractedEntity represents an entity identified in text by the LLM.
type ExtractedEntity struct {
	// Type is the entity type name, matching one of core.EntityTypes
	// (e.g. "PERSON", "ADDRESS", "PRICE").
	Type string

	// Value is the entity value as it appears in the text.
	Value string

	// Confidence is the model's certainty in [0,1]. When the model supplies
	// no usable certainty, implementations default it to 0.7.
	Confidence float64
}

// Generator produces natural-language answers from a question and an
// assembled retrieval context. Implementations must be thread-safe for
// concurrent use.
type Generator interface {
	// Generate answers the question using the supplied context text.
	// extendedReasoning signals that the model should spend a larger
	// reasoning budget (analytical/behavioral questions).
	Generate(ctx context.Context, question, contextText string, extendedReasoning bool) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder,
// EntityExtractor, and Generator instances, ensuring they share
// configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// EntityExtractor returns the entity extraction service.
	// The returned EntityExtractor is safe for concurrent use.
	EntityExtractor() EntityExtractor

	// Generator returns the answer generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
