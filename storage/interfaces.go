package storage

import (
	"context"
	"time"

	"github.com/poiesic/chatvault/core"
)

// Filter narrows vector queries to documents carrying specific metadata.
// A zero Filter matches everything. Entity keys are compared against the
// normalized entity keys stored on each document; channels are compared
// verbatim.
type Filter struct {
	EntityKeys []string
	Channels   []string
}

// IsZero reports whether the filter imposes no constraints.
func (f Filter) IsZero() bool {
	return len(f.EntityKeys) == 0 && len(f.Channels) == 0
}

// DocumentRepository is the vector-store collaborator: it persists
// retrieval documents and answers similarity queries over them.
// Implementations must be thread-safe and support concurrent access.
type DocumentRepository interface {
	// UpsertDocuments inserts or replaces documents keyed by their
	// deterministic IDs. Re-ingesting identical input supersedes the
	// previous records instead of duplicating them.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	UpsertDocuments(ctx context.Context, docs ...*core.Document) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing ones).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetSessionDocuments retrieves all chunks of one session, ordered by
	// chunk index. Returns an empty slice when the session is unknown.
	GetSessionDocuments(ctx context.Context, sessionID core.ID) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents whose session start time
	// satisfies start <= StartTime < end, ordered by start time.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// GetDocumentsByEntity retrieves IDs of documents whose entity set
	// contains the given normalized entity key.
	GetDocumentsByEntity(ctx context.Context, entityKey string) ([]core.ID, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// Query finds documents similar to the given vector, optionally
	// restricted by filter. Returns up to limit matches with
	// similarity >= minSimilarity, ordered by similarity (highest first).
	Query(ctx context.Context, vector []float32, minSimilarity float32, limit int, filter Filter) ([]*core.SimilarityMatch, error)

	// Close closes the repository and releases resources.
	Close() error
}

// CheckpointRepository is the checkpoint-store collaborator: durable
// per-conversation ingestion status enabling resumable batch processing.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for a conversation,
	// replacing any previous record for the same conversation.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a conversation.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, conversation string) (*core.Checkpoint, error)

	// ListCheckpoints retrieves all stored checkpoints, ordered by
	// conversation name.
	ListCheckpoints(ctx context.Context) ([]*core.Checkpoint, error)
}
