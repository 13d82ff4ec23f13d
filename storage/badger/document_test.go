package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(channel string, start time.Time, contents string) *core.Document {
	sessionID := core.SessionID(channel, start)
	return &core.Document{
		Id:           sessionID,
		SessionId:    sessionID,
		ChunkIndex:   0,
		ChunkCount:   1,
		Channel:      channel,
		Kind:         core.KindChannel,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		MessageCount: 3,
		Contents:     contents,
	}
}

func TestUpsertDocuments_Idempotent(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	doc := testDocument("general", start, "alice: hi")
	require.NoError(t, docRepo.UpsertDocuments(ctx, doc))
	firstInserted := doc.InsertedAt

	// Re-upsert the same deterministic ID: supersedes, never duplicates
	again := testDocument("general", start, "alice: hi (reprocessed)")
	require.NoError(t, docRepo.UpsertDocuments(ctx, again))

	got, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice: hi (reprocessed)", got.Contents)
	assert.Equal(t, firstInserted, got.InsertedAt)
	assert.True(t, got.UpdatedAt.After(got.InsertedAt) || got.UpdatedAt.Equal(got.InsertedAt))

	// Only one session document exists
	docs, err := docRepo.GetSessionDocuments(ctx, doc.SessionId)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpsertDocuments_StampsMatchStoredPrecision(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	doc := testDocument("general", start, "alice: hi")
	require.NoError(t, docRepo.UpsertDocuments(ctx, doc))

	// The timestamps stamped on the in-memory document survive the
	// serialization round trip exactly.
	got, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, doc.InsertedAt, got.InsertedAt)
	assert.Equal(t, doc.UpdatedAt, got.UpdatedAt)
	assert.Equal(t, doc, got)
}

func TestGetDocument_NotFound(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	_, err = docRepo.GetDocument(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetSessionDocuments_OrderedByChunkIndex(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	sessionID := core.SessionID("general", start)

	// Insert chunks out of order
	for _, idx := range []int{2, 0, 1} {
		doc := testDocument("general", start, "chunk")
		doc.Id = core.ChunkID(sessionID, idx)
		doc.ChunkIndex = idx
		doc.ChunkCount = 3
		require.NoError(t, docRepo.UpsertDocuments(ctx, doc))
	}

	docs, err := docRepo.GetSessionDocuments(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, i, doc.ChunkIndex)
	}
}

func TestGetDocumentsByEntity(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	withEntity := testDocument("deals-west", start, "asking price for 156 Seymour is $850,000")
	withEntity.Entities = []core.Entity{
		{Type: core.EntityAddress, Value: "156 Seymour", Key: "156 seymour", Confidence: 0.85, Sources: core.SourcePattern},
	}
	require.NoError(t, docRepo.UpsertDocuments(ctx, withEntity))

	without := testDocument("general", start.Add(time.Hour), "lunch plans")
	require.NoError(t, docRepo.UpsertDocuments(ctx, without))

	ids, err := docRepo.GetDocumentsByEntity(ctx, "156 seymour")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, withEntity.Id, ids[0])

	ids, err = docRepo.GetDocumentsByEntity(ctx, "unknown entity")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetDocumentsByDateRange(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	base := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		doc := testDocument("general", base.AddDate(0, 0, i), "day")
		require.NoError(t, docRepo.UpsertDocuments(ctx, doc))
	}

	docs, err := docRepo.GetDocumentsByDateRange(ctx, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestQuery_EntityFilterNarrowsResults(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	seymour := testDocument("deals-west", start, "156 Seymour asking $850,000")
	seymour.Vector = []float32{0.9, 0.1, 0.0}
	seymour.Entities = []core.Entity{
		{Type: core.EntityAddress, Value: "156 Seymour", Key: "156 seymour", Confidence: 0.85, Sources: core.SourcePattern},
	}
	require.NoError(t, docRepo.UpsertDocuments(ctx, seymour))

	other := testDocument("deals-west", start.Add(time.Hour), "88 Main listed at $500,000")
	other.Vector = []float32{0.88, 0.12, 0.0}
	other.Entities = []core.Entity{
		{Type: core.EntityAddress, Value: "88 Main", Key: "88 main", Confidence: 0.85, Sources: core.SourcePattern},
	}
	require.NoError(t, docRepo.UpsertDocuments(ctx, other))

	queryVec := []float32{0.9, 0.1, 0.0}

	// Filtered: only the matching entity's document
	filtered, err := docRepo.Query(ctx, queryVec, 0.5, 10, storage.Filter{EntityKeys: []string{"156 seymour"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, seymour.Id, filtered[0].Document.Id)

	// Unfiltered: a superset
	unfiltered, err := docRepo.Query(ctx, queryVec, 0.5, 10, storage.Filter{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(unfiltered), len(filtered))
}

func TestQuery_ChannelFilter(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	west := testDocument("deals-west", start, "west side deal")
	west.Vector = []float32{1, 0, 0}
	require.NoError(t, docRepo.UpsertDocuments(ctx, west))

	east := testDocument("deals-east", start, "east side deal")
	east.Vector = []float32{1, 0, 0}
	require.NoError(t, docRepo.UpsertDocuments(ctx, east))

	matches, err := docRepo.Query(ctx, []float32{1, 0, 0}, 0.5, 10, storage.Filter{Channels: []string{"deals-west"}})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "deals-west", matches[0].Document.Channel)
}

func TestQuery_SortedByScoreAndLimited(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	vectors := [][]float32{
		{1.0, 0.0, 0.0},
		{0.9, 0.1, 0.0},
		{0.1, 0.9, 0.0},
	}
	for i, vec := range vectors {
		doc := testDocument("general", start.Add(time.Duration(i)*time.Hour), "doc")
		doc.Vector = vec
		require.NoError(t, docRepo.UpsertDocuments(ctx, doc))
	}

	matches, err := docRepo.Query(ctx, []float32{1, 0, 0}, 0.0, 2, storage.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestDeleteDocuments(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	doc := testDocument("general", start, "to be deleted")
	doc.Entities = []core.Entity{
		{Type: core.EntityPerson, Value: "Alice Chen", Key: "alice chen", Confidence: 0.4, Sources: core.SourcePattern},
	}
	require.NoError(t, docRepo.UpsertDocuments(ctx, doc))
	require.NoError(t, docRepo.DeleteDocuments(ctx, doc.Id))

	_, err = docRepo.GetDocument(ctx, doc.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Index entries removed too
	ids, err := docRepo.GetDocumentsByEntity(ctx, "alice chen")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// Deleting again reports not found
	assert.ErrorIs(t, docRepo.DeleteDocuments(ctx, doc.Id), storage.ErrNotFound)
}
