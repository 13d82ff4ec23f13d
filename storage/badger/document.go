package badger

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (storage.DocumentRepository, error) {
	return &DocumentRepository{
		backend: backend,
	}, nil
}

// Close releases resources. DocumentRepository has no resources to release
// beyond the shared backend.
func (r *DocumentRepository) Close() error {
	return nil
}

// UpsertDocuments inserts or replaces documents keyed by their deterministic IDs.
func (r *DocumentRepository) UpsertDocuments(ctx context.Context, docs ...*core.Document) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			// Read any previous version so stale index entries can be
			// removed and InsertedAt preserved.
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}

			// Microsecond precision, matching what the serializers keep,
			// so the stamped document equals its re-read form.
			now := time.Now().UTC().Truncate(time.Microsecond)
			if old != nil {
				doc.InsertedAt = old.InsertedAt
				if err := deleteDocumentIndexes(tx, old); err != nil {
					return err
				}
			} else {
				doc.InsertedAt = now
			}
			doc.UpdatedAt = now

			// Store primary record
			value := storage.MarshalDocument(doc)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if err := writeDocumentIndexes(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		var err error
		result, err = readDocument(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)
			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetSessionDocuments retrieves all chunks of one session, ordered by chunk index.
func (r *DocumentRepository) GetSessionDocuments(ctx context.Context, sessionID core.ID) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialDocumentSessionKey(sessionID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetDocumentsByDateRange retrieves documents within a time range.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDocumentDateKey(start)
		endKey := makePartialDocumentDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, []byte(documentDatePrefix+":")) {
				break
			}
			if slices.Compare(key, endKey) > 0 {
				break
			}

			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetDocumentsByEntity retrieves IDs of documents carrying the given
// normalized entity key.
func (r *DocumentRepository) GetDocumentsByEntity(ctx context.Context, entityKey string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialDocumentEntityKey(entityKey)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, docID)
		}
		return nil
	}, false)

	return ids, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if err := deleteDocumentIndexes(tx, doc); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query finds documents similar to the given vector, optionally restricted
// by filter. With an entity filter the candidate set comes from the entity
// index; otherwise all documents are scanned.
func (r *DocumentRepository) Query(ctx context.Context, vector []float32, minSimilarity float32, limit int, filter storage.Filter) ([]*core.SimilarityMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SimilarityMatch

	score := func(doc *core.Document) {
		if doc == nil || len(doc.Vector) == 0 {
			return
		}
		if !channelAllowed(doc, filter.Channels) {
			return
		}
		similarity := dotProduct(vector, doc.Vector)
		if similarity >= minSimilarity {
			results = append(results, &core.SimilarityMatch{
				Document: doc,
				Score:    similarity,
			})
		}
	}

	var err error
	if len(filter.EntityKeys) > 0 {
		// Narrow candidates through the entity index.
		candidates := make(map[core.ID]bool)
		for _, entityKey := range filter.EntityKeys {
			ids, idsErr := r.GetDocumentsByEntity(ctx, entityKey)
			if idsErr != nil {
				return nil, idsErr
			}
			for _, id := range ids {
				candidates[id] = true
			}
		}

		err = r.backend.WithTx(func(tx *badger.Txn) error {
			for id := range candidates {
				doc, readErr := readDocument(tx, makeDocumentKey(id))
				if readErr != nil {
					return readErr
				}
				score(doc)
			}
			return nil
		}, false)
	} else {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(documentPrefix)
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Rewind(); iter.Valid(); iter.Next() {
				key := iter.Item().Key()

				// Skip index keys sharing the primary prefix
				if bytes.HasPrefix(key, []byte(documentDatePrefix)) ||
					bytes.HasPrefix(key, []byte(documentEntityPrefix)) ||
					bytes.HasPrefix(key, []byte(documentSessionPrefix)) {
					continue
				}

				var doc *core.Document
				if readErr := iter.Item().Value(func(val []byte) error {
					var valErr error
					doc, valErr = storage.UnmarshalDocument(val)
					return valErr
				}); readErr != nil {
					return readErr
				}
				score(doc)
			}
			return nil
		}, false)
	}

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// channelAllowed reports whether the document's channel passes the filter.
func channelAllowed(doc *core.Document, channels []string) bool {
	if len(channels) == 0 {
		return true
	}
	return slices.Contains(channels, doc.Channel)
}

// readDocument reads and unmarshals a document. Returns nil, nil when the
// key does not exist.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var valErr error
		doc, valErr = storage.UnmarshalDocument(val)
		return valErr
	})
	return doc, err
}

// writeDocumentIndexes writes the date, entity, and session index entries
// for a document.
func writeDocumentIndexes(tx *badger.Txn, doc *core.Document) error {
	idValue := storage.MarshalID(doc.Id)

	dateKey := makeDocumentDateKey(doc.StartTime, doc.Id)
	if err := tx.Set(dateKey, idValue); err != nil {
		return err
	}

	sessionKey := makeDocumentSessionKey(doc.SessionId, doc.ChunkIndex)
	if err := tx.Set(sessionKey, idValue); err != nil {
		return err
	}

	for i := range doc.Entities {
		entityKey := makeDocumentEntityKey(doc.Entities[i].Key, doc.Id)
		if err := tx.Set(entityKey, idValue); err != nil {
			return err
		}
	}
	return nil
}

// deleteDocumentIndexes removes the date, entity, and session index entries
// for a document.
func deleteDocumentIndexes(tx *badger.Txn, doc *core.Document) error {
	if err := tx.Delete(makeDocumentDateKey(doc.StartTime, doc.Id)); err != nil {
		return err
	}
	if err := tx.Delete(makeDocumentSessionKey(doc.SessionId, doc.ChunkIndex)); err != nil {
		return err
	}
	for i := range doc.Entities {
		if err := tx.Delete(makeDocumentEntityKey(doc.Entities[i].Key, doc.Id)); err != nil {
			return err
		}
	}
	return nil
}
