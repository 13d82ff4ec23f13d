package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/chatvault/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "docrec"
	documentDatePrefix    = "docrecd"
	documentEntityPrefix  = "docrece"
	documentSessionPrefix = "docrecs"
	checkpointPrefix      = "convchk"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// entityKeyID hashes a normalized entity key into a fixed-width index
// component. Deterministic, so the same entity value always lands on the
// same index slot.
func entityKeyID(entityKey string) core.ID {
	return core.IDFromContent(entityKey)
}

// makeDocumentEntityKey generates a composite key for the entity index.
// Format: prefix:entityKeyHash:docID
func makeDocumentEntityKey(entityKey string, docID core.ID) []byte {
	prefix := documentEntityPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for entity hash + 8 bytes for docID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(entityKeyID(entityKey)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makePartialDocumentEntityKey generates a partial key for entity queries.
// Format: prefix:entityKeyHash
func makePartialDocumentEntityKey(entityKey string) []byte {
	prefix := documentEntityPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for entity hash
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(entityKeyID(entityKey)))
	return buf
}

// makeDocumentSessionKey generates a composite key for the session index.
// Format: prefix:sessionID:chunkIndex
func makeDocumentSessionKey(sessionID core.ID, chunkIndex int) []byte {
	prefix := documentSessionPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for sessionID + 8 bytes for chunk index
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makePartialDocumentSessionKey generates a partial key for session queries.
// Format: prefix:sessionID
func makePartialDocumentSessionKey(sessionID core.ID) []byte {
	prefix := documentSessionPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for sessionID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(sessionID))
	return buf
}

// makeCheckpointKey generates a key for a conversation checkpoint.
func makeCheckpointKey(conversation string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, conversation))
}
