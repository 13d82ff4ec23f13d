package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical input
// always yields the identical ID, which makes re-ingestion idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SessionID derives the deterministic ID for a session from its channel
// name and start time.
func SessionID(channel string, start time.Time) ID {
	return IDFromContent(channel + "|" + start.UTC().Format(time.RFC3339Nano))
}

// ChunkID derives the deterministic ID for a chunk of a session.
func ChunkID(sessionID ID, index int) ID {
	return IDFromContent(strconv.FormatUint(uint64(sessionID), 10) + "#" + strconv.Itoa(index))
}

// ConversationKind identifies the kind of conversation a message stream
// belongs to.
type ConversationKind int

const (
	// KindChannel represents a named multi-user channel.
	KindChannel ConversationKind = iota + 1
	// KindDM represents a direct message conversation between two users.
	KindDM
	// KindGroup represents a private group conversation.
	KindGroup
)

// String returns the lowercase name of the conversation kind.
func (k ConversationKind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindDM:
		return "dm"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// RawMessage is a single message as read from an export file.
// Immutable once parsed.
type RawMessage struct {
	Timestamp time.Time
	UserID    string
	Text      string
	Type      string   // export message type, e.g. "message", "join", "system"
	FileRefs  []string // references to attached files, relative to the export root
}

// UserRecord maps a raw user ID to its display identity.
// Built once per export and read-only during sessionization.
type UserRecord struct {
	UserID      string
	DisplayName string
	IsBot       bool
}

// Session is a bounded group of consecutive messages in one conversation,
// split from its neighbors by an inactivity gap. Sessions are created once
// per ingestion pass and are immutable afterwards except for entity
// annotation and chunk derivation.
type Session struct {
	Id                 ID
	Channel            string
	Kind               ConversationKind
	StartTime          time.Time
	EndTime            time.Time
	MessageCount       int
	FileCount          int
	Transcript         string // display-name resolved message lines
	EnrichedTranscript string // transcript plus extracted attachment text
	Entities           []Entity
}

// EntityType categorizes an extracted entity.
type EntityType int

const (
	EntityPerson EntityType = iota + 1
	EntityAddress
	EntityDeal
	EntityCompany
	EntityListingID
	EntityPrice
	EntityDateReference
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityAddress,
	EntityDeal,
	EntityCompany,
	EntityListingID,
	EntityPrice,
	EntityDateReference,
}

// String returns the canonical name of the entity type.
func (t EntityType) String() string {
	switch t {
	case EntityPerson:
		return "PERSON"
	case EntityAddress:
		return "ADDRESS"
	case EntityDeal:
		return "DEAL"
	case EntityCompany:
		return "COMPANY"
	case EntityListingID:
		return "LISTING_ID"
	case EntityPrice:
		return "PRICE"
	case EntityDateReference:
		return "DATE_REFERENCE"
	default:
		return "UNKNOWN"
	}
}

// ParseEntityType maps a type name to its EntityType.
// Returns 0 and false for unrecognized names.
func ParseEntityType(name string) (EntityType, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "PERSON":
		return EntityPerson, true
	case "ADDRESS":
		return EntityAddress, true
	case "DEAL":
		return EntityDeal, true
	case "COMPANY":
		return EntityCompany, true
	case "LISTING_ID", "LISTING", "MLS":
		return EntityListingID, true
	case "PRICE":
		return EntityPrice, true
	case "DATE_REFERENCE", "DATE":
		return EntityDateReference, true
	default:
		return 0, false
	}
}

// EntitySource is a bitmask recording which extractors produced an entity.
type EntitySource uint8

const (
	// SourcePattern marks entities found by the deterministic regex rules.
	SourcePattern EntitySource = 1 << iota
	// SourceLLM marks entities found by the LLM tool call.
	SourceLLM
)

// String returns a "+"-joined list of source names.
func (s EntitySource) String() string {
	var parts []string
	if s&SourcePattern != 0 {
		parts = append(parts, "pattern")
	}
	if s&SourceLLM != 0 {
		parts = append(parts, "llm")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Entity is a structured fact extracted from a session's text.
// A session's entity set is deduplicated by (Type, Key), keeping the
// highest confidence and the union of sources.
type Entity struct {
	Type       EntityType
	Value      string  // value as found in the text, trimmed
	Key        string  // normalized comparison key (lowercase, collapsed whitespace)
	Confidence float64 // in [0,1]
	Sources    EntitySource
}

// NormalizeEntityKey converts a raw entity value into its comparison key:
// trimmed, lowercased, with runs of whitespace collapsed to single spaces.
func NormalizeEntityKey(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// Document is the persisted retrieval unit handed to the vector store.
// A session below the chunk threshold becomes exactly one document;
// an oversized session becomes ChunkCount overlapping documents that
// all share the parent SessionId.
type Document struct {
	Id              ID
	SessionId       ID
	ChunkIndex      int
	ChunkCount      int
	Channel         string
	Kind            ConversationKind
	StartTime       time.Time
	EndTime         time.Time
	MessageCount    int
	FileCount       int
	Contents        string
	OverlapFraction float64 // fraction of the window shared with the previous chunk
	Entities        []Entity
	Vector          []float32 // embedding, populated before upsert
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// ConversationStatus is the terminal state of one conversation in an
// ingestion run.
type ConversationStatus int

const (
	// StatusCompleted means the conversation was fully ingested.
	StatusCompleted ConversationStatus = iota + 1
	// StatusFailed means ingestion of the conversation did not finish.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s ConversationStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileFailure records why a single export file could not be processed.
type FileFailure struct {
	Path   string
	Reason string
}

// Checkpoint is the durable per-conversation resume record. Completed
// conversations are skipped on restart; failed ones are retried up to a
// bounded attempt count.
type Checkpoint struct {
	Conversation string
	Status       ConversationStatus
	Attempts     int
	Failures     []FileFailure
	UpdatedAt    time.Time
}

// RetrievalResult is a fused ranking entry produced by multi-query
// retrieval. Ephemeral, computed per query.
type RetrievalResult struct {
	Id         ID
	FusedScore float64
	// Ranks holds this item's 1-based rank in each query variation,
	// or 0 where the item was absent from that variation's list.
	Ranks []int
}

// BestRank returns the lowest non-zero rank across variations,
// or 0 if the item appeared in none.
func (r *RetrievalResult) BestRank() int {
	best := 0
	for _, rank := range r.Ranks {
		if rank == 0 {
			continue
		}
		if best == 0 || rank < best {
			best = rank
		}
	}
	return best
}

// SimilarityMatch represents a document match from vector similarity search.
type SimilarityMatch struct {
	Document *Document
	Score    float32
}
