// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"unicode/utf8"

	"github.com/poiesic/chatvault/core"
)

// charsPerToken is the token approximation divisor: one token per four
// characters of text. Close enough for a split threshold without pulling
// a tokenizer into the ingest path.
const charsPerToken = 4

// Chunker splits oversized session transcripts into overlapping windows.
// Sessions at or below the token threshold become a single document.
type Chunker struct {
	tokenThreshold  int
	overlapFraction float64
}

// NewChunker creates a chunker. overlapFraction is clamped to [0, 0.5].
func NewChunker(tokenThreshold int, overlapFraction float64) *Chunker {
	if overlapFraction < 0 {
		overlapFraction = 0
	}
	if overlapFraction > 0.5 {
		overlapFraction = 0.5
	}
	return &Chunker{
		tokenThreshold:  tokenThreshold,
		overlapFraction: overlapFraction,
	}
}

// ApproxTokens estimates the token count of text. Counted in runes, the
// same unit chunk windows are cut in, so a window of threshold*4 runes
// never measures over the threshold.
func ApproxTokens(text string) int {
	return utf8.RuneCountInString(text) / charsPerToken
}

// Chunk converts a session into its persisted documents. Every character
// of the transcript appears in at least one chunk, and consecutive chunks
// share the configured overlap; the final chunk may share less, keeping
// every chunk's overlap at or below half its length. Chunks inherit the
// parent session's metadata and entity set, and their IDs derive from the
// session ID and chunk index so re-chunking the same session is idempotent.
func (c *Chunker) Chunk(session *core.Session) []*core.Document {
	text := session.EnrichedTranscript
	if text == "" {
		text = session.Transcript
	}

	if ApproxTokens(text) <= c.tokenThreshold {
		doc := c.newDocument(session, session.Id, 0, text, 0)
		doc.ChunkCount = 1
		return []*core.Document{doc}
	}

	runes := []rune(text)
	window := c.tokenThreshold * charsPerToken
	overlap := int(float64(window) * c.overlapFraction)
	step := window - overlap

	var docs []*core.Document
	for start := 0; start < len(runes); start += step {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}

		chunkStart := start
		if start > 0 && end == len(runes) {
			// A short tail would be mostly shared text. Push its start
			// forward until the shared prefix is at most half the chunk.
			prevEnd := start + overlap
			if minStart := 2*prevEnd - len(runes); minStart > chunkStart {
				chunkStart = minStart
			}
		}

		overlapFraction := 0.0
		if start > 0 {
			shared := (start + overlap) - chunkStart // previous end minus this start
			if shared > 0 {
				overlapFraction = float64(shared) / float64(end-chunkStart)
			}
		}

		index := len(docs)
		docs = append(docs, c.newDocument(session,
			core.ChunkID(session.Id, index), index, string(runes[chunkStart:end]), overlapFraction))

		if end == len(runes) {
			break
		}
	}

	for _, doc := range docs {
		doc.ChunkCount = len(docs)
	}
	return docs
}

func (c *Chunker) newDocument(session *core.Session, id core.ID, index int, contents string, overlapFraction float64) *core.Document {
	return &core.Document{
		Id:              id,
		SessionId:       session.Id,
		ChunkIndex:      index,
		Channel:         session.Channel,
		Kind:            session.Kind,
		StartTime:       session.StartTime,
		EndTime:         session.EndTime,
		MessageCount:    session.MessageCount,
		FileCount:       session.FileCount,
		Contents:        contents,
		OverlapFraction: overlapFraction,
		Entities:        session.Entities,
	}
}
