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


package core

import "fmt"

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - Channel must not be empty
//   - Kind must be a valid ConversationKind
//   - EndTime must not precede StartTime
//   - Transcript must not be empty
//
// NOT validated (populated later in the pipeline):
//   - Entities (empty until the extractor runs)
//   - EnrichedTranscript (falls back to Transcript when no files attach)
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}

	if session.Channel == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptyChannel)
	}

	if err := ValidateKind(session.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if session.EndTime.Before(session.StartTime) {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrInvalidTimeRange)
	}

	if session.Transcript == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrEmptyTranscript)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Channel must not be empty
//   - Kind must be a valid ConversationKind
//   - ChunkIndex must lie within [0, ChunkCount)
//   - every Entity must be valid
//
// NOT validated:
//   - Vector (empty until the embedder runs)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Channel == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyChannel)
	}

	if err := ValidateKind(doc.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.ChunkIndex < 0 || doc.ChunkIndex >= doc.ChunkCount {
		return fmt.Errorf("%w: %w: index %d of %d",
			ErrInvalidDocument, ErrInvalidChunkIndex, doc.ChunkIndex, doc.ChunkCount)
	}

	for i := range doc.Entities {
		if err := ValidateEntity(&doc.Entities[i]); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}

	return nil
}

// ValidateEntity validates an Entity according to domain rules.
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if err := ValidateEntityType(entity.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	if entity.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyEntityValue)
	}

	if entity.Confidence < 0 || entity.Confidence > 1 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidEntity, ErrInvalidConfidence, entity.Confidence)
	}

	return nil
}

// ValidateKind validates that a ConversationKind has a valid value.
func ValidateKind(kind ConversationKind) error {
	if kind != KindChannel && kind != KindDM && kind != KindGroup {
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
	return nil
}

// ValidateEntityType validates that an EntityType has a valid value.
func ValidateEntityType(t EntityType) error {
	if t < EntityPerson || t > EntityDateReference {
		return fmt.Errorf("%w: value %d", ErrInvalidEntityType, t)
	}
	return nil
}
