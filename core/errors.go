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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidEntity indicates an Entity failed validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrEmptyChannel indicates the Channel field is empty.
	ErrEmptyChannel = errors.New("channel cannot be empty")

	// ErrEmptyTranscript indicates the Transcript field is empty.
	ErrEmptyTranscript = errors.New("transcript cannot be empty")

	// ErrInvalidTimeRange indicates EndTime precedes StartTime.
	ErrInvalidTimeRange = errors.New("end time cannot precede start time")

	// ErrInvalidKind indicates an invalid ConversationKind value.
	ErrInvalidKind = errors.New("invalid conversation kind")

	// ErrInvalidEntityType indicates an invalid EntityType value.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrInvalidConfidence indicates an entity confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be in [0,1]")

	// ErrEmptyEntityValue indicates the entity Value field is empty.
	ErrEmptyEntityValue = errors.New("entity value cannot be empty")

	// ErrInvalidChunkIndex indicates a chunk index outside the chunk count.
	ErrInvalidChunkIndex = errors.New("chunk index out of range")
)
