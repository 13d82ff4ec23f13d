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


// Package storage provides the storage abstraction layer for chatvault.
//
// This package defines the two collaborator contracts the pipeline
// persists through:
//
//   - DocumentRepository: the vector store. Holds retrieval documents
//     (whole sessions or chunks of oversized sessions) with their
//     embeddings and entity metadata, and answers similarity queries
//     with optional entity/channel filters.
//   - CheckpointRepository: the checkpoint store. Holds per-conversation
//     ingestion status so an interrupted run can resume without
//     re-ingesting completed conversations.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types to
// enforce abstraction and enable alternative backends:
//
//	repo, err := badger.NewDocumentRepository(backend)  // returns storage.DocumentRepository
//
// Internal backend constructors may return concrete types since they're
// only used within the implementation package.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines; the ingestion pipeline
// writes from a pool of conversation workers.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
