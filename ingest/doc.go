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


// Package ingest turns a raw chat export into persisted, embedded
// documents.
//
// The pipeline reads an export directory (user table plus per-conversation
// daily message files), groups each conversation's messages into sessions
// split on an inactivity gap, extracts entities from each session,
// splits oversized transcripts into overlapping chunks, embeds the
// resulting documents, and upserts them into the document repository.
//
// Everything is deterministic given the same export: inputs are
// explicitly sorted and all IDs are content hashes, so re-running
// ingestion supersedes rather than duplicates. A per-conversation
// checkpoint record makes runs resumable; completed conversations are
// skipped and failed ones retried up to a bounded attempt count.
package ingest
