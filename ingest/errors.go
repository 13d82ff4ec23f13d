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

import "errors"

var (
	// ErrDocumentRepositoryRequired indicates a nil document repository was provided.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrCheckpointRepositoryRequired indicates a nil checkpoint repository was provided.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrExportNotFound indicates the export root directory does not exist.
	ErrExportNotFound = errors.New("export root not found")

	// ErrUsersFileMissing indicates the export has no users.json.
	ErrUsersFileMissing = errors.New("users.json missing from export root")
)
