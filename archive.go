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


package chatvault

import (
	"log/slog"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/ai/openai"
	"github.com/poiesic/chatvault/ingest"
	"github.com/poiesic/chatvault/query"
	"github.com/poiesic/chatvault/storage"
	"github.com/poiesic/chatvault/storage/badger"
)

// Archive bundles the storage backend, repositories, and AI provider
// behind one handle. It is the entry point for both ingestion and
// question answering.
type Archive struct {
	backend        *badger.Backend
	documentRepo   storage.DocumentRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	logger         *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI provider configuration used when opening the
// archive.
func WithAIConfig(config *ai.Config) ArchiveOption {
	return func(o *archiveOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies an already-constructed provider instead of
// building one from configuration. Useful for tests.
func WithAIProvider(provider ai.AIProvider) ArchiveOption {
	return func(o *archiveOptions) {
		o.provider = provider
	}
}

// OpenArchive opens (creating if necessary) the archive at filePath.
func OpenArchive(filePath string, opts ...ArchiveOption) (*Archive, error) {
	options := &archiveOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Archive{
		backend:        backend,
		documentRepo:   documentRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

func (a *Archive) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.documentRepo.Close(); err != nil {
		a.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (a *Archive) DocumentRepository() storage.DocumentRepository {
	return a.documentRepo
}

func (a *Archive) CheckpointRepository() storage.CheckpointRepository {
	return a.checkpointRepo
}

// NewIngestPipeline creates an ingestion pipeline over the archive's
// repositories and provider.
func (a *Archive) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(a.documentRepo, a.checkpointRepo, a.provider, opts...)
}

// NewRetriever creates a retriever over the archive.
func (a *Archive) NewRetriever(opts ...query.RetrieverOption) (*query.Retriever, error) {
	return query.NewRetriever(a.documentRepo, a.provider, opts...)
}

// NewAnswerer creates an answerer over the archive.
func (a *Archive) NewAnswerer(retrieverOpts []query.RetrieverOption, opts ...query.AnswererOption) (*query.Answerer, error) {
	return query.NewAnswerer(a.documentRepo, a.provider, retrieverOpts, opts...)
}
