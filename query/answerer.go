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


package query

import (
	"context"
	"log/slog"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/storage"
)

// Answer is the full response to a question: the generated text plus the
// conversations it was grounded on.
type Answer struct {
	Text           string
	Classification Classification
	Sources        []Result
}

// Answerer runs the complete question path: classify, retrieve, assemble
// context, and generate an answer.
type Answerer struct {
	retriever *Retriever
	generator ai.Generator
	assembler *Assembler
	logger    *slog.Logger
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer) error

// WithContextBudget sets the assembled context character budget.
func WithContextBudget(maxChars int) AnswererOption {
	return func(a *Answerer) error {
		a.assembler = NewAssembler(maxChars)
		return nil
	}
}

// WithAnswererLogger sets a custom logger.
func WithAnswererLogger(logger *slog.Logger) AnswererOption {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger.With("component", "answerer")
		return nil
	}
}

// NewAnswerer creates an answerer over the document repository and AI
// provider.
func NewAnswerer(
	documents storage.DocumentRepository,
	provider ai.AIProvider,
	retrieverOpts []RetrieverOption,
	opts ...AnswererOption,
) (*Answerer, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	retriever, err := NewRetriever(documents, provider, retrieverOpts...)
	if err != nil {
		return nil, err
	}

	a := &Answerer{
		retriever: retriever,
		generator: provider.Generator(),
		assembler: NewAssembler(0),
		logger:    slog.Default().With("component", "answerer"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Answer responds to the question from the archive. The classification's
// extended-reasoning flag is forwarded to the generator. Retrieval
// failure surfaces as ErrRetrievalUnavailable; an empty archive yields
// an answer stating nothing relevant was found, with no sources.
func (a *Answerer) Answer(ctx context.Context, question string) (*Answer, error) {
	results, classification, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("retrieval complete",
		"category", classification.Category.String(),
		"results", len(results))

	if len(results) == 0 {
		return &Answer{
			Text:           "No relevant conversations were found in the archive for this question.",
			Classification: classification,
		}, nil
	}

	contextText := a.assembler.Assemble(results)
	text, err := a.generator.Generate(ctx, question, contextText, classification.ExtendedReasoning)
	if err != nil {
		return nil, err
	}

	return &Answer{
		Text:           text,
		Classification: classification,
		Sources:        results,
	}, nil
}
