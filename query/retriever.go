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
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/storage"
)

// RetrieverConfig enumerates the retrieval knobs explicitly.
type RetrieverConfig struct {
	// RRFK is the reciprocal rank fusion constant k. Default: 60.
	RRFK int

	// VariationCount bounds how many query variations are issued,
	// including the original question. Default: 4.
	VariationCount int

	// MaxHits is the maximum number of fused results returned. Default: 10.
	MaxHits int

	// MinSimilarity is the cosine similarity floor for vector search.
	// Default: 0.5.
	MinSimilarity float32

	// MinFilteredResults is the fused result count below which an
	// entity/channel-filtered retrieval falls back to unfiltered.
	// Default: 3.
	MinFilteredResults int
}

// DefaultRetrieverConfig returns the retrieval defaults.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		RRFK:               60,
		VariationCount:     4,
		MaxHits:            10,
		MinSimilarity:      0.5,
		MinFilteredResults: 3,
	}
}

// Result is one fused retrieval hit.
type Result struct {
	Document   *core.Document
	FusedScore float64
	// BestRank is the best 1-based rank the document achieved in any
	// single variation's ranking.
	BestRank int
}

// Retriever answers questions with multi-query fusion retrieval: the
// question is classified, reformulated into variations, each variation
// is embedded and searched concurrently, and the per-variation rankings
// are fused with reciprocal rank fusion.
type Retriever struct {
	documents  storage.DocumentRepository
	embedder   ai.Embedder
	classifier *Classifier
	config     RetrieverConfig
	logger     *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever) error

// WithRetrieverConfig replaces the default retrieval configuration.
func WithRetrieverConfig(config RetrieverConfig) RetrieverOption {
	return func(r *Retriever) error {
		defaults := DefaultRetrieverConfig()
		if config.RRFK <= 0 {
			config.RRFK = defaults.RRFK
		}
		if config.VariationCount < 1 {
			config.VariationCount = defaults.VariationCount
		}
		if config.MaxHits < 1 {
			config.MaxHits = defaults.MaxHits
		}
		if config.MinFilteredResults < 1 {
			config.MinFilteredResults = defaults.MinFilteredResults
		}
		r.config = config
		return nil
	}
}

// WithRetrieverLogger sets a custom logger.
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retriever")
		return nil
	}
}

// NewRetriever creates a retriever.
func NewRetriever(
	documents storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...RetrieverOption,
) (*Retriever, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		documents:  documents,
		embedder:   provider.Embedder(),
		classifier: NewClassifier(),
		config:     DefaultRetrieverConfig(),
		logger:     slog.Default().With("component", "retriever"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve runs the full retrieval path for a question.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]Result, Classification, error) {
	return r.RetrieveWithMonitor(ctx, question, nil)
}

// RetrieveWithMonitor runs retrieval with per-stage monitoring hooks.
// An empty result set is a successful retrieval that found nothing;
// ErrRetrievalUnavailable means every variation's search failed.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, question string, monitor RetrievalMonitor) ([]Result, Classification, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(question) == "" {
		return nil, Classification{}, ErrEmptyQuestion
	}

	monitor.Start(question)

	classification := r.classifier.Classify(question)
	monitor.AfterClassification(classification)

	variations := Variations(question, classification, r.config.VariationCount)
	monitor.AfterVariations(variations)

	filter := storage.Filter{
		EntityKeys: classification.EntityKeys(),
		Channels:   classification.Channels,
	}

	lists, ok := r.runVariations(ctx, variations, filter, monitor)
	if !ok {
		return nil, classification, ErrRetrievalUnavailable
	}

	fused, documents := r.fuse(lists)

	// A sparse filtered result set falls back to the unfiltered corpus:
	// too-aggressive filters should widen, not starve, retrieval.
	if !filter.IsZero() && len(fused) < r.config.MinFilteredResults {
		monitor.FilterFallback(len(fused))
		r.logger.Debug("filtered retrieval too sparse, retrying unfiltered",
			"filtered", len(fused), "minimum", r.config.MinFilteredResults)

		lists, ok = r.runVariations(ctx, variations, storage.Filter{}, monitor)
		if !ok {
			return nil, classification, ErrRetrievalUnavailable
		}
		fused, documents = r.fuse(lists)
	}

	monitor.AfterFusion(fused)

	results := make([]Result, 0, r.config.MaxHits)
	for _, entry := range fused {
		if len(results) >= r.config.MaxHits {
			break
		}
		results = append(results, Result{
			Document:   documents[entry.Id],
			FusedScore: entry.FusedScore,
			BestRank:   entry.BestRank(),
		})
	}

	monitor.Finish(results)
	return results, classification, nil
}

// runVariations issues one vector search per variation concurrently and
// collects the ranked lists in variation order. A failed variation is
// dropped; ok is false only when every variation failed.
func (r *Retriever) runVariations(
	ctx context.Context,
	variations []string,
	filter storage.Filter,
	monitor RetrievalMonitor,
) ([][]*core.SimilarityMatch, bool) {
	// Fetch deeper than MaxHits per variation so fusion has rankings to
	// work with
	depth := r.config.MaxHits * 2

	lists := make([][]*core.SimilarityMatch, len(variations))
	errs := make([]error, len(variations))

	var wg sync.WaitGroup
	for i, variation := range variations {
		wg.Add(1)
		go func(i int, variation string) {
			defer wg.Done()

			vector, err := r.embedder.EmbedText(ctx, variation)
			if err != nil {
				errs[i] = err
				return
			}
			matches, err := r.documents.Query(ctx, vector, r.config.MinSimilarity, depth, filter)
			if err != nil {
				errs[i] = err
				return
			}
			lists[i] = matches
		}(i, variation)
	}
	wg.Wait()

	kept := make([][]*core.SimilarityMatch, 0, len(lists))
	succeeded := 0
	for i := range lists {
		if errs[i] != nil {
			r.logger.Warn("query variation failed, dropping from fusion",
				"variation", variations[i], "err", errs[i])
			monitor.VariationFailed(variations[i], errs[i])
			continue
		}
		ids := make([]core.ID, len(lists[i]))
		for j, match := range lists[i] {
			ids[j] = match.Document.Id
		}
		monitor.VariationSucceeded(variations[i], ids)
		kept = append(kept, lists[i])
		succeeded++
	}

	return kept, succeeded > 0
}

// fuse merges per-variation rankings with reciprocal rank fusion:
// each document scores the sum of 1/(k+rank) over the variations that
// returned it. Ties break on the best individual rank, then on ID so
// the ordering is stable.
func (r *Retriever) fuse(lists [][]*core.SimilarityMatch) ([]core.RetrievalResult, map[core.ID]*core.Document) {
	entries := map[core.ID]*core.RetrievalResult{}
	documents := map[core.ID]*core.Document{}

	for listIdx, list := range lists {
		for rank, match := range list {
			id := match.Document.Id
			entry, ok := entries[id]
			if !ok {
				entry = &core.RetrievalResult{
					Id:    id,
					Ranks: make([]int, len(lists)),
				}
				entries[id] = entry
				documents[id] = match.Document
			}
			entry.Ranks[listIdx] = rank + 1
			entry.FusedScore += 1.0 / float64(r.config.RRFK+rank+1)
		}
	}

	fused := make([]core.RetrievalResult, 0, len(entries))
	for _, entry := range entries {
		fused = append(fused, *entry)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		bi, bj := fused[i].BestRank(), fused[j].BestRank()
		if bi != bj {
			return bi < bj
		}
		return fused[i].Id < fused[j].Id
	})

	return fused, documents
}
