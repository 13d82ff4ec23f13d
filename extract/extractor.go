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


package extract

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
)

const defaultLLMTimeout = 60 * time.Second

// Extractor combines the deterministic pattern rules with the LLM entity
// extractor. LLM failures degrade to pattern-only results; extraction
// never blocks ingestion.
type Extractor struct {
	patterns   *PatternExtractor
	llm        ai.EntityExtractor
	llmTimeout time.Duration
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLLMTimeout bounds the LLM extraction call. Zero disables the bound.
func WithLLMTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.llmTimeout = d
	}
}

// WithLogger sets the logger used for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger.With("component", "extractor")
	}
}

// NewExtractor creates a hybrid extractor. llm may be nil, in which case
// only the pattern rules run.
func NewExtractor(llm ai.EntityExtractor, opts ...Option) *Extractor {
	e := &Extractor{
		patterns:   NewPatternExtractor(),
		llm:        llm,
		llmTimeout: defaultLLMTimeout,
		logger:     slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the merged entity set for the text. Entities with equal
// (type, normalized key) are merged into one, keeping the maximum
// confidence and the union of sources. Results are ordered by confidence
// descending, then by key, so repeated runs over the same transcript
// produce identical output.
func (e *Extractor) Extract(ctx context.Context, text string) []core.Entity {
	merged := map[entityKey]core.Entity{}

	for _, ent := range e.patterns.Extract(text) {
		mergeEntity(merged, ent)
	}

	for _, ent := range e.extractLLM(ctx, text) {
		mergeEntity(merged, ent)
	}

	return sortedEntities(merged)
}

// extractLLM runs the LLM extractor and converts its results to typed
// entities. Any failure is logged and swallowed: the caller still gets
// the pattern results.
func (e *Extractor) extractLLM(ctx context.Context, text string) []core.Entity {
	if e.llm == nil {
		return nil
	}

	if e.llmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.llmTimeout)
		defer cancel()
	}

	raw, err := e.llm.ExtractEntities(ctx, text)
	if err != nil {
		e.logger.Warn("LLM extraction failed, degrading to pattern-only", "err", err)
		return nil
	}

	entities := make([]core.Entity, 0, len(raw))
	for _, r := range raw {
		entityType, ok := core.ParseEntityType(r.Type)
		if !ok {
			e.logger.Debug("dropping LLM entity with unknown type", "type", r.Type, "value", r.Value)
			continue
		}
		entities = append(entities, core.Entity{
			Type:       entityType,
			Value:      r.Value,
			Key:        core.NormalizeEntityKey(r.Value),
			Confidence: r.Confidence,
			Sources:    core.SourceLLM,
		})
	}
	return entities
}

// entityKey identifies an entity for merging.
type entityKey struct {
	entityType core.EntityType
	key        string
}

// mergeEntity folds ent into the set: max confidence, union of sources.
func mergeEntity(set map[entityKey]core.Entity, ent core.Entity) {
	k := entityKey{entityType: ent.Type, key: ent.Key}
	existing, ok := set[k]
	if !ok {
		set[k] = ent
		return
	}
	if ent.Confidence > existing.Confidence {
		existing.Confidence = ent.Confidence
		existing.Value = ent.Value
	}
	existing.Sources |= ent.Sources
	set[k] = existing
}

// sortedEntities orders the merged set by confidence descending, breaking
// ties on key then type for determinism.
func sortedEntities(set map[entityKey]core.Entity) []core.Entity {
	entities := make([]core.Entity, 0, len(set))
	for _, ent := range set {
		entities = append(entities, ent)
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Confidence != entities[j].Confidence {
			return entities[i].Confidence > entities[j].Confidence
		}
		if entities[i].Key != entities[j].Key {
			return entities[i].Key < entities[j].Key
		}
		return entities[i].Type < entities[j].Type
	})
	return entities
}
