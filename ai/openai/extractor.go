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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/chatvault/ai"
	"github.com/poiesic/chatvault/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client            llms.Model
	minConfidence     float64
	defaultConfidence float64
	logger            *slog.Logger
}

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Entities []entity `json:"entities"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &EntityExtractor{
		client:            client,
		minConfidence:     config.MinConfidence,
		defaultConfidence: config.DefaultConfidence,
		logger:            slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities extracts named entities from transcript text using an LLM.
// Entities with unrecognized types are dropped; entities below the configured
// confidence floor are filtered out.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	text = scrubTranscript(text)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildExtractionPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedEntity{}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	extracted := make([]ai.ExtractedEntity, 0, len(result.Entities))
	for _, ent := range result.Entities {
		value := strings.TrimSpace(ent.Value)
		if value == "" {
			continue
		}
		if _, ok := core.ParseEntityType(ent.Type); !ok {
			e.logger.Debug("dropping entity with unrecognized type", "type", ent.Type, "value", value)
			continue
		}

		confidence := ent.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = e.defaultConfidence
		}
		if confidence < e.minConfidence {
			continue
		}

		extracted = append(extracted, ai.ExtractedEntity{
			Type:       strings.ToUpper(strings.TrimSpace(ent.Type)),
			Value:      value,
			Confidence: confidence,
		})
	}

	e.logger.Debug("extracted entities",
		"total", len(result.Entities),
		"kept", len(extracted))

	return extracted, nil
}
