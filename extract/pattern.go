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
	"regexp"
	"strings"

	"github.com/poiesic/chatvault/core"
)

// patternRule pairs a compiled regex with the entity type it detects and
// the fixed confidence assigned to its matches. Rules are high precision
// for structured formats and deliberately low recall; the LLM extractor
// covers the rest.
type patternRule struct {
	entityType core.EntityType
	confidence float64
	pattern    *regexp.Regexp
}

var patternRules = []patternRule{
	// "MLS 88123", "listing #4471"
	{
		entityType: core.EntityListingID,
		confidence: 0.95,
		pattern:    regexp.MustCompile(`(?i)\b(?:mls|listing)\s*#?\s*\d{3,}\b`),
	},
	// "$850,000", "$1.2M", "$500k"
	{
		entityType: core.EntityPrice,
		confidence: 0.9,
		pattern:    regexp.MustCompile(`\$\s?\d(?:[\d,]*\d)?(?:\.\d+)?\s?[kKmM]?\b`),
	},
	// "156 Seymour", "88 Main Street", "42 Ocean View Blvd"
	{
		entityType: core.EntityAddress,
		confidence: 0.85,
		pattern:    regexp.MustCompile(`\b\d{1,5}\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?(?:\s+(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard|Dr|Drive|Ln|Lane|Ct|Court|Pl|Place|Way))?\b`),
	},
	// "March 14", "Mar 14th"
	{
		entityType: core.EntityDateReference,
		confidence: 0.8,
		pattern:    regexp.MustCompile(`\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2}(?:st|nd|rd|th)?\b`),
	},
	// "2025-03-14"
	{
		entityType: core.EntityDateReference,
		confidence: 0.8,
		pattern:    regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	},
	// "next Friday", "this week", "tomorrow"
	{
		entityType: core.EntityDateReference,
		confidence: 0.8,
		pattern:    regexp.MustCompile(`(?i)\b(?:today|tomorrow|yesterday|(?:next|last|this)\s+(?:week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`),
	},
	// "Coldwell Realty", "Acme Inc"
	{
		entityType: core.EntityCompany,
		confidence: 0.7,
		pattern:    regexp.MustCompile(`\b[A-Z][A-Za-z&]+(?:\s+[A-Z][A-Za-z&]+)*\s+(?:Inc|LLC|Ltd|Corp|Co|Realty|Properties|Brokerage|Group|Partners)\b\.?`),
	},
	// Capitalized name pair; low confidence, the weakest signal here.
	// DEAL has no pattern rule: named transactions only surface via the LLM.
	{
		entityType: core.EntityPerson,
		confidence: 0.4,
		pattern:    regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
	},
}

// PatternExtractor finds entities with deterministic regex rules.
// It is stateless and safe for concurrent use.
type PatternExtractor struct{}

// NewPatternExtractor creates a pattern extractor using the built-in rules.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract runs every rule over the text and returns the matches as
// source-tagged entities, deduplicated by (type, normalized key) keeping
// the highest rule confidence.
func (p *PatternExtractor) Extract(text string) []core.Entity {
	found := map[entityKey]core.Entity{}

	for _, rule := range patternRules {
		for _, match := range rule.pattern.FindAllString(text, -1) {
			value := strings.TrimSpace(strings.TrimSuffix(match, "."))
			if value == "" {
				continue
			}
			ent := core.Entity{
				Type:       rule.entityType,
				Value:      value,
				Key:        core.NormalizeEntityKey(value),
				Confidence: rule.confidence,
				Sources:    core.SourcePattern,
			}
			mergeEntity(found, ent)
		}
	}

	return sortedEntities(found)
}
