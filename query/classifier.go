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
	"regexp"
	"strings"

	"github.com/poiesic/chatvault/core"
	"github.com/poiesic/chatvault/extract"
)

// Category is the coarse type of a question, driving retrieval breadth
// and the answer model's reasoning budget.
type Category int

const (
	// CategoryFactual asks for a specific recorded fact.
	CategoryFactual Category = iota + 1
	// CategoryAnalytical asks to relate or summarize multiple conversations.
	CategoryAnalytical
	// CategoryBehavioral asks about people's habits and tendencies over time.
	CategoryBehavioral
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryFactual:
		return "factual"
	case CategoryAnalytical:
		return "analytical"
	case CategoryBehavioral:
		return "behavioral"
	default:
		return "unknown"
	}
}

// Classification is the classifier's verdict on a question.
type Classification struct {
	Category Category
	// Entities detected in the question via the pattern rules, used to
	// pre-filter retrieval.
	Entities []core.Entity
	// Channels named in the question with a # prefix.
	Channels []string
	// ExtendedReasoning signals the generator to spend a larger reasoning
	// budget. Set for analytical and behavioral questions.
	ExtendedReasoning bool
}

// behavioral phrasing beats analytical when both match: "how often does
// mike ..." is about habits even though it starts with "how".
var behavioralMarkers = []string{
	"usually", "typically", "tends to", "tend to", "how often", "habit",
	"most active", "most often", "behavior", "behaviour", "who talks",
	"who responds", "always", "never responds", "every time", "style",
}

var analyticalMarkers = []string{
	"why", "how did", "how has", "compare", "comparison", "trend",
	"pattern", "summarize", "summary", "analyz", "analyse", "overview",
	"relationship", "evolve", "change over", "over time", "difference",
	"what happened with", "history of", "timeline",
}

var channelPattern = regexp.MustCompile(`#([A-Za-z0-9][\w-]*)`)

// Classifier categorizes questions with deterministic keyword heuristics
// and detects entities and channel references for filtering. Stateless
// and safe for concurrent use.
type Classifier struct {
	patterns *extract.PatternExtractor
}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{patterns: extract.NewPatternExtractor()}
}

// Classify categorizes the question. The same question always yields the
// same classification.
func (c *Classifier) Classify(question string) Classification {
	lower := strings.ToLower(question)

	category := CategoryFactual
	switch {
	case containsAny(lower, behavioralMarkers):
		category = CategoryBehavioral
	case containsAny(lower, analyticalMarkers):
		category = CategoryAnalytical
	}

	var channels []string
	for _, m := range channelPattern.FindAllStringSubmatch(question, -1) {
		channels = append(channels, m[1])
	}

	return Classification{
		Category:          category,
		Entities:          c.patterns.Extract(question),
		Channels:          channels,
		ExtendedReasoning: category != CategoryFactual,
	}
}

// EntityKeys returns the normalized keys of the detected entities.
func (cl Classification) EntityKeys() []string {
	keys := make([]string, 0, len(cl.Entities))
	for _, ent := range cl.Entities {
		keys = append(keys, ent.Key)
	}
	return keys
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
