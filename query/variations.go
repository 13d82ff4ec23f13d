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
	"strings"
)

// question words stripped for the keyword variation. Overlaps with the
// verbatim-match stop list but additionally drops interrogatives.
var questionStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "in": true,
	"that": true, "have": true, "it": true, "for": true, "not": true,
	"on": true, "with": true, "as": true, "you": true, "do": true, "does": true,
	"did": true, "at": true, "this": true, "but": true, "by": true,
	"from": true, "what": true, "when": true, "where": true, "who": true,
	"why": true, "how": true, "which": true, "about": true, "tell": true,
	"me": true, "us": true, "please": true, "anyone": true, "there": true,
}

// categoryHints prefix a variation with retrieval-steering words per
// question category.
var categoryHints = map[Category]string{
	CategoryFactual:    "details about",
	CategoryAnalytical: "discussion history of",
	CategoryBehavioral: "typical behavior around",
}

// Variations derives deterministic reformulations of a question. The
// returned slice always starts with the original question, contains no
// duplicates, and is bounded to at most max entries (minimum 1). The same
// question and classification always produce the same variations in the
// same order.
//
// Rules, in order:
//  1. the original question verbatim
//  2. keyword form: stop and question words removed
//  3. entity form: detected entity values joined, when entities exist
//  4. category form: a per-category hint prefixed to the keyword form
func Variations(question string, classification Classification, max int) []string {
	if max < 1 {
		max = 1
	}

	question = strings.TrimSpace(question)
	seen := map[string]bool{}
	var out []string

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || len(out) >= max {
			return
		}
		key := strings.ToLower(v)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	add(question)

	keywords := keywordForm(question)
	add(keywords)

	if len(classification.Entities) > 0 {
		values := make([]string, 0, len(classification.Entities))
		for _, ent := range classification.Entities {
			values = append(values, ent.Value)
		}
		add(strings.Join(values, " "))
	}

	if hint, ok := categoryHints[classification.Category]; ok && keywords != "" {
		add(hint + " " + keywords)
	}

	return out
}

// keywordForm lowercases the question and strips stop words, question
// words, and punctuation.
func keywordForm(question string) string {
	words := strings.Fields(strings.ToLower(question))
	kept := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.Trim(word, ".,!?;:'\"-()[]{}")
		if cleaned == "" || questionStopWords[cleaned] {
			continue
		}
		kept = append(kept, cleaned)
	}
	return strings.Join(kept, " ")
}
