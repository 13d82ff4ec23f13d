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
	"fmt"
	"strings"
)

// defaultContextBudget bounds the assembled context to roughly 8k tokens
// of excerpt text at four characters per token.
const defaultContextBudget = 32000

// Assembler formats fused retrieval results into a bounded context block
// for the answer generator. Results are consumed in fused order, so when
// the budget runs out it is the weakest hits that are dropped.
type Assembler struct {
	maxChars int
}

// NewAssembler creates an assembler with the given character budget.
// A non-positive budget uses the default.
func NewAssembler(maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = defaultContextBudget
	}
	return &Assembler{maxChars: maxChars}
}

// Assemble renders the results into excerpt blocks, each headed by its
// channel and time range, until the budget is exhausted. A single
// oversized excerpt is truncated rather than dropped so the strongest
// hit always survives.
func (a *Assembler) Assemble(results []Result) string {
	var b strings.Builder

	for i, result := range results {
		doc := result.Document
		header := fmt.Sprintf("--- #%s (%s) %s to %s ---\n",
			doc.Channel,
			doc.Kind,
			doc.StartTime.Format("2006-01-02 15:04"),
			doc.EndTime.Format("2006-01-02 15:04"))

		block := header + doc.Contents + "\n\n"
		if b.Len()+len(block) > a.maxChars {
			remaining := a.maxChars - b.Len()
			if i == 0 && remaining > len(header) {
				b.WriteString(header)
				b.WriteString(truncate(doc.Contents, remaining-len(header)))
			}
			break
		}
		b.WriteString(block)
	}

	return strings.TrimSpace(b.String())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
