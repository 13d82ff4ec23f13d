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

// repairJSON fixes the one malformation small local models produce often
// enough to matter in JSON mode: object keys missing their opening quote,
// as in `{entities": [...]}`. The closing quote and colon are intact in
// this failure mode, which is what makes the key recoverable. Anything
// else is passed through untouched and left for the unmarshal to reject.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	i := 0
	for i < len(in) {
		ch := in[i]
		out = append(out, ch)
		i++

		// Keys only begin after an object open or a separator.
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && (in[i] == ' ' || in[i] == '\n' || in[i] == '\t') {
			out = append(out, in[i])
			i++
		}

		if i >= len(in) || in[i] == '"' || !isLetter(in[i]) {
			continue
		}

		// Bare identifier where a quoted key belongs. Scan it, then
		// decide by what follows.
		keyStart := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_' || in[i] == ' ') {
			i++
		}

		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			// `key":` with the opening quote dropped. Requote, trimming
			// stray spaces at the identifier's edges.
			out = append(out, '"')
			for j := keyStart; j < i; j++ {
				if in[j] != ' ' || (j > keyStart && j < i-1) {
					out = append(out, in[j])
				}
			}
			continue
		}

		// Not the known failure shape; emit the scanned run verbatim.
		out = append(out, in[keyStart:i]...)
	}

	return string(out)
}
