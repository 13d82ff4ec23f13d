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


// Package query answers natural-language questions against the archive.
//
// The path is: classify the question (factual, analytical, or behavioral)
// with deterministic keyword heuristics; derive bounded query variations;
// embed and search each variation concurrently against the document
// repository, pre-filtered by entities and channels detected in the
// question; fuse the per-variation rankings with reciprocal rank fusion
// (k=60); assemble a bounded context from the fused hits; and hand it to
// the answer generator.
//
// Failure semantics distinguish "nothing relevant found" (an answer with
// no sources) from ErrRetrievalUnavailable (every variation's search
// failed). A single failing variation is simply dropped from fusion, and
// an entity/channel filter that starves retrieval falls back to the
// unfiltered corpus.
package query
