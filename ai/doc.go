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


// Package ai defines the interfaces and configuration for the AI services
// used by the archive: text embedding, entity extraction, and answer
// generation.
//
// The interfaces are implemented by the openai subpackage (OpenAI-compatible
// HTTP APIs via langchaingo) and by the mock subpackage (deterministic test
// doubles). Callers should depend on the interfaces in this package, not on
// concrete implementations.
//
// # Configuration
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),  // /v1 added automatically
//	    ai.WithEmbeddingModel("embeddinggemma"),
//	    ai.WithChatModel("qwen2.5:3b"),
//	)
//	provider, err := openai.NewProvider(cfg)
//
// # Retry
//
// RetryWithBackoff wraps transient failures (network errors, overloaded
// local model servers) with exponential backoff. Errors wrapped with
// Permanent abort retrying immediately.
package ai
