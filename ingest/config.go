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


package ingest

import (
	"errors"
	"runtime"
	"time"
)

// Config enumerates every recognized ingestion knob explicitly. There are
// no dynamic or boolean feature flags; a zero-value field means "use the
// default".
type Config struct {
	// InactivityGap is the silence that ends a session. Messages closer
	// together than this stay in the same session; a strictly larger gap
	// starts a new one. Default: 6h.
	InactivityGap time.Duration

	// ChunkTokenThreshold is the approximate token count above which a
	// session's transcript is split into overlapping chunks. Default: 10000.
	ChunkTokenThreshold int

	// ChunkOverlapFraction is the fraction of each chunk window shared with
	// its predecessor, in [0, 0.5]. Default: 0.10.
	ChunkOverlapFraction float64

	// EntityConfidenceFloor drops extracted entities below this confidence
	// before they are persisted. Kept below the 0.4 capitalized-name rule
	// so low-precision person matches survive by default. Default: 0.3.
	EntityConfidenceFloor float64

	// PoolSize is the number of conversations ingested concurrently.
	// Default: NumCPU/2, minimum 1.
	PoolSize int

	// MaxAttempts bounds how many times a failed conversation is retried
	// across runs. Default: 3.
	MaxAttempts int

	// RetryBaseDelay is the base delay for retry backoff, both for
	// re-attempting previously failed conversations and for transient
	// embedding errors. Doubles per attempt. Default: 2s.
	RetryBaseDelay time.Duration

	// LLMTimeout bounds each entity-extraction LLM call. Default: 60s.
	LLMTimeout time.Duration
}

// DefaultConfig returns the ingestion defaults.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		InactivityGap:         6 * time.Hour,
		ChunkTokenThreshold:   10000,
		ChunkOverlapFraction:  0.10,
		EntityConfidenceFloor: 0.3,
		PoolSize:              poolSize,
		MaxAttempts:           3,
		RetryBaseDelay:        2 * time.Second,
		LLMTimeout:            60 * time.Second,
	}
}

// Normalize fills zero-value fields with their defaults.
func (c *Config) Normalize() {
	defaults := DefaultConfig()
	if c.InactivityGap == 0 {
		c.InactivityGap = defaults.InactivityGap
	}
	if c.ChunkTokenThreshold == 0 {
		c.ChunkTokenThreshold = defaults.ChunkTokenThreshold
	}
	if c.ChunkOverlapFraction == 0 {
		c.ChunkOverlapFraction = defaults.ChunkOverlapFraction
	}
	if c.EntityConfidenceFloor == 0 {
		c.EntityConfidenceFloor = defaults.EntityConfidenceFloor
	}
	if c.PoolSize == 0 {
		c.PoolSize = defaults.PoolSize
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if c.LLMTimeout == 0 {
		c.LLMTimeout = defaults.LLMTimeout
	}
}

// Validate checks the configuration after normalization.
func (c *Config) Validate() error {
	c.Normalize()

	if c.InactivityGap <= 0 {
		return errors.New("ingest config: InactivityGap must be positive")
	}
	if c.ChunkTokenThreshold <= 0 {
		return errors.New("ingest config: ChunkTokenThreshold must be positive")
	}
	if c.ChunkOverlapFraction < 0 || c.ChunkOverlapFraction > 0.5 {
		return errors.New("ingest config: ChunkOverlapFraction must be in [0, 0.5]")
	}
	if c.EntityConfidenceFloor < 0 || c.EntityConfidenceFloor > 1 {
		return errors.New("ingest config: EntityConfidenceFloor must be in [0, 1]")
	}
	if c.PoolSize < 1 {
		return errors.New("ingest config: PoolSize must be at least 1")
	}
	if c.MaxAttempts < 1 {
		return errors.New("ingest config: MaxAttempts must be at least 1")
	}
	return nil
}
