package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/chatvault/core"
)

// ConversationReport summarizes the outcome of one conversation in a run.
type ConversationReport struct {
	Conversation string
	Status       core.ConversationStatus
	Skipped      bool // already completed in a previous run, or out of attempts
	Sessions     int
	Documents    int
	Failures     []core.FileFailure
	Error        string // fatal per-conversation error, empty on success
}

// Report is the user-visible summary of an ingestion run.
type Report struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Conversations []ConversationReport
}

// newReport starts a report with a fresh run ID.
func newReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Completed counts conversations that finished successfully this run.
func (r *Report) Completed() int {
	return r.count(func(c ConversationReport) bool {
		return !c.Skipped && c.Status == core.StatusCompleted
	})
}

// Failed counts conversations that failed this run.
func (r *Report) Failed() int {
	return r.count(func(c ConversationReport) bool {
		return !c.Skipped && c.Status == core.StatusFailed
	})
}

// SkippedCount counts conversations not processed this run.
func (r *Report) SkippedCount() int {
	return r.count(func(c ConversationReport) bool { return c.Skipped })
}

func (r *Report) count(match func(ConversationReport) bool) int {
	n := 0
	for _, c := range r.Conversations {
		if match(c) {
			n++
		}
	}
	return n
}
