package ingest

import (
	"testing"
	"time"

	"github.com/poiesic/chatvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUsers = map[string]core.UserRecord{
	"U1": {UserID: "U1", DisplayName: "mike"},
	"U2": {UserID: "U2", DisplayName: "sara"},
}

func msg(ts time.Time, user, text string) core.RawMessage {
	return core.RawMessage{Timestamp: ts, UserID: user, Text: text, Type: "message"}
}

func TestSessionize_GapBoundary(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	s := NewSessionizer(6*time.Hour, testUsers, nil)

	t.Run("exactly 6h stays in one session", func(t *testing.T) {
		sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
			msg(base, "U1", "morning"),
			msg(base.Add(6*time.Hour), "U2", "afternoon"),
		})
		require.Len(t, sessions, 1)
		assert.Equal(t, 2, sessions[0].MessageCount)
	})

	t.Run("6h plus a second splits", func(t *testing.T) {
		sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
			msg(base, "U1", "morning"),
			msg(base.Add(6*time.Hour+time.Second), "U2", "afternoon"),
		})
		require.Len(t, sessions, 2)
		assert.Equal(t, 1, sessions[0].MessageCount)
		assert.Equal(t, 1, sessions[1].MessageCount)
	})

	t.Run("9am and 2pm share a session", func(t *testing.T) {
		sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
			msg(base, "U1", "msg at 9"),
			msg(time.Date(2025, 3, 14, 14, 0, 0, 0, time.UTC), "U2", "msg at 14"),
		})
		assert.Len(t, sessions, 1)
	})

	t.Run("9am and 4pm split", func(t *testing.T) {
		sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
			msg(base, "U1", "msg at 9"),
			msg(time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC), "U2", "msg at 16"),
		})
		assert.Len(t, sessions, 2)
	})
}

func TestSessionize_SingleAndEmpty(t *testing.T) {
	s := NewSessionizer(6*time.Hour, testUsers, nil)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
		msg(base, "U1", "lonely message"),
	})
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].MessageCount)
	assert.Equal(t, sessions[0].StartTime, sessions[0].EndTime)

	assert.Nil(t, s.Sessionize("general", core.KindChannel, nil))
}

func TestSessionize_Deterministic(t *testing.T) {
	s := NewSessionizer(6*time.Hour, testUsers, nil)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	// Same messages, different input order
	forward := []core.RawMessage{
		msg(base, "U1", "first"),
		msg(base.Add(time.Minute), "U2", "second"),
		msg(base.Add(7*time.Hour), "U1", "evening"),
	}
	backward := []core.RawMessage{forward[2], forward[0], forward[1]}

	a := s.Sessionize("general", core.KindChannel, forward)
	b := s.Sessionize("general", core.KindChannel, backward)
	require.Equal(t, a, b)

	// IDs derive from channel and start time only
	assert.Equal(t, core.SessionID("general", base), a[0].Id)
	assert.Equal(t, core.SessionID("general", base.Add(7*time.Hour)), a[1].Id)
}

func TestSessionize_TranscriptUsesDisplayNames(t *testing.T) {
	s := NewSessionizer(6*time.Hour, testUsers, nil)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
		msg(base, "U1", "hello"),
		msg(base.Add(time.Minute), "UNKNOWN", "hi back"),
	})
	require.Len(t, sessions, 1)
	assert.Equal(t, "mike: hello\nUNKNOWN: hi back", sessions[0].Transcript)
}

func TestSessionize_SkipsZeroTimestamps(t *testing.T) {
	s := NewSessionizer(6*time.Hour, testUsers, nil)
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{
		{UserID: "U1", Text: "no timestamp"},
		msg(base, "U2", "fine"),
	})
	require.Len(t, sessions, 1)
	assert.Equal(t, 1, sessions[0].MessageCount)
}

type stubParser struct{}

func (stubParser) ExtractText(ref string) (string, bool) {
	if ref == "notes.txt" {
		return "inspection notes text", true
	}
	return "", false
}

func TestSessionize_EnrichedTranscriptIncludesAttachments(t *testing.T) {
	s := NewSessionizer(6*time.Hour, testUsers, stubParser{})
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	m := msg(base, "U1", "see attached")
	m.FileRefs = []string{"notes.txt", "photo.jpg"}

	sessions := s.Sessionize("general", core.KindChannel, []core.RawMessage{m})
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].FileCount)
	assert.Contains(t, sessions[0].EnrichedTranscript, "inspection notes text")
	assert.NotContains(t, sessions[0].Transcript, "inspection notes text")
	assert.NotContains(t, sessions[0].EnrichedTranscript, "photo.jpg]")
}
