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
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/chatvault/core"
)

// Sessionizer groups a conversation's messages into sessions split on an
// inactivity gap. Given the same message set it always produces the same
// session boundaries and IDs: input is explicitly sorted, and session IDs
// are content hashes of (channel, start time).
type Sessionizer struct {
	gap    time.Duration
	users  map[string]core.UserRecord
	parser FileParser
	logger *slog.Logger
}

// NewSessionizer creates a sessionizer. users resolves raw user IDs to
// display names; parser extracts attachment text for the enriched
// transcript and may be nil to skip attachments.
func NewSessionizer(gap time.Duration, users map[string]core.UserRecord, parser FileParser) *Sessionizer {
	if parser == nil {
		parser = NoopFileParser{}
	}
	return &Sessionizer{
		gap:    gap,
		users:  users,
		parser: parser,
		logger: slog.Default().With("component", "sessionizer"),
	}
}

// Sessionize splits the messages of one conversation into time-ordered,
// non-overlapping sessions. Messages at most the inactivity gap apart
// share a session; a strictly larger gap starts a new one. A single
// isolated message forms a one-message session; no messages yields no
// sessions.
func (s *Sessionizer) Sessionize(channel string, kind core.ConversationKind, messages []core.RawMessage) []core.Session {
	ordered := make([]core.RawMessage, 0, len(messages))
	for _, m := range messages {
		if m.Timestamp.IsZero() {
			s.logger.Warn("skipping message without timestamp", "channel", channel, "user", m.UserID)
			continue
		}
		ordered = append(ordered, m)
	}
	if len(ordered) == 0 {
		return nil
	}

	// Timestamp ties broken on user then text so equal inputs sort equally
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		if ordered[i].UserID != ordered[j].UserID {
			return ordered[i].UserID < ordered[j].UserID
		}
		return ordered[i].Text < ordered[j].Text
	})

	var sessions []core.Session
	start := 0
	for i := 1; i <= len(ordered); i++ {
		if i < len(ordered) && ordered[i].Timestamp.Sub(ordered[i-1].Timestamp) <= s.gap {
			continue
		}
		sessions = append(sessions, s.buildSession(channel, kind, ordered[start:i]))
		start = i
	}

	return sessions
}

// buildSession assembles one session from a consecutive message window.
func (s *Sessionizer) buildSession(channel string, kind core.ConversationKind, window []core.RawMessage) core.Session {
	var transcript strings.Builder
	var attachments strings.Builder
	fileCount := 0

	for i, m := range window {
		if i > 0 {
			transcript.WriteByte('\n')
		}
		transcript.WriteString(s.displayName(m.UserID))
		transcript.WriteString(": ")
		transcript.WriteString(m.Text)

		for _, ref := range m.FileRefs {
			fileCount++
			text, ok := s.parser.ExtractText(ref)
			if !ok {
				continue
			}
			fmt.Fprintf(&attachments, "\n\n[attachment %s]\n%s", ref, text)
		}
	}

	enriched := transcript.String() + attachments.String()
	start := window[0].Timestamp

	return core.Session{
		Id:                 core.SessionID(channel, start),
		Channel:            channel,
		Kind:               kind,
		StartTime:          start,
		EndTime:            window[len(window)-1].Timestamp,
		MessageCount:       len(window),
		FileCount:          fileCount,
		Transcript:         transcript.String(),
		EnrichedTranscript: enriched,
	}
}

func (s *Sessionizer) displayName(userID string) string {
	if user, ok := s.users[userID]; ok && user.DisplayName != "" {
		return user.DisplayName
	}
	return userID
}
