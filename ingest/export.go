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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/chatvault/core"
)

// Export reads a chat export directory. The expected layout is:
//
//	root/
//	  users.json              user table: [{"id","name","is_bot"}]
//	  conversations.json      optional kinds: [{"name","kind"}]
//	  <conversation>/         one directory per conversation
//	    2025-03-14.json       daily message arrays, sorted by file name
//
// All listings are explicitly sorted so two reads of the same export
// produce identical input order regardless of filesystem iteration order.
type Export struct {
	root          string
	users         map[string]core.UserRecord
	conversations []Conversation
	logger        *slog.Logger
}

// Conversation identifies one conversation directory in the export.
type Conversation struct {
	Name  string
	Kind  core.ConversationKind
	Files []string // daily file paths, sorted by name
}

// exportMessage is the on-disk message shape.
type exportMessage struct {
	TS    string   `json:"ts"`
	User  string   `json:"user"`
	Text  string   `json:"text"`
	Type  string   `json:"type"`
	Files []string `json:"files,omitempty"`
}

// exportUser is the on-disk user table shape.
type exportUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
}

// exportConversation is the on-disk conversation manifest shape.
type exportConversation struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// OpenExport opens an export directory and loads its user table and
// conversation listing. Message files are read lazily by ReadMessages.
func OpenExport(root string) (*Export, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrExportNotFound, root)
	}

	e := &Export{
		root:   root,
		logger: slog.Default().With("component", "export"),
	}

	if err := e.loadUsers(); err != nil {
		return nil, err
	}

	kinds, err := e.loadConversationKinds()
	if err != nil {
		return nil, err
	}

	if err := e.scanConversations(kinds); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Export) loadUsers() error {
	data, err := os.ReadFile(filepath.Join(e.root, "users.json"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsersFileMissing, err)
	}

	var raw []exportUser
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing users.json: %w", err)
	}

	e.users = make(map[string]core.UserRecord, len(raw))
	for _, u := range raw {
		e.users[u.ID] = core.UserRecord{
			UserID:      u.ID,
			DisplayName: u.Name,
			IsBot:       u.IsBot,
		}
	}
	return nil
}

// loadConversationKinds reads the optional conversations.json manifest.
// Conversations absent from the manifest default to channel kind.
func (e *Export) loadConversationKinds() (map[string]core.ConversationKind, error) {
	data, err := os.ReadFile(filepath.Join(e.root, "conversations.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]core.ConversationKind{}, nil
		}
		return nil, err
	}

	var raw []exportConversation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing conversations.json: %w", err)
	}

	kinds := make(map[string]core.ConversationKind, len(raw))
	for _, c := range raw {
		switch strings.ToLower(c.Kind) {
		case "dm":
			kinds[c.Name] = core.KindDM
		case "group":
			kinds[c.Name] = core.KindGroup
		default:
			kinds[c.Name] = core.KindChannel
		}
	}
	return kinds, nil
}

func (e *Export) scanConversations(kinds map[string]core.ConversationKind) error {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(e.root, entry.Name())
		files, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)

		kind, ok := kinds[entry.Name()]
		if !ok {
			kind = core.KindChannel
		}

		e.conversations = append(e.conversations, Conversation{
			Name:  entry.Name(),
			Kind:  kind,
			Files: files,
		})
	}

	sort.Slice(e.conversations, func(i, j int) bool {
		return e.conversations[i].Name < e.conversations[j].Name
	})
	return nil
}

// Users returns the resolved user table.
func (e *Export) Users() map[string]core.UserRecord {
	return e.users
}

// Conversations returns the conversation listing, sorted by name.
func (e *Export) Conversations() []Conversation {
	return e.conversations
}

// Root returns the export root directory.
func (e *Export) Root() string {
	return e.root
}

// ReadMessages reads and merges every daily file of the conversation.
// Undecodable files are recorded as failures, not errors: a corrupt day
// never aborts the conversation. Messages with malformed timestamps are
// skipped with a warning.
func (e *Export) ReadMessages(conv Conversation) ([]core.RawMessage, []core.FileFailure) {
	var messages []core.RawMessage
	var failures []core.FileFailure

	for _, file := range conv.Files {
		data, err := os.ReadFile(file)
		if err != nil {
			failures = append(failures, core.FileFailure{Path: relPath(e.root, file), Reason: err.Error()})
			continue
		}

		var raw []exportMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			failures = append(failures, core.FileFailure{Path: relPath(e.root, file), Reason: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		for _, m := range raw {
			ts, err := parseTimestamp(m.TS)
			if err != nil {
				e.logger.Warn("skipping message with malformed timestamp",
					"file", relPath(e.root, file), "ts", m.TS, "err", err)
				continue
			}
			messages = append(messages, core.RawMessage{
				Timestamp: ts,
				UserID:    m.User,
				Text:      m.Text,
				Type:      m.Type,
				FileRefs:  m.Files,
			})
		}
	}

	return messages, failures
}

// parseTimestamp accepts RFC 3339 strings and epoch seconds with an
// optional fractional part ("1425567109.000088", the common export form).
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}

	epoch, err := strconv.ParseFloat(s, 64)
	if err != nil || epoch <= 0 {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), nil
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
