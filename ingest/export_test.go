package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/chatvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExport lays out a small export directory for tests.
func writeExport(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

const testUsersJSON = `[
  {"id": "U1", "name": "mike", "is_bot": false},
  {"id": "U2", "name": "sara", "is_bot": false},
  {"id": "U3", "name": "deploybot", "is_bot": true}
]`

func TestOpenExport_LoadsUsersAndConversations(t *testing.T) {
	root := writeExport(t, map[string]string{
		"users.json":         testUsersJSON,
		"conversations.json": `[{"name": "mike--sara", "kind": "dm"}]`,
		"general/2025-03-14.json": `[
			{"ts": "2025-03-14T09:00:00Z", "user": "U1", "text": "morning", "type": "message"}
		]`,
		"mike--sara/2025-03-14.json": `[
			{"ts": "2025-03-14T10:00:00Z", "user": "U2", "text": "hey", "type": "message"}
		]`,
	})

	export, err := OpenExport(root)
	require.NoError(t, err)

	users := export.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "mike", users["U1"].DisplayName)
	assert.True(t, users["U3"].IsBot)

	convs := export.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "general", convs[0].Name)
	assert.Equal(t, core.KindChannel, convs[0].Kind)
	assert.Equal(t, "mike--sara", convs[1].Name)
	assert.Equal(t, core.KindDM, convs[1].Kind)
}

func TestOpenExport_MissingRoot(t *testing.T) {
	_, err := OpenExport(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrExportNotFound)
}

func TestOpenExport_MissingUsers(t *testing.T) {
	_, err := OpenExport(t.TempDir())
	assert.ErrorIs(t, err, ErrUsersFileMissing)
}

func TestReadMessages_MergesDailyFilesInOrder(t *testing.T) {
	root := writeExport(t, map[string]string{
		"users.json": testUsersJSON,
		"general/2025-03-15.json": `[
			{"ts": "2025-03-15T09:00:00Z", "user": "U2", "text": "day two", "type": "message"}
		]`,
		"general/2025-03-14.json": `[
			{"ts": "2025-03-14T09:00:00Z", "user": "U1", "text": "day one", "type": "message"}
		]`,
	})

	export, err := OpenExport(root)
	require.NoError(t, err)

	messages, failures := export.ReadMessages(export.Conversations()[0])
	assert.Empty(t, failures)
	require.Len(t, messages, 2)
	assert.Equal(t, "day one", messages[0].Text)
	assert.Equal(t, "day two", messages[1].Text)
}

func TestReadMessages_CorruptFileRecordedNotFatal(t *testing.T) {
	root := writeExport(t, map[string]string{
		"users.json":              testUsersJSON,
		"general/2025-03-14.json": `{not json`,
		"general/2025-03-15.json": `[
			{"ts": "2025-03-15T09:00:00Z", "user": "U1", "text": "survives", "type": "message"}
		]`,
	})

	export, err := OpenExport(root)
	require.NoError(t, err)

	messages, failures := export.ReadMessages(export.Conversations()[0])
	require.Len(t, messages, 1)
	assert.Equal(t, "survives", messages[0].Text)
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join("general", "2025-03-14.json"), failures[0].Path)
	assert.Contains(t, failures[0].Reason, "invalid JSON")
}

func TestReadMessages_MalformedTimestampSkipped(t *testing.T) {
	root := writeExport(t, map[string]string{
		"users.json": testUsersJSON,
		"general/2025-03-14.json": `[
			{"ts": "not-a-time", "user": "U1", "text": "bad", "type": "message"},
			{"ts": "2025-03-14T09:00:00Z", "user": "U2", "text": "good", "type": "message"}
		]`,
	})

	export, err := OpenExport(root)
	require.NoError(t, err)

	messages, failures := export.ReadMessages(export.Conversations()[0])
	assert.Empty(t, failures)
	require.Len(t, messages, 1)
	assert.Equal(t, "good", messages[0].Text)
}

func TestParseTimestamp(t *testing.T) {
	rfc, err := parseTimestamp("2025-03-14T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), rfc)

	epoch, err := parseTimestamp("1741942800.000088")
	require.NoError(t, err)
	assert.Equal(t, int64(1741942800), epoch.Unix())

	_, err = parseTimestamp("")
	assert.Error(t, err)
	_, err = parseTimestamp("yesterday")
	assert.Error(t, err)
}
