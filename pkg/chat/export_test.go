package chat

import (
	"bytes"
	"testing"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	userID := uuid.MustParse("5b0d42a4-3b8a-4c8e-9d61-0c6f0a1a2b3c")
	session := "s-1"
	createdAt := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	logs := []model.ChatLog{
		{CreatedAt: createdAt, UserID: &userID, SessionID: &session, Role: model.ChatRoleAssistant, Content: `Bring "water", sunscreen`},
		{CreatedAt: createdAt, Role: model.ChatRoleUser, Content: "line one\nline two"},
	}

	var b bytes.Buffer
	err := WriteCSV(&b, logs)

	require.NoError(t, err)
	want := "created_at,user_id,session_id,role,content\n" +
		"2026-10-14T09:30:00Z,5b0d42a4-3b8a-4c8e-9d61-0c6f0a1a2b3c,s-1,assistant,\"Bring \"\"water\"\", sunscreen\"\n" +
		"2026-10-14T09:30:00Z,,,user,\"line one\nline two\"\n"
	assert.Equal(t, want, b.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var b bytes.Buffer

	require.NoError(t, WriteCSV(&b, nil))

	assert.Equal(t, "created_at,user_id,session_id,role,content\n", b.String())
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 10, 14, 23, 30, 0, 0, time.FixedZone("EDT", -4*60*60))

	assert.Equal(t, "chat-log-2026-10-15.csv", ExportFilename(now))
}
