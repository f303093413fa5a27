package chat

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/asianpilots/volunteer-manager/pkg/model"
)

const (
	logPageSize    = 500
	maxExportedLog = 10000
)

// Logs returns the latest chat log entries
func (s Service) Logs(ctx context.Context) ([]model.ChatLog, error) {
	return s.repository.FindLogs(ctx, logPageSize)
}

// ExportLogs returns the chat log entries included in a CSV export
func (s Service) ExportLogs(ctx context.Context) ([]model.ChatLog, error) {
	return s.repository.FindLogs(ctx, maxExportedLog)
}

// WriteCSV writes the log entries as created_at,user_id,session_id,role,content rows after a header
func WriteCSV(w io.Writer, logs []model.ChatLog) error {
	writer := csv.NewWriter(w)
	err := writer.Write([]string{"created_at", "user_id", "session_id", "role", "content"})
	if err != nil {
		return err
	}

	for _, log := range logs {
		var userID, sessionID string
		if log.UserID != nil {
			userID = log.UserID.String()
		}
		if log.SessionID != nil {
			sessionID = *log.SessionID
		}
		err := writer.Write([]string{
			log.CreatedAt.UTC().Format(time.RFC3339Nano),
			userID,
			sessionID,
			string(log.Role),
			log.Content,
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFilename names the CSV export of the given day
func ExportFilename(now time.Time) string {
	return "chat-log-" + now.UTC().Format(time.DateOnly) + ".csv"
}
