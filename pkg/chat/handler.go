package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(chatService chatService) Handler {
	return Handler{chatService: chatService}
}

type Handler struct {
	chatService chatService
}

type chatService interface {
	Ask(ctx context.Context, userID uuid.UUID, message string) (string, error)
	Logs(ctx context.Context) ([]model.ChatLog, error)
	ExportLogs(ctx context.Context) ([]model.ChatLog, error)
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

// Ask the FAQ chat
func (h Handler) Ask(c *gin.Context) {
	// swagger:route POST /chat askChat
	//
	// Ask the FAQ
	//
	// Answer a question using only the FAQ document
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: ChatReply
	//	400: Error
	//	401: Error
	//	415: Error
	//	500: Error
	//	502: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var request askRequest
	if err := handler.DataBinder(c, &request, "Invalid JSON"); err != nil {
		_ = c.Error(err)
		return
	}

	reply, err := h.chatService.Ask(c.Request.Context(), user.ID, request.Message)
	if errors.Is(err, ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, askResponse{Reply: reply})
}

// Logs lists the latest chat log entries
func (h Handler) Logs(c *gin.Context) {
	// swagger:route GET /admin/chat-log findChatLog
	//
	// Find chat log
	//
	// Find the latest 500 chat log entries, newest first
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: []ChatLog
	//	401: Error
	//	403: Error
	logs, err := h.chatService.Logs(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// Export the chat log as CSV
func (h Handler) Export(c *gin.Context) {
	// swagger:route GET /admin/chat-log/export exportChatLog
	//
	// Export chat log
	//
	// Download the chat log as a CSV file, newest first
	//
	// produces:
	//	- text/csv
	//
	// security:
	//	oauth2:
	//
	// responses:
	//	200: ChatLogCSV
	//	401: Error
	//	403: Error
	logs, err := h.chatService.ExportLogs(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(time.Now())))
	c.Status(http.StatusOK)
	if err := WriteCSV(c.Writer, logs); err != nil {
		_ = c.Error(err)
	}
}
