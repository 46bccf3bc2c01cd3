package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/chat"
)

// maxChatBody bounds POST /chat. Histories are capped client side, so this
// only stops abuse.
const maxChatBody = 256 << 10

func (s *Server) handleChat(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxChatBody)

	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, chat.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if s.twin == nil {
		c.JSON(http.StatusInternalServerError, chat.ErrorResponse{
			Error:   "Failed to process chat request",
			Details: chat.ErrNotConfigured.Error(),
		})
		return
	}

	streaming := false
	err := s.twin.Reply(c.Request.Context(), req.Messages, func(delta string) error {
		if !streaming {
			streaming = true
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		c.SSEvent(chat.EventDelta, chat.DeltaEvent{Text: delta})
		c.Writer.Flush()
		return c.Request.Context().Err()
	})

	if err != nil {
		s.logger.Error("chat reply failed",
			zap.Error(err),
			zap.Bool("streaming", streaming),
			zap.String("request_id", c.GetString("request_id")))
		_ = c.Error(err)

		if !streaming {
			status := http.StatusInternalServerError
			if errors.Is(err, chat.ErrEmptyHistory) {
				status = http.StatusBadRequest
			}
			c.JSON(status, chat.ErrorResponse{Error: "Failed to process chat request", Details: err.Error()})
			return
		}
		c.SSEvent(chat.EventError, chat.ErrorEvent{Error: err.Error()})
		c.Writer.Flush()
		return
	}

	if !streaming {
		// empty reply; still a valid stream
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Status(http.StatusOK)
	}
	c.SSEvent(chat.EventDone, gin.H{})
	c.Writer.Flush()
}
