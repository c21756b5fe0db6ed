package handlers

import (
	"net/http"

	"skab-service/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	conversationService service.ConversationService
}

func NewMessageHandler(conversationService service.ConversationService) *MessageHandler {
	return &MessageHandler{conversationService: conversationService}
}

type sendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage godoc
// @Summary Send a direct message
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "Peer user ID"
// @Param request body sendMessageRequest true "Message text"
// @Success 201 {object} models.Message
// @Failure 400 {object} ErrorResponse "Empty or oversized text"
// @Failure 403 {object} ErrorResponse "Blocked in either direction"
// @Router /conversations/{id}/messages [post]
// @Security BearerAuth
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	peerID, ok := pathUserID(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	msg, err := h.conversationService.Send(c.Request.Context(), userID, peerID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetHistory godoc
// @Summary Get the full message history with a peer
// @Description Messages are returned in ascending creation order.
// @Tags messages
// @Produce json
// @Param id path int true "Peer user ID"
// @Success 200 {array} models.Message
// @Router /conversations/{id}/messages [get]
// @Security BearerAuth
func (h *MessageHandler) GetHistory(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	peerID, ok := pathUserID(c)
	if !ok {
		return
	}

	messages, err := h.conversationService.History(c.Request.Context(), userID, peerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// DeleteMessage godoc
// @Summary Delete a message
// @Description Only the author can delete their message.
// @Tags messages
// @Param messageId path string true "Message ID"
// @Success 204 "Message deleted"
// @Failure 403 {object} ErrorResponse "Not the author"
// @Failure 404 {object} ErrorResponse "Message not found"
// @Router /messages/{messageId} [delete]
// @Security BearerAuth
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	messageID := c.Param("messageId")
	if messageID == "" {
		respondBadRequest(c, "Invalid message ID")
		return
	}

	if err := h.conversationService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
