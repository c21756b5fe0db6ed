package handlers

import (
	"net/http"
	"strconv"

	"skab-service/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListRecent godoc
// @Summary List the caller's most recent notifications
// @Description Returns the 50 most recent notifications, newest first.
// @Tags notifications
// @Produce json
// @Success 200 {array} models.Notification
// @Router /notifications [get]
// @Security BearerAuth
func (h *NotificationHandler) ListRecent(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	notifications, err := h.notificationService.Recent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path int true "Notification ID"
// @Success 204 "Marked read"
// @Failure 403 {object} ErrorResponse "Belongs to another user"
// @Failure 404 {object} ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
// @Security BearerAuth
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid notification ID")
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), userID, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary Mark all of the caller's notifications as read
// @Tags notifications
// @Success 204 "All marked read"
// @Router /notifications/read [post]
// @Security BearerAuth
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := principal(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
