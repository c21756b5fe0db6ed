package handlers

import (
	"net/http"

	"skab-service/internal/services"

	"github.com/gin-gonic/gin"
)

type PresenceHandler struct {
	redisService *services.RedisService
}

func NewPresenceHandler(redisService *services.RedisService) *PresenceHandler {
	return &PresenceHandler{redisService: redisService}
}

// GetOnlineUsers godoc
// @Summary List currently online user IDs
// @Tags presence
// @Produce json
// @Success 200 {object} gin.H "Online user IDs"
// @Router /presence/online [get]
// @Security BearerAuth
func (h *PresenceHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.redisService.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: "Failed to load online users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": users})
}

// GetUserPresence godoc
// @Summary Check whether a user is online
// @Tags presence
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} gin.H "Presence flag"
// @Router /presence/{id} [get]
// @Security BearerAuth
func (h *PresenceHandler) GetUserPresence(c *gin.Context) {
	targetID, ok := pathUserID(c)
	if !ok {
		return
	}
	online, err := h.redisService.IsUserOnline(c.Request.Context(), targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: "Failed to check presence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": targetID, "online": online})
}
