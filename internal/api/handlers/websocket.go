package handlers

import (
	"net/http"

	"skab-service/internal/api/middleware"
	"skab-service/internal/websocket"
	"skab-service/pkg/logger"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

type WSHandler struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
	log      *logger.Logger
}

func NewWSHandler(hub *websocket.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement happens in the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// HandleWebSocket godoc
// @Summary WebSocket live feed
// @Description Upgrades to a websocket carrying message and notification pushes. Authenticate with a "token" query parameter.
// @Tags websocket
// @Param token query string true "JWT"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} ErrorResponse "Missing or invalid token"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", "userID", userID, "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	client.Start()
}
