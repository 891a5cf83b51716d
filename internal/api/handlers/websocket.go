package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-presence/internal/api/middleware"
	"chat-presence/internal/chat"
	"chat-presence/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests into hub
// connections.
type WebSocketHandler struct {
	wsHub   *websocket.Hub
	chatHub *chat.Hub
}

func NewWebSocketHandler(wsHub *websocket.Hub, chatHub *chat.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		wsHub:   wsHub,
		chatHub: chatHub,
	}
}

// Connect godoc
// @Summary      Open a chat WebSocket connection
// @Description  Upgrades to WebSocket and registers the caller's presence
// @Tags         ws
// @Param        token  query  string  true  "JWT access token"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *WebSocketHandler) Connect(c *gin.Context) {
	caller, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity not resolved"})
		return
	}
	websocket.ServeWS(h.wsHub, h.chatHub, c.Writer, c.Request, caller)
}
