package handlers

import (
	"net/http"

	"kanban/internal/logger"
	"kanban/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WS upgrades to the task event feed. Browsers cannot set headers on a
// websocket handshake, so the token comes from the query string.
func (h *Handler) WS(hub *ws.Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
			return
		}

		claims, err := h.Tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("ws upgrade failed", "error", err)
			return
		}

		ws.NewClient(claims.UserID, conn, hub).Run()
	}
}
