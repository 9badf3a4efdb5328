package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/identity"
	"github.com/medhire/medhire-backend/internal/notify"
	"github.com/medhire/medhire-backend/internal/ws"
)

type WSHandler struct {
	Cfg    *config.Config
	Hub    *ws.Hub
	Notify *notify.Dispatcher
}

// Connect upgrades to a websocket and registers the connection under
// the caller's identity. Browsers cannot set headers on websocket
// requests, so the token rides in the query string. Pending
// notifications are flushed as soon as the connection is live.
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	actor, err := identity.ParseToken(h.Cfg.JWTSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.WithError(err).Error("websocket accept failed")
		return
	}

	client := h.Hub.Add(actor.ID, conn)
	defer h.Hub.Remove(client)

	h.Notify.FlushUnread(actor.ID, client)

	// No client-to-server messages are expected; CloseRead keeps the
	// connection serviced until the peer goes away.
	readCtx := conn.CloseRead(context.Background())
	<-readCtx.Done()
}
