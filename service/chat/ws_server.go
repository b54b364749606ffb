package chat

import (
	"net"
	"net/http"
	"time"

	"github.com/Ksaikiran28/NexChat/logger"
	midsec "github.com/Ksaikiran28/NexChat/middleware/security"
	jwtlib "github.com/Ksaikiran28/NexChat/tools/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades `GET /ws?token=...` into the user's live connection.
// The token comes from the query string because browsers cannot set headers
// on a websocket handshake.
func (s *Server) HandleWS(jwt jwtlib.Options) gin.HandlerFunc {
	authOpts := midsec.DefaultOptions(jwt)
	authOpts.AllowQueryToken = true

	return func(c *gin.Context) {
		token := midsec.ExtractToken(c, authOpts)
		userID, err := jwtlib.Verify(jwt, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Infof("[ws] upgrade failed user=%s: %v", userID, err)
			return
		}

		client := NewClient(uuid.NewString(), userID, ws, s.conf.SendQueueSize)
		s.OnConnectionOpened(client)
		s.readLoop(client)
	}
}

// readLoop blocks until the peer goes away. Clients only push data upstream
// over REST; inbound websocket traffic is just keepalive, so frames other
// than pings are read and discarded.
func (s *Server) readLoop(c *Client) {
	defer c.Close()

	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, _, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debugf("[ws] peer closed user=%s conn=%s", c.UserID, c.ConnID)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout user=%s conn=%s", c.UserID, c.ConnID)
			} else {
				logger.Infof("[ws] read err user=%s conn=%s: %v", c.UserID, c.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		// refresh liveness on any client chatter
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	}
}
