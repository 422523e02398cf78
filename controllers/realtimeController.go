package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/PressTune/initializers"
	"github.com/PressTune/services"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range initializers.AppConfig.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// SubscribeComments upgrades to a websocket that receives a
// comments_changed event whenever a comment of resourceSlug changes.
func SubscribeComments(c *gin.Context) {
	slug := c.Query("resourceSlug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resourceSlug is required"})
		return
	}

	hub := services.GetCommentHub()
	if hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Realtime updates are unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed for %s: %v", slug, err)
		return
	}

	sub := hub.Subscribe(slug)
	go writePump(conn, sub)
	readPump(conn, hub, sub)
}

// readPump only consumes control frames; clients never send data. It
// unsubscribes when the peer goes away.
func readPump(conn *websocket.Conn, hub *services.CommentHub, sub *services.Subscriber) {
	defer func() {
		hub.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for %s: %v", sub.Slug, err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *services.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for %s: %v", sub.Slug, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
