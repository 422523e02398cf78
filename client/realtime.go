package client

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PressTune/models"
)

// ChangeFeed delivers comments_changed events for one resource slug.
type ChangeFeed interface {
	Subscribe(ctx context.Context, resourceSlug string, onChange func(models.CommentChangeEvent)) (io.Closer, error)
}

// RealtimeClient subscribes to /api/comments/realtime over a websocket.
type RealtimeClient struct {
	baseURL string
	dialer  *websocket.Dialer
}

func NewRealtimeClient(baseURL string, dialer *websocket.Dialer) *RealtimeClient {
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	return &RealtimeClient{baseURL: strings.TrimRight(baseURL, "/"), dialer: dialer}
}

func websocketURL(baseURL, resourceSlug string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		baseURL = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		baseURL = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL + "/api/comments/realtime?resourceSlug=" + url.QueryEscape(resourceSlug)
}

func (r *RealtimeClient) Subscribe(ctx context.Context, resourceSlug string, onChange func(models.CommentChangeEvent)) (io.Closer, error) {
	conn, _, err := r.dialer.DialContext(ctx, websocketURL(r.baseURL, resourceSlug), nil)
	if err != nil {
		return nil, err
	}

	sub := &subscription{conn: conn, done: make(chan struct{})}
	go sub.readLoop(onChange)
	return sub, nil
}

type subscription struct {
	conn *websocket.Conn
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func (s *subscription) readLoop(onChange func(models.CommentChangeEvent)) {
	defer close(s.done)
	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isClosed() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Realtime subscription ended: %v", err)
			}
			return
		}

		var event models.CommentChangeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("Failed to decode realtime event: %v", err)
			continue
		}
		if s.isClosed() {
			return
		}
		onChange(event)
	}
}

func (s *subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close tears the subscription down and waits for the read loop to exit.
func (s *subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := s.conn.Close()
	<-s.done
	return err
}
