package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/PressTune/models"
)

// CommentChangesChannel is the postgres NOTIFY channel fed by the
// comments_notify_change trigger.
const CommentChangesChannel = "comment_changes"

// DecodeCommentNotification parses a trigger payload into a hub event.
func DecodeCommentNotification(payload string) (models.CommentChangeEvent, error) {
	var event models.CommentChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, err
	}
	event.Type = models.CommentsChangedEvent
	return event, nil
}

// ListenForCommentChanges forwards comment_changes notifications to hub until
// ctx is cancelled.
func ListenForCommentChanges(ctx context.Context, dsn string, hub *CommentHub) error {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("Comment listener event %d: %v", ev, err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(CommentChangesChannel); err != nil {
		return err
	}
	log.Printf("Listening for %s notifications", CommentChangesChannel)

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-listener.Notify:
			// Notify yields nil after the listener reconnects.
			if n == nil {
				continue
			}
			event, err := DecodeCommentNotification(n.Extra)
			if err != nil {
				log.Printf("Failed to decode comment notification %q: %v", n.Extra, err)
				continue
			}
			if event.Resource_Slug == "" {
				continue
			}
			hub.Publish(event)

		case <-time.After(90 * time.Second):
			if err := listener.Ping(); err != nil {
				log.Printf("Comment listener ping failed: %v", err)
			}
		}
	}
}
