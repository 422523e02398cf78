package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/PressTune/models"
)

// Subscriber receives raw event payloads for one resource slug.
type Subscriber struct {
	Slug string
	Send chan []byte
}

// CommentHub keeps one subscriber set per resource slug.
type CommentHub struct {
	subscribers map[string]map[*Subscriber]bool

	register   chan *Subscriber
	unregister chan *Subscriber
	publish    chan models.CommentChangeEvent
	quit       chan struct{}

	mu sync.RWMutex
}

func NewCommentHub() *CommentHub {
	return &CommentHub{
		subscribers: make(map[string]map[*Subscriber]bool),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		publish:     make(chan models.CommentChangeEvent, 64),
		quit:        make(chan struct{}),
	}
}

// Run processes registrations and events until Stop is called.
func (h *CommentHub) Run() {
	log.Println("Comment realtime hub started")
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if _, ok := h.subscribers[sub.Slug]; !ok {
				h.subscribers[sub.Slug] = make(map[*Subscriber]bool)
			}
			h.subscribers[sub.Slug][sub] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.subscribers[sub.Slug]; ok {
				if _, ok := subs[sub]; ok {
					delete(subs, sub)
					close(sub.Send)
					if len(subs) == 0 {
						delete(h.subscribers, sub.Slug)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.publish:
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to encode comment change event: %v", err)
				continue
			}
			h.mu.RLock()
			for sub := range h.subscribers[event.Resource_Slug] {
				select {
				case sub.Send <- payload:
				default:
					// A subscriber with a full buffer already has a reload pending.
				}
			}
			h.mu.RUnlock()

		case <-h.quit:
			log.Println("Comment realtime hub stopped")
			return
		}
	}
}

func (h *CommentHub) Stop() {
	close(h.quit)
}

// Subscribe registers a new subscriber for slug.
func (h *CommentHub) Subscribe(slug string) *Subscriber {
	sub := &Subscriber{Slug: slug, Send: make(chan []byte, 16)}
	select {
	case h.register <- sub:
	case <-h.quit:
		close(sub.Send)
	}
	return sub
}

// Unsubscribe removes sub and closes its Send channel.
func (h *CommentHub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.quit:
	}
}

// Publish queues event for delivery. It gives up after one second rather than
// blocking the caller on a stuck hub.
func (h *CommentHub) Publish(event models.CommentChangeEvent) {
	if event.Type == "" {
		event.Type = models.CommentsChangedEvent
	}
	select {
	case h.publish <- event:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing comment change event for %s", event.Resource_Slug)
	}
}

// SubscriberCount reports how many subscribers slug has.
func (h *CommentHub) SubscriberCount(slug string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[slug])
}

var commentHub *CommentHub

func InitCommentHub() *CommentHub {
	commentHub = NewCommentHub()
	go commentHub.Run()
	return commentHub
}

func GetCommentHub() *CommentHub {
	return commentHub
}
