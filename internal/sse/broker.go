// Package sse fans generation progress out to connected clients over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types published by the document service.
const (
	TypeSectionGenerated = "section.generated"
	TypeProjectGenerated = "project.generated"
	TypeOutlineApplied   = "outline.applied"
	TypeSectionRefined   = "section.refined"
	TypeSectionSaved     = "section.saved"
	TypeCommentAdded     = "comment.added"
)

// Event is one message for a user's subscribers. UserID 0 reaches everyone.
type Event struct {
	Type   string `json:"type"`
	UserID int64  `json:"-"`
	Data   any    `json:"data"`
}

// Format renders e in the text/event-stream wire format.
func Format(e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, payload)), nil
}

type subscription struct {
	ch     chan Event
	userID int64
}

// Broker manages subscribers and routes events to the owning user.
//
// A single internal goroutine owns the subscriber set; public methods talk
// to it over channels.
type Broker struct {
	heartbeat time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan Event
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. Streams send a comment line every heartbeat
// to keep idle connections open.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	b := &Broker{
		heartbeat:     heartbeat,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan Event),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan Event]int64)

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.userID

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			for ch, userID := range clients {
				if event.UserID != 0 && event.UserID != userID {
					continue
				}
				select {
				case ch <- event:
				default:
					// Slow subscriber; drop rather than block the loop.
				}
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all subscriber channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a subscriber for userID's events.
func (b *Broker) Subscribe(userID int64) chan Event {
	ch := make(chan Event, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, userID: userID}:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for delivery.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// Heartbeat returns the keep-alive interval for streams.
func (b *Broker) Heartbeat() time.Duration {
	return b.heartbeat
}

// Stream writes userID's events to w as text/event-stream until the request
// ends or the broker closes.
func (b *Broker) Stream(w http.ResponseWriter, r *http.Request, userID int64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(userID)
	defer b.Unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case event, ok := <-ch:
			if !ok {
				return
			}
			msg, err := Format(event)
			if err != nil {
				continue
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
