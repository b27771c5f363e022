package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Event types published for a batch job.
const (
	EventProgress = "progress"
	EventDone     = "done"
	EventFailed   = "failed"
	EventReset    = "reset"
)

// BatchEvent is one progress notification for a batch job.
type BatchEvent struct {
	JobID     string    `json:"job_id"`
	EventType string    `json:"event_type"`
	State     string    `json:"state"`
	Progress  int       `json:"progress"`
	Rows      int       `json:"rows"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Terminal reports whether no further events follow for the job.
func (e BatchEvent) Terminal() bool {
	return e.EventType == EventDone || e.EventType == EventFailed || e.EventType == EventReset
}

// SSEHub fans batch events out to Server-Sent Events subscribers keyed by job ID.
type SSEHub struct {
	clients   map[string]map[chan BatchEvent]bool
	clientsMu sync.RWMutex
	broadcast chan BatchEvent
	stop      chan struct{}
	stopOnce  sync.Once
	keepAlive time.Duration
}

// NewSSEHub creates a hub and starts its dispatch loop.
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:   make(map[string]map[chan BatchEvent]bool),
		broadcast: make(chan BatchEvent, 100),
		stop:      make(chan struct{}),
		keepAlive: 30 * time.Second,
	}

	go hub.run()
	return hub
}

// Close stops dispatching. Subscribers stay open until they unsubscribe.
func (h *SSEHub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *SSEHub) run() {
	for {
		select {
		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.JobID] {
				deliver(clientChan, event)
			}
			h.clientsMu.RUnlock()
		case <-h.stop:
			return
		}
	}
}

// deliver hands event to a subscriber without blocking. A slow subscriber loses
// progress events, but a terminal event evicts the oldest queued one instead.
func deliver(ch chan BatchEvent, event BatchEvent) {
	select {
	case ch <- event:
		return
	default:
	}
	if !event.Terminal() {
		log.Printf("[SSE] Client channel full for job %s, skipping %s event", event.JobID, event.EventType)
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- event:
	default:
		log.Printf("[SSE] Client channel full for job %s, lost %s event", event.JobID, event.EventType)
	}
}

// Subscribe registers a listener for jobID. The returned func unregisters it and
// closes the channel.
func (h *SSEHub) Subscribe(jobID string) (<-chan BatchEvent, func()) {
	ch := make(chan BatchEvent, 16)
	h.clientsMu.Lock()
	if h.clients[jobID] == nil {
		h.clients[jobID] = make(map[chan BatchEvent]bool)
	}
	h.clients[jobID][ch] = true
	log.Printf("[SSE] Client registered for job %s (total clients: %d)", jobID, len(h.clients[jobID]))
	h.clientsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.clientsMu.Lock()
			defer h.clientsMu.Unlock()
			if clients, exists := h.clients[jobID]; exists {
				delete(clients, ch)
				if len(clients) == 0 {
					delete(h.clients, jobID)
				}
			}
			close(ch)
		})
	}
}

// Broadcast queues an event. Progress events are dropped when the queue is full;
// terminal events wait for room until the hub is closed.
func (h *SSEHub) Broadcast(event BatchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Terminal() {
		select {
		case h.broadcast <- event:
		case <-h.stop:
		}
		return
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping %s event for job %s", event.EventType, event.JobID)
	}
}

// ClientCount returns the number of active subscribers for a job.
func (h *SSEHub) ClientCount(jobID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[jobID])
}

// Stream serves events for jobID on c until the client leaves or a terminal event is
// sent. current, when non-nil, is called after subscribing and its event written
// first, so a state change racing the subscription is either in the snapshot or
// delivered afterwards.
func (h *SSEHub) Stream(c *gin.Context, jobID string, current func() *BatchEvent) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Status(http.StatusOK)

	events, unsubscribe := h.Subscribe(jobID)
	defer unsubscribe()

	var initial *BatchEvent
	if current != nil {
		initial = current()
	}
	if initial != nil {
		writeEvent(c, *initial)
		c.Writer.Flush()
		if initial.Terminal() {
			return
		}
	}

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			writeEvent(c, event)
			return !event.Terminal()
		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func writeEvent(c *gin.Context, event BatchEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("[SSE] Failed to marshal event: %v", err)
		return
	}
	c.SSEvent(event.EventType, string(eventJSON))
}
