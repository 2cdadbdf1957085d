// Package sse streams Server-Sent Events. A Broker fans one published
// value out to every connected client as a named event.
//
//	broker := sse.NewBroker("notice")
//	router.Get("/sse/notices", "notices.events", broker.ServeHTTP)
//	broker.Publish(msg)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/diybuddy/projectbuddy/pkg/logger"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w      http.ResponseWriter
	r      *http.Request
	rc     *http.ResponseController
	closed bool
}

// New creates an SSE stream and sets the required headers.
// Returns nil if the ResponseWriter (or anything it unwraps to) cannot
// flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering

	if err := rc.Flush(); err != nil {
		w.Header().Del("Content-Type")
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	return &Stream{w: w, r: r, rc: rc}
}

// SendJSON writes a named event whose data is already JSON.
func (s *Stream) SendJSON(event string, payload []byte) error {
	if s == nil || s.closed {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	return s.flush()
}

// Send writes a named SSE event with a JSON-encoded data payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.SendJSON(event, payload)
}

// Comment writes an SSE comment (useful as a keepalive heartbeat).
func (s *Stream) Comment(msg string) {
	if s == nil || s.closed {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	_ = s.flush()
}

func (s *Stream) flush() error {
	if err := s.rc.Flush(); err != nil {
		s.closed = true
		return fmt.Errorf("sse: flush: %w", err)
	}
	return nil
}

// IsClosed reports whether the client has disconnected.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
	return s.closed
}

// ─── Broker ───────────────────────────────────────────────────────────────────

const subscriberBuffer = 16

// Broker fans published values out to every connected stream.
type Broker struct {
	event     string
	heartbeat time.Duration

	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

// NewBroker creates a broker that sends every value as event.
func NewBroker(event string) *Broker {
	return &Broker{
		event:     event,
		heartbeat: 25 * time.Second,
		subs:      map[chan []byte]struct{}{},
	}
}

// Publish sends v to every subscriber. A subscriber whose buffer is full
// misses the value rather than stalling the publisher.
func (b *Broker) Publish(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- payload:
		default:
			logger.Warn("sse: dropping event for slow subscriber", "event", b.event)
		}
	}
	return nil
}

// Subscribers reports how many streams are connected.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// ServeHTTP streams events until the client disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stream := New(w, r)
	if stream == nil {
		return
	}

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-ch:
			if err := stream.SendJSON(b.event, payload); err != nil {
				return
			}
		case <-ticker.C:
			stream.Comment("keepalive")
		}
	}
}
