// Package ws pushes JSON messages to browsers over gorilla/websocket. It is
// broadcast only; anything a client sends besides control frames is
// discarded.
//
//	hub := ws.NewHub(config.CORSOrigins()...)
//	go hub.Run(ctx)
//	r.Get("/ws/notices", "notices.stream", hub.ServeHTTP)
//	_ = hub.Publish(notice)
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/diybuddy/projectbuddy/pkg/logger"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	readLimit   = 4 << 10
	sendBuffer  = 16
	queueLength = 256
)

// Hub owns the connected peers. All peer bookkeeping happens on the Run
// goroutine.
type Hub struct {
	upgrader websocket.Upgrader

	peers   map[*peer]struct{}
	join    chan *peer
	part    chan *peer
	out     chan []byte
	stopped chan struct{}
	count   atomic.Int64
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub accepts upgrades from origins. No origins, or "*", accepts any;
// requests without an Origin header (non-browser clients) always pass.
func NewHub(origins ...string) *Hub {
	h := &Hub{
		peers:   make(map[*peer]struct{}),
		join:    make(chan *peer),
		part:    make(chan *peer),
		out:     make(chan []byte, queueLength),
		stopped: make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || len(origins) == 0 || slices.Contains(origins, "*") || slices.Contains(origins, o)
		},
	}
	return h
}

// Run serves the hub until ctx ends, then closes every peer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for p := range h.peers {
				h.remove(p)
			}
			return
		case p := <-h.join:
			h.peers[p] = struct{}{}
			h.count.Store(int64(len(h.peers)))
			logger.Info("ws: client connected", "total", len(h.peers))
		case p := <-h.part:
			if _, ok := h.peers[p]; ok {
				h.remove(p)
				logger.Info("ws: client disconnected", "total", len(h.peers))
			}
		case msg := <-h.out:
			for p := range h.peers {
				select {
				case p.send <- msg:
				default:
					// Too slow to keep up; drop it rather than stall everyone.
					h.remove(p)
				}
			}
		}
	}
}

func (h *Hub) remove(p *peer) {
	delete(h.peers, p)
	close(p.send)
	h.count.Store(int64(len(h.peers)))
}

// Publish JSON-encodes v and queues it for every peer. A full queue drops
// the message with a warning.
func (h *Hub) Publish(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.out <- msg:
	default:
		logger.Warn("ws: broadcast queue full, message dropped")
	}
	return nil
}

// Clients is the number of connected peers.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// ServeHTTP upgrades the request and registers the peer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		return
	}
	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.join <- p:
	case <-h.stopped:
		_ = conn.Close()
		return
	}
	go p.write()
	go h.read(p)
}

// read keeps pongs and close frames flowing and reports the peer gone.
func (h *Hub) read(p *peer) {
	defer func() {
		select {
		case h.part <- p:
		case <-h.stopped:
		}
		_ = p.conn.Close()
	}()

	p.conn.SetReadLimit(readLimit)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func (p *peer) write() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
