package server

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// subscriber is one connected websocket client
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans balance snapshots out to websocket subscribers
type Hub struct {
	subscribers map[*subscriber]bool
	broadcast   chan []byte
	register    chan *subscriber
	unregister  chan *subscriber
	snapshot    func() ([]byte, error)
	done        chan struct{}
	log         *logrus.Logger
}

// NewHub creates a hub. snapshot supplies the message a new subscriber
// receives on connect.
func NewHub(snapshot func() ([]byte, error), log *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]bool),
		broadcast:   make(chan []byte, 16),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		snapshot:    snapshot,
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for sub := range h.subscribers {
				close(sub.send)
				delete(h.subscribers, sub)
			}
			return
		case sub := <-h.register:
			h.subscribers[sub] = true
			h.log.Infof("New WebSocket subscriber connected. Total subscribers: %d", len(h.subscribers))
			if msg, err := h.snapshot(); err != nil {
				h.log.Errorf("Failed to build snapshot for new subscriber: %v", err)
			} else {
				h.deliver(sub, msg)
			}
		case sub := <-h.unregister:
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
				h.log.Infof("WebSocket subscriber disconnected. Total subscribers: %d", len(h.subscribers))
			}
		case msg := <-h.broadcast:
			for sub := range h.subscribers {
				h.deliver(sub, msg)
			}
		}
	}
}

// deliver drops subscribers that cannot keep up
func (h *Hub) deliver(sub *subscriber, msg []byte) {
	select {
	case sub.send <- msg:
	default:
		close(sub.send)
		delete(h.subscribers, sub)
	}
}

// Broadcast queues msg for every subscriber. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Broadcast queue full, dropping snapshot")
	}
}

// serve registers conn and starts its pumps
func (h *Hub) serve(conn *websocket.Conn) {
	sub := &subscriber{conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(sub)
	go h.readPump(sub)
}

// readPump only watches for close and pong frames; subscribers never send data
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
