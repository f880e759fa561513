package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"versebattle/internal/game"
	"versebattle/internal/model"
	"versebattle/internal/store"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgRoomUpdate  MessageType = "room_update"
	MsgRoomDeleted MessageType = "room_deleted"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one player's WebSocket connection
type Connection struct {
	RoomCode string
	PlayerID string
	Send     chan []byte
}

// roomWatch fans one room subscription out to every open connection.
type roomWatch struct {
	conns  map[*Connection]bool
	cancel func()
}

// Hub manages room subscriptions and player presence. A disconnected
// player is removed from the room only after a reconnect grace period.
type Hub struct {
	svc   *game.Service
	log   *zap.SugaredLogger
	grace time.Duration

	mu      sync.Mutex
	rooms   map[string]*roomWatch
	pending map[string]*time.Timer // roomCode+"/"+playerID -> leave timer
}

// NewHub creates a new WebSocket hub
func NewHub(svc *game.Service, grace time.Duration, log *zap.SugaredLogger) *Hub {
	return &Hub{
		svc:     svc,
		log:     log,
		grace:   grace,
		rooms:   make(map[string]*roomWatch),
		pending: make(map[string]*time.Timer),
	}
}

// Register attaches a connection to its room's update stream. The first
// connection for a room opens the store subscription.
func (h *Hub) Register(conn *Connection) error {
	// Fetch the current snapshot before taking the lock; any transition
	// that lands in between arrives through the subscription anyway.
	var snapshot []byte
	if room, err := h.svc.GetRoom(context.Background(), conn.RoomCode); err == nil {
		if data, err := marshalUpdate(room); err == nil {
			snapshot = data
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnect within the grace period keeps the player in the room.
	key := conn.RoomCode + "/" + conn.PlayerID
	if t, ok := h.pending[key]; ok {
		t.Stop()
		delete(h.pending, key)
	}

	watch, ok := h.rooms[conn.RoomCode]
	if !ok {
		events, cancel, err := h.svc.Subscribe(context.Background(), conn.RoomCode)
		if err != nil {
			return err
		}
		watch = &roomWatch{
			conns:  make(map[*Connection]bool),
			cancel: cancel,
		}
		h.rooms[conn.RoomCode] = watch
		go h.forward(conn.RoomCode, events)
		h.log.Infow("room watch opened", "room", conn.RoomCode)
	}
	watch.conns[conn] = true

	// Seed the client so it does not wait for the next transition.
	if snapshot != nil {
		select {
		case conn.Send <- snapshot:
		default:
		}
	}

	h.log.Infow("player connected", "room", conn.RoomCode, "player", conn.PlayerID)
	return nil
}

// Unregister detaches a connection and schedules presence removal.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watch, ok := h.rooms[conn.RoomCode]
	if !ok || !watch.conns[conn] {
		return
	}
	delete(watch.conns, conn)
	close(conn.Send)
	h.log.Infow("player disconnected", "room", conn.RoomCode, "player", conn.PlayerID)

	if len(watch.conns) == 0 {
		watch.cancel()
		delete(h.rooms, conn.RoomCode)
		h.log.Infow("room watch closed", "room", conn.RoomCode)
	}

	for c := range watch.conns {
		if c.PlayerID == conn.PlayerID {
			return // still connected elsewhere
		}
	}

	key := conn.RoomCode + "/" + conn.PlayerID
	if t, ok := h.pending[key]; ok {
		t.Stop()
	}
	h.pending[key] = time.AfterFunc(h.grace, func() {
		h.mu.Lock()
		delete(h.pending, key)
		h.mu.Unlock()
		if err := h.svc.LeaveRoom(context.Background(), conn.RoomCode, conn.PlayerID); err != nil {
			h.log.Warnw("presence removal failed", "room", conn.RoomCode, "player", conn.PlayerID, "error", err)
		}
	})
}

// Close stops all room watches and pending presence timers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code, watch := range h.rooms {
		watch.cancel()
		for c := range watch.conns {
			close(c.Send)
		}
		delete(h.rooms, code)
	}
	for key, t := range h.pending {
		t.Stop()
		delete(h.pending, key)
	}
}

// forward relays store events to every connection in the room until the
// subscription closes.
func (h *Hub) forward(code string, events <-chan store.Event) {
	for ev := range events {
		var data []byte
		var err error
		if ev.Deleted {
			data, err = json.Marshal(&Message{Type: MsgRoomDeleted})
		} else {
			data, err = marshalUpdate(ev.Room)
		}
		if err != nil {
			h.log.Warnw("marshal room event", "room", code, "error", err)
			continue
		}

		h.mu.Lock()
		watch, ok := h.rooms[code]
		if !ok {
			h.mu.Unlock()
			return
		}
		for conn := range watch.conns {
			select {
			case conn.Send <- data:
			default:
				// Drop message if buffer full
			}
		}
		if ev.Deleted {
			watch.cancel()
			for conn := range watch.conns {
				close(conn.Send)
			}
			delete(h.rooms, code)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
}

func marshalUpdate(room *model.RoomState) ([]byte, error) {
	payload, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MsgRoomUpdate, Payload: payload})
}
