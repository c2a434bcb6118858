package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
)

type subscription struct {
	client *Client
	room   string
}

// Hub tracks connected clients and the rooms they subscribe to. Rooms
// are plain strings; game and tournament code picks its own naming.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	subscribe   chan subscription
	unsubscribe chan subscription

	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		clients:     make(map[*Client]bool),
		rooms:       make(map[string]map[*Client]bool),
		logger:      logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				for room := range client.rooms {
					h.dropFromRoomLocked(client, room)
				}
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.rooms[sub.room]; !ok {
				h.rooms[sub.room] = make(map[*Client]bool)
			}
			h.rooms[sub.room][sub.client] = true
			sub.client.rooms[sub.room] = true
			h.mu.Unlock()

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			h.dropFromRoomLocked(sub.client, sub.room)
			delete(sub.client.rooms, sub.room)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) dropFromRoomLocked(client *Client, room string) {
	clients, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

// Subscribe adds the client to a room. Safe to call from any goroutine.
func (h *Hub) Subscribe(client *Client, room string) {
	h.subscribe <- subscription{client: client, room: room}
}

func (h *Hub) Unsubscribe(client *Client, room string) {
	h.unsubscribe <- subscription{client: client, room: room}
}

// BroadcastToRoom sends a message to every client subscribed to roomID.
// Slow clients are skipped rather than blocking the caller, which may
// be a game loop.
func (h *Hub) BroadcastToRoom(roomID string, message any) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal room broadcast",
			slog.String("room", roomID),
			slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomID] {
		client.enqueue(messageBytes)
	}
}

// RoomSize reports how many clients are subscribed to a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
