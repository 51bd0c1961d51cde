package services

import (
	"encoding/json"
	"sync"

	"github.com/selamgames/bingo-engine/engine"
	"go.uber.org/zap"
)

// event is the envelope pushed to websocket subscribers.
type event struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Hub fans room events out to subscribed clients. It implements
// engine.Notifier: sends never block, slow clients get messages
// dropped rather than stalling the game.
type Hub struct {
	log *zap.SugaredLogger

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:   log.Named("hub"),
		rooms: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) subscribe(roomID string, c *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[roomID]
	if !ok {
		clients = make(map[*Client]bool)
		h.rooms[roomID] = clients
	}
	clients[c] = true
	h.mu.Unlock()
	h.log.Infow("client subscribed", "room", roomID, "player", c.playerID)
}

func (h *Hub) unsubscribe(roomID string, c *Client) {
	h.mu.Lock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()
}

// broadcast sends an event to every subscriber of a room.
func (h *Hub) broadcast(roomID string, ev event) {
	b, err := json.Marshal(ev)
	if err != nil {
		h.log.Errorw("marshal event failed", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(b) {
			h.log.Debugw("dropping message to slow client", "room", roomID, "player", c.playerID)
		}
	}
}

// engine.Notifier implementation.

func (h *Hub) RoomState(snap engine.RoomSnapshot) {
	h.broadcast(snap.ID, event{Type: "room_state", Room: snap.ID, Data: snap})
}

func (h *Hub) NumberCalled(roomID string, call engine.Call) {
	h.broadcast(roomID, event{Type: "number_called", Room: roomID, Data: call})
}

func (h *Hub) GameResolved(roomID string, res engine.Result) {
	h.broadcast(roomID, event{Type: "game_result", Room: roomID, Data: res})
}

func (h *Hub) PlayerRemoved(roomID, playerID, reason string) {
	h.broadcast(roomID, event{Type: "player_removed", Room: roomID, Data: map[string]string{
		"playerId": playerID,
		"reason":   reason,
	}})
}
