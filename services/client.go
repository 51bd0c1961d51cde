package services

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/selamgames/bingo-engine/engine"
	"go.uber.org/zap"
)

// Client is one websocket subscriber bound to a room. Inbound messages
// are player actions routed into the registry; outbound messages come
// from the hub and from direct action replies.
type Client struct {
	playerID string
	roomID   string
	conn     *websocket.Conn
	hub      *Hub
	registry *engine.Registry
	log      *zap.SugaredLogger
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

type clientAction struct {
	Action   string `json:"action"`
	EntryFee int64  `json:"entry_fee"`
	Number   int    `json:"number"`
	Pattern  string `json:"pattern"`
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		c.conn.Close()
	}
}

// trySend queues a message without blocking. The lock orders it
// against Close so nothing sends on the closed channel; a false
// return means the client is gone or its buffer is full.
func (c *Client) trySend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unsubscribe(c.roomID, c)
		c.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debugw("client disconnected", "player", c.playerID)
			} else {
				c.log.Debugw("read error", "player", c.playerID, "error", err)
			}
			return
		}

		var action clientAction
		if err := json.Unmarshal(message, &action); err != nil {
			c.reply(event{Type: "error", Data: map[string]string{"message": "invalid message"}})
			continue
		}
		c.handle(action)
	}
}

func (c *Client) handle(action clientAction) {
	switch action.Action {
	case "join":
		assignment, err := c.registry.Join(c.roomID, c.playerID, action.EntryFee)
		if err != nil {
			c.replyErr(action.Action, err)
			return
		}
		c.reply(event{Type: "joined", Room: c.roomID, Data: assignment})
	case "leave":
		if err := c.registry.Leave(c.roomID, c.playerID); err != nil {
			c.replyErr(action.Action, err)
			return
		}
		c.reply(event{Type: "left", Room: c.roomID})
	case "mark":
		if err := c.registry.Mark(c.roomID, c.playerID, action.Number); err != nil {
			c.replyErr(action.Action, err)
			return
		}
		c.reply(event{Type: "marked", Room: c.roomID, Data: map[string]int{"number": action.Number}})
	case "claim":
		eval, err := c.registry.Claim(c.roomID, c.playerID, engine.Pattern(action.Pattern))
		if err != nil {
			c.replyErr(action.Action, err)
			return
		}
		c.reply(event{Type: "claim_result", Room: c.roomID, Data: eval})
	default:
		c.reply(event{Type: "error", Data: map[string]string{"message": "unknown action " + action.Action}})
	}
}

// replyErr maps engine errors onto a stable reason code so clients can
// react without parsing messages.
func (c *Client) replyErr(action string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, engine.ErrRoomNotFound):
		reason = "room_not_found"
	case errors.Is(err, engine.ErrRoomFull):
		reason = "room_full"
	case errors.Is(err, engine.ErrInvalidState):
		reason = "invalid_state"
	case errors.Is(err, engine.ErrForbidden):
		reason = "forbidden"
	case errors.Is(err, engine.ErrInsufficientFunds):
		reason = "insufficient_funds"
	case errors.Is(err, engine.ErrWrongEntryFee):
		reason = "wrong_entry_fee"
	case errors.Is(err, engine.ErrInvalidBoard):
		reason = "invalid_board"
	case errors.Is(err, engine.ErrNumberNotCalled):
		reason = "number_not_called"
	case errors.Is(err, engine.ErrConfiguration):
		reason = "configuration_error"
	case errors.Is(err, engine.ErrRoomClosed):
		reason = "room_closed"
	}
	c.reply(event{Type: "error", Room: c.roomID, Data: map[string]string{
		"action":  action,
		"reason":  reason,
		"message": err.Error(),
	}})
}

func (c *Client) reply(ev event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if !c.trySend(b) {
		c.log.Debugw("dropping reply to slow client", "player", c.playerID)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.log.Debugw("write error", "player", c.playerID, "error", err)
			return
		}
	}
}
