package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/selamgames/bingo-engine/engine"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway upgrades lobby connections and binds them to rooms.
type Gateway struct {
	registry *engine.Registry
	hub      *Hub
	log      *zap.SugaredLogger
}

func NewGateway(registry *engine.Registry, hub *Hub, log *zap.SugaredLogger) *Gateway {
	return &Gateway{registry: registry, hub: hub, log: log.Named("ws")}
}

// Handle is the gin handler for GET /ws/:room?player_id=...
func (g *Gateway) Handle(c *gin.Context) {
	roomID := c.Param("room")
	if _, err := g.registry.Room(roomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	playerID := c.Query("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing player_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Errorw("upgrade failed", "error", err)
		return
	}

	client := &Client{
		playerID: playerID,
		roomID:   roomID,
		conn:     conn,
		hub:      g.hub,
		registry: g.registry,
		log:      g.log,
		send:     make(chan []byte, 32),
	}
	g.hub.subscribe(roomID, client)

	go client.writePump()
	go client.readPump()

	// Greet with the current room snapshot so late subscribers are not
	// blind until the next transition.
	if snap, err := g.registry.Snapshot(roomID); err == nil {
		client.reply(event{Type: "room_state", Room: roomID, Data: snap})
	}
}
