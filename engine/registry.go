package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry owns the set of live rooms and routes player actions to the
// addressed room. Its lock only guards the room map; every game action
// is serialized by the room's own lock, so unrelated rooms never
// contend with each other.
type Registry struct {
	deps Deps
	log  *zap.SugaredLogger

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry builds an empty registry sharing deps across rooms.
func NewRegistry(deps Deps) *Registry {
	deps = deps.withDefaults()
	return &Registry{
		deps:  deps,
		log:   deps.Log.Named("registry"),
		rooms: make(map[string]*Room),
	}
}

// Create adds a room built from cfg. Creating an id twice is a
// configuration error.
func (g *Registry) Create(cfg RoomConfig) (*Room, error) {
	room, err := NewRoom(cfg, g.deps)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.rooms[cfg.ID]; exists {
		return nil, fmt.Errorf("%w: room %q already exists", ErrConfiguration, cfg.ID)
	}
	g.rooms[cfg.ID] = room
	g.log.Infow("room created", "room", cfg.ID, "entryFee", cfg.EntryFee)
	return room, nil
}

// Room looks up a live room by id.
func (g *Registry) Room(roomID string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	return room, nil
}

// Join routes a join to the addressed room.
func (g *Registry) Join(roomID, playerID string, entryFee int64) (BoardAssignment, error) {
	room, err := g.Room(roomID)
	if err != nil {
		return BoardAssignment{}, err
	}
	return room.Join(playerID, entryFee)
}

// Leave routes a leave to the addressed room.
func (g *Registry) Leave(roomID, playerID string) error {
	room, err := g.Room(roomID)
	if err != nil {
		return err
	}
	return room.Leave(playerID)
}

// Mark routes a daub to the addressed room.
func (g *Registry) Mark(roomID, playerID string, number int) error {
	room, err := g.Room(roomID)
	if err != nil {
		return err
	}
	return room.Mark(playerID, number)
}

// Claim routes a win claim to the addressed room.
func (g *Registry) Claim(roomID, playerID string, pattern Pattern) (Evaluation, error) {
	room, err := g.Room(roomID)
	if err != nil {
		return Evaluation{}, err
	}
	return room.Claim(playerID, pattern)
}

// Snapshot returns one room's outward view.
func (g *Registry) Snapshot(roomID string) (RoomSnapshot, error) {
	room, err := g.Room(roomID)
	if err != nil {
		return RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

// Snapshots lists every live room for the lobby view.
func (g *Registry) Snapshots() []RoomSnapshot {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]RoomSnapshot, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Snapshot())
	}
	return out
}

// Teardown stops and removes one room.
func (g *Registry) Teardown(roomID string) error {
	g.mu.Lock()
	room, ok := g.rooms[roomID]
	if ok {
		delete(g.rooms, roomID)
	}
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	room.Teardown()
	return nil
}

// TeardownAll stops every room, for process shutdown.
func (g *Registry) TeardownAll() {
	g.mu.Lock()
	rooms := g.rooms
	g.rooms = make(map[string]*Room)
	g.mu.Unlock()
	for _, r := range rooms {
		r.Teardown()
	}
	g.log.Infow("all rooms torn down", "count", len(rooms))
}
