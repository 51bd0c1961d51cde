package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/selamgames/bingo-engine/engine"
	"github.com/selamgames/bingo-engine/services"
	"gorm.io/gorm"
)

// API carries the handler dependencies.
type API struct {
	DB       *gorm.DB
	Registry *engine.Registry
	Wallet   *services.Wallet
	Store    *services.GameStore
}

// ListRooms returns the lobby view of every live room.
func (a *API) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, a.Registry.Snapshots())
}

// GetRoom returns one room's snapshot.
func (a *API) GetRoom(c *gin.Context) {
	snap, err := a.Registry.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetRoomResult returns the last finished game of a room.
func (a *API) GetRoomResult(c *gin.Context) {
	room, err := a.Registry.Room(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	res, ok := room.LastResult()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No finished game yet"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// JoinRoom admits a player over REST; the websocket channel carries the
// live game afterwards.
func (a *API) JoinRoom(c *gin.Context) {
	var req struct {
		PlayerID string `json:"playerId" binding:"required"`
		EntryFee int64  `json:"entryFee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := a.Registry.Join(c.Param("id"), req.PlayerID, req.EntryFee)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// GetGameResult returns an archived game by its id.
func (a *API) GetGameResult(c *gin.Context) {
	game, err := a.Store.Result(c.Param("game_id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, game)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrRoomNotFound),
		errors.Is(err, services.ErrUnknownPlayer):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrRoomFull),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrRoomClosed):
		return http.StatusConflict
	case errors.Is(err, engine.ErrWrongEntryFee),
		errors.Is(err, engine.ErrNumberNotCalled):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrConfiguration),
		errors.Is(err, engine.ErrInvalidBoard):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
