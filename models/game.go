package models

import (
	"time"

	"gorm.io/datatypes"
)

// Game is the durable snapshot of one played round in a room.
type Game struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	GameID         string         `gorm:"uniqueIndex" json:"game_id"`
	RoomID         string         `gorm:"index" json:"room_id"`
	Status         string         `json:"status"` // waiting | countdown | active | resolving | completed
	CalledNumbers  datatypes.JSON `json:"called_numbers"`
	Winners        datatypes.JSON `json:"winners"`
	WinnerCount    int            `json:"winner_count"`
	PrizePerWinner int64          `json:"prize_per_winner"`
	TotalPot       int64          `json:"total_pot"`
	Commission     int64          `json:"commission"`
	WinPercentage  int            `json:"win_percentage"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	EndedAt        *time.Time     `json:"ended_at"`
}
