package models

import (
	"time"

	"gorm.io/datatypes"
)

// GamePlayer is one player's participation in one game: their board,
// daubed numbers and false-claim standing.
type GamePlayer struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	GameID                string         `gorm:"index:idx_game_player,unique" json:"game_id"`
	PlayerID              string         `gorm:"index:idx_game_player,unique" json:"player_id"`
	BoardID               string         `json:"board_id"`
	Board                 datatypes.JSON `json:"board"`
	Marked                datatypes.JSON `json:"marked"`
	FalseClaimCount       int            `json:"false_claim_count"`
	RemovedForFalseClaims bool           `json:"removed_for_false_claims"`
	Won                   bool           `json:"won"`
	Prize                 int64          `json:"prize"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}
