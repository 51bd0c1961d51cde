package services

import (
	"encoding/json"
	"time"

	"github.com/selamgames/bingo-engine/engine"
	"github.com/selamgames/bingo-engine/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameStore persists game snapshots after state transitions. The
// in-memory room remains authoritative; callers log errors and move on.
type GameStore struct {
	db *gorm.DB
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{db: db}
}

// SaveGame upserts the running game row and the per-player rows.
func (s *GameStore) SaveGame(rec engine.GameRecord) error {
	called, err := json.Marshal(rec.CalledNumbers)
	if err != nil {
		return err
	}

	game := models.Game{
		GameID:        rec.GameID,
		RoomID:        rec.RoomID,
		Status:        string(rec.Status),
		CalledNumbers: datatypes.JSON(called),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "called_numbers", "updated_at"}),
	}).Create(&game).Error
	if err != nil {
		return err
	}

	for _, p := range rec.Players {
		board, err := json.Marshal(p.Board)
		if err != nil {
			return err
		}
		marked, err := json.Marshal(p.Marked)
		if err != nil {
			return err
		}
		gp := models.GamePlayer{
			GameID:                rec.GameID,
			PlayerID:              p.PlayerID,
			BoardID:               p.Board.ID,
			Board:                 datatypes.JSON(board),
			Marked:                datatypes.JSON(marked),
			FalseClaimCount:       p.FalseClaimCount,
			RemovedForFalseClaims: p.RemovedForFalseClaims,
		}
		err = s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "game_id"}, {Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"marked", "false_claim_count", "removed_for_false_claims", "updated_at",
			}),
		}).Create(&gp).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveResult finalizes the game row with winners and payout.
func (s *GameStore) SaveResult(roomID string, rec engine.GameRecord, res engine.Result) error {
	if err := s.SaveGame(rec); err != nil {
		return err
	}

	winners, err := json.Marshal(res.Winners)
	if err != nil {
		return err
	}
	now := time.Now()
	err = s.db.Model(&models.Game{}).Where("game_id = ?", res.GameID).Updates(map[string]any{
		"status":           string(engine.StatusCompleted),
		"winners":          datatypes.JSON(winners),
		"winner_count":     res.WinnerCount,
		"prize_per_winner": res.PrizePerWinner,
		"total_pot":        res.TotalPot,
		"commission":       res.Commission,
		"win_percentage":   res.WinPercentage,
		"ended_at":         &now,
	}).Error
	if err != nil {
		return err
	}

	for _, w := range res.Winners {
		err = s.db.Model(&models.GamePlayer{}).
			Where("game_id = ? AND player_id = ?", res.GameID, w.PlayerID).
			Updates(map[string]any{"won": true, "prize": res.PrizePerWinner}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Result loads a finished game's outcome for the HTTP surface.
func (s *GameStore) Result(gameID string) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("game_id = ?", gameID).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// BoardsByPlayer lists a player's boards across games, newest first.
func (s *GameStore) BoardsByPlayer(playerID string, limit int) ([]models.GamePlayer, error) {
	var boards []models.GamePlayer
	q := s.db.Where("player_id = ?", playerID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}
