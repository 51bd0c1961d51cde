package models

import "time"

// User is a wallet-holding player account. Balance is in the smallest
// currency unit.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlayerID  string    `gorm:"uniqueIndex" json:"player_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
