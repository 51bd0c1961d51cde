package models

import "time"

type TransactionType string

const (
	DepositTransaction  TransactionType = "deposit"
	WithdrawTransaction TransactionType = "withdraw"
	StakeTransaction    TransactionType = "stake"
	PrizeTransaction    TransactionType = "prize"
)

// Transaction is one wallet ledger row. Amount is in the smallest
// currency unit and always positive; Type carries the direction.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PlayerID     string          `gorm:"index" json:"player_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
