package services

import (
	"errors"
	"fmt"

	"github.com/selamgames/bingo-engine/engine"
	"github.com/selamgames/bingo-engine/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownPlayer marks wallet movements addressed to a player id
// with no account.
var ErrUnknownPlayer = errors.New("unknown player")

// Wallet is the gorm-backed balance service the engine debits entry
// fees from and credits prizes to. Every movement writes a ledger row.
type Wallet struct {
	db *gorm.DB
}

func NewWallet(db *gorm.DB) *Wallet {
	return &Wallet{db: db}
}

// Debit takes amount from the player's balance, failing with
// engine.ErrInsufficientFunds when the balance does not cover it.
func (w *Wallet) Debit(playerID string, amount int64) error {
	return w.apply(playerID, -amount, models.StakeTransaction)
}

// Credit adds amount to the player's balance.
func (w *Wallet) Credit(playerID string, amount int64) error {
	return w.apply(playerID, amount, models.PrizeTransaction)
}

// Deposit and Withdraw serve the wallet HTTP surface.
func (w *Wallet) Deposit(playerID string, amount int64) error {
	return w.apply(playerID, amount, models.DepositTransaction)
}

func (w *Wallet) Withdraw(playerID string, amount int64) error {
	return w.apply(playerID, -amount, models.WithdrawTransaction)
}

func (w *Wallet) apply(playerID string, delta int64, txType models.TransactionType) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("player_id = ?", playerID).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
			}
			return err
		}

		if user.Balance+delta < 0 {
			return fmt.Errorf("%w: balance %d, need %d", engine.ErrInsufficientFunds, user.Balance, -delta)
		}
		user.Balance += delta
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		amount := delta
		if amount < 0 {
			amount = -amount
		}
		return tx.Create(&models.Transaction{
			PlayerID:     playerID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: user.Balance,
		}).Error
	})
}

// Balance reads the current balance for the HTTP surface.
func (w *Wallet) Balance(playerID string) (int64, error) {
	var user models.User
	if err := w.db.Where("player_id = ?", playerID).First(&user).Error; err != nil {
		return 0, err
	}
	return user.Balance, nil
}
