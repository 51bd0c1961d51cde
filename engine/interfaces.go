package engine

// BalanceService debits entry fees and credits prizes. Debit runs
// synchronously before a join is admitted; a failed debit aborts the
// join. Credit runs after payout is computed.
type BalanceService interface {
	Debit(playerID string, amount int64) error
	Credit(playerID string, amount int64) error
}

// Store receives durable snapshots after state transitions. The
// in-memory room state stays authoritative: store errors are reported
// and logged, never allowed to stall or roll back a game.
type Store interface {
	SaveGame(rec GameRecord) error
	SaveResult(roomID string, rec GameRecord, res Result) error
}

// Notifier pushes room and lobby changes to subscribers. Delivery is
// best effort and at-least-once; implementations must not block.
type Notifier interface {
	RoomState(snap RoomSnapshot)
	NumberCalled(roomID string, call Call)
	GameResolved(roomID string, res Result)
	PlayerRemoved(roomID, playerID, reason string)
}

// RoomSnapshot is the outward-facing view of one room.
type RoomSnapshot struct {
	ID                 string `json:"id"`
	Status             Status `json:"status"`
	CurrentPlayers     int    `json:"currentPlayers"`
	MaxPlayers         int    `json:"maxPlayers"`
	EntryFee           int64  `json:"entryFee"`
	TotalPot           int64  `json:"totalPot"`
	CalledNumbers      []int  `json:"calledNumbers"`
	CountdownRemaining int    `json:"countdownRemaining"`
	GameID             string `json:"gameId"`
}

// Winner is one resolved winner of a game.
type Winner struct {
	PlayerID string  `json:"playerId"`
	BoardID  string  `json:"boardId"`
	Pattern  Pattern `json:"pattern"`
}

// Result is the final outcome of one game.
type Result struct {
	GameID         string   `json:"gameId"`
	Winners        []Winner `json:"winners"`
	WinnerCount    int      `json:"winnerCount"`
	PrizePerWinner int64    `json:"prizePerWinner"`
	TotalPot       int64    `json:"totalPot"`
	Commission     int64    `json:"commission"`
	WinPercentage  int      `json:"winPercentage"`
}

// BoardAssignment is returned from a successful join.
type BoardAssignment struct {
	RoomID   string `json:"roomId"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Board    Board  `json:"board"`
}

// PlayerRecord is the per-player slice of a game snapshot.
type PlayerRecord struct {
	PlayerID              string `json:"playerId"`
	Board                 Board  `json:"board"`
	Marked                []int  `json:"marked"`
	FalseClaimCount       int    `json:"falseClaimCount"`
	RemovedForFalseClaims bool   `json:"removedForFalseClaims"`
}

// GameRecord is the durable snapshot of one game handed to the Store.
type GameRecord struct {
	RoomID        string         `json:"roomId"`
	GameID        string         `json:"gameId"`
	Status        Status         `json:"status"`
	CalledNumbers []int          `json:"calledNumbers"`
	Players       []PlayerRecord `json:"players"`
}

type nopBalance struct{}

func (nopBalance) Debit(string, int64) error { return nil }
func (nopBalance) Credit(string, int64) error { return nil }

type nopStore struct{}

func (nopStore) SaveGame(GameRecord) error { return nil }
func (nopStore) SaveResult(string, GameRecord, Result) error { return nil }

type nopNotifier struct{}

func (nopNotifier) RoomState(RoomSnapshot) {}
func (nopNotifier) NumberCalled(string, Call) {}
func (nopNotifier) GameResolved(string, Result) {}
func (nopNotifier) PlayerRemoved(string, string, string) {}
