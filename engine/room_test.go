package engine

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBalance struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newFakeBalance() *fakeBalance {
	return &fakeBalance{balances: make(map[string]int64)}
}

func (f *fakeBalance) fund(playerID string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] = amount
}

func (f *fakeBalance) balanceOf(playerID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID]
}

func (f *fakeBalance) Debit(playerID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balances[playerID] < amount {
		return ErrInsufficientFunds
	}
	f.balances[playerID] -= amount
	return nil
}

func (f *fakeBalance) Credit(playerID string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] += amount
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	removed []string
	results []Result
}

func (f *fakeNotifier) RoomState(RoomSnapshot)    {}
func (f *fakeNotifier) NumberCalled(string, Call) {}

func (f *fakeNotifier) GameResolved(_ string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
}

func (f *fakeNotifier) PlayerRemoved(_, playerID, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, playerID)
}

func (f *fakeNotifier) removedPlayers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

func testRoomConfig() RoomConfig {
	return RoomConfig{
		ID:                  "room-1",
		EntryFee:            10,
		MinPlayers:          2,
		MaxPlayers:          100,
		CountdownSeconds:    1,
		CallInterval:        2 * time.Millisecond,
		WinnerWindow:        300 * time.Millisecond,
		WinningPercentage:   70,
		FalseClaimThreshold: 3,
		Seed:                99,
	}
}

// replayDraws reproduces the boards and draw order a seeded room will
// use for its first game, in join order.
func replayDraws(seed int64, joins int) ([]Board, []int) {
	rng := rand.New(rand.NewSource(seed))
	boards := make([]Board, joins)
	for i := range boards {
		boards[i] = NewBoard(rng)
	}
	return boards, newCaller(rng).order
}

// drawsUntilWin returns the shortest call-sequence prefix that
// completes any pattern on the board.
func drawsUntilWin(b Board, order []int) int {
	for i := 1; i <= len(order); i++ {
		if ev, err := Evaluate(b, order[:i], PatternAny); err == nil && ev.Won {
			return i
		}
	}
	return -1
}

func waitForStatus(t *testing.T, r *Room, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return r.Snapshot().Status == want
	}, 5*time.Second, time.Millisecond, "room never reached %s", want)
}

func TestRoom_JoinRules(t *testing.T) {
	cfg := testRoomConfig()
	cfg.ManualStart = true
	cfg.MaxPlayers = 3

	balance := newFakeBalance()
	room, err := NewRoom(cfg, Deps{Balance: balance})
	require.NoError(t, err)
	defer room.Teardown()

	balance.fund("p1", 100)
	balance.fund("p2", 100)
	balance.fund("p3", 100)
	balance.fund("p4", 100)
	balance.fund("broke", 5)

	first, err := room.Join("p1", 10)
	require.NoError(t, err)
	assert.NoError(t, first.Board.Validate())

	// Retried join returns the same board without a second debit.
	again, err := room.Join("p1", 10)
	require.NoError(t, err)
	assert.Equal(t, first.Board.ID, again.Board.ID)
	assert.Equal(t, int64(90), balance.balanceOf("p1"))

	_, err = room.Join("p2", 25)
	assert.ErrorIs(t, err, ErrWrongEntryFee)

	_, err = room.Join("broke", 10)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(5), balance.balanceOf("broke"))

	_, err = room.Join("p2", 10)
	require.NoError(t, err)
	_, err = room.Join("p3", 10)
	require.NoError(t, err)

	_, err = room.Join("p4", 10)
	assert.ErrorIs(t, err, ErrRoomFull)

	snap := room.Snapshot()
	assert.Equal(t, 3, snap.CurrentPlayers)
	assert.LessOrEqual(t, snap.CurrentPlayers, snap.MaxPlayers)
	assert.Equal(t, StatusWaiting, snap.Status)

	// No game is running, claims are not legal yet.
	_, err = room.Claim("p1", PatternAny)
	assert.ErrorIs(t, err, ErrInvalidState)

	// Leaving before the game starts refunds the fee.
	require.NoError(t, room.Leave("p3"))
	assert.Equal(t, int64(100), balance.balanceOf("p3"))
	assert.Equal(t, 2, room.Snapshot().CurrentPlayers)
}

func TestRoom_EndToEndSingleWinner(t *testing.T) {
	cfg := testRoomConfig()
	balance := newFakeBalance()
	notifier := &fakeNotifier{}
	room, err := NewRoom(cfg, Deps{Balance: balance, Notifier: notifier})
	require.NoError(t, err)
	defer room.Teardown()

	balance.fund("p1", 100)
	balance.fund("p2", 100)

	boards, order := replayDraws(cfg.Seed, 2)
	winAt := drawsUntilWin(boards[0], order)
	require.Positive(t, winAt)

	a1, err := room.Join("p1", 10)
	require.NoError(t, err)
	assert.Equal(t, boards[0].Cells, a1.Board.Cells)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)

	// Second join reaches MinPlayers: countdown, then the game starts.
	waitForStatus(t, room, StatusActive)
	snap := room.Snapshot()
	assert.Equal(t, int64(20), snap.TotalPot)

	require.Eventually(t, func() bool {
		called := room.Snapshot().CalledNumbers
		seen := make(map[int]bool, len(called))
		for i, n := range called {
			assert.Equal(t, order[i], n, "draw order must follow the seeded shuffle")
			assert.False(t, seen[n], "number %d called twice", n)
			seen[n] = true
		}
		return len(called) >= winAt
	}, 5*time.Second, time.Millisecond)

	eval, err := room.Claim("p1", PatternAny)
	require.NoError(t, err)
	assert.True(t, eval.Won)

	require.Eventually(t, func() bool {
		_, ok := room.LastResult()
		return ok
	}, 5*time.Second, time.Millisecond)

	res, _ := room.LastResult()
	assert.Equal(t, 1, res.WinnerCount)
	assert.Equal(t, int64(20), res.TotalPot)
	assert.Equal(t, int64(14), res.PrizePerWinner)
	assert.Equal(t, int64(6), res.Commission)
	require.Len(t, res.Winners, 1)
	assert.Equal(t, "p1", res.Winners[0].PlayerID)
	assert.Equal(t, a1.Board.ID, res.Winners[0].BoardID)

	assert.Equal(t, int64(104), balance.balanceOf("p1"), "stake out, prize in")
	assert.Equal(t, int64(90), balance.balanceOf("p2"))

	// The room re-arms for the next round with a fresh game.
	waitForStatus(t, room, StatusWaiting)
	snap = room.Snapshot()
	assert.Empty(t, snap.CalledNumbers)
	assert.Equal(t, 0, snap.CurrentPlayers)
	assert.NotEqual(t, res.GameID, snap.GameID)
}

func TestRoom_MultiWinnerWindow(t *testing.T) {
	cfg := testRoomConfig()
	cfg.WinnerWindow = time.Second

	balance := newFakeBalance()
	room, err := NewRoom(cfg, Deps{Balance: balance})
	require.NoError(t, err)
	defer room.Teardown()

	balance.fund("p1", 100)
	balance.fund("p2", 100)

	boards, order := replayDraws(cfg.Seed, 2)
	winAt := drawsUntilWin(boards[0], order)
	if w2 := drawsUntilWin(boards[1], order); w2 > winAt {
		winAt = w2
	}
	require.Positive(t, winAt)

	_, err = room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)

	waitForStatus(t, room, StatusActive)
	require.Eventually(t, func() bool {
		return len(room.Snapshot().CalledNumbers) >= winAt
	}, 5*time.Second, time.Millisecond)

	eval, err := room.Claim("p1", PatternAny)
	require.NoError(t, err)
	require.True(t, eval.Won)

	// Second valid claim lands inside the winner window.
	time.Sleep(200 * time.Millisecond)
	eval, err = room.Claim("p2", PatternAny)
	require.NoError(t, err)
	require.True(t, eval.Won)

	require.Eventually(t, func() bool {
		_, ok := room.LastResult()
		return ok
	}, 5*time.Second, time.Millisecond)

	res, _ := room.LastResult()
	assert.Equal(t, 2, res.WinnerCount)
	assert.Equal(t, int64(20), res.TotalPot)
	// 70% of 20 is 14, split two ways: 7 each.
	assert.Equal(t, int64(7), res.PrizePerWinner)
	assert.Equal(t, int64(6), res.Commission)

	winners := []string{res.Winners[0].PlayerID, res.Winners[1].PlayerID}
	assert.ElementsMatch(t, []string{"p1", "p2"}, winners)

	assert.Equal(t, int64(97), balance.balanceOf("p1"))
	assert.Equal(t, int64(97), balance.balanceOf("p2"))
}

func TestRoom_FalseClaimsRemovePlayer(t *testing.T) {
	cfg := testRoomConfig()
	// Freeze the caller: no numbers get drawn, every claim must fail.
	cfg.CallInterval = time.Hour

	notifier := &fakeNotifier{}
	room, err := NewRoom(cfg, Deps{Notifier: notifier})
	require.NoError(t, err)
	defer room.Teardown()

	_, err = room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)
	waitForStatus(t, room, StatusActive)

	for i := 0; i < 3; i++ {
		eval, err := room.Claim("p1", PatternBlackout)
		require.NoError(t, err)
		assert.False(t, eval.Won)
	}
	assert.Equal(t, []string{"p1"}, notifier.removedPlayers())

	// Fourth claim is rejected without evaluation.
	_, err = room.Claim("p1", PatternAny)
	assert.ErrorIs(t, err, ErrForbidden)

	// Other players are unaffected.
	eval, err := room.Claim("p2", PatternBlackout)
	require.NoError(t, err)
	assert.False(t, eval.Won)
}

func TestRoom_CountdownAbortsBelowMinimum(t *testing.T) {
	cfg := testRoomConfig()
	cfg.CountdownSeconds = 30

	balance := newFakeBalance()
	room, err := NewRoom(cfg, Deps{Balance: balance})
	require.NoError(t, err)
	defer room.Teardown()

	balance.fund("p1", 100)
	balance.fund("p2", 100)

	_, err = room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)
	assert.Equal(t, StatusCountdown, room.Snapshot().Status)

	require.NoError(t, room.Leave("p2"))

	snap := room.Snapshot()
	assert.Equal(t, StatusWaiting, snap.Status)
	assert.Equal(t, cfg.CountdownSeconds, snap.CountdownRemaining)
	assert.Equal(t, int64(100), balance.balanceOf("p2"))
}

func TestRoom_CarryOverPlayers(t *testing.T) {
	cfg := testRoomConfig()
	cfg.CarryOverPlayers = true

	balance := newFakeBalance()
	room, err := NewRoom(cfg, Deps{Balance: balance})
	require.NoError(t, err)
	defer room.Teardown()

	balance.fund("p1", 100)
	balance.fund("p2", 100)

	boards, order := replayDraws(cfg.Seed, 2)
	winAt := drawsUntilWin(boards[0], order)
	require.Positive(t, winAt)

	_, err = room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)

	waitForStatus(t, room, StatusActive)
	require.Eventually(t, func() bool {
		return len(room.Snapshot().CalledNumbers) >= winAt
	}, 5*time.Second, time.Millisecond)

	_, err = room.Claim("p1", PatternAny)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := room.LastResult()
		return ok
	}, 5*time.Second, time.Millisecond)

	// Both players stayed in and were re-debited for the next round,
	// which starts counting down on its own.
	require.Eventually(t, func() bool {
		snap := room.Snapshot()
		return snap.CurrentPlayers == 2 && snap.Status != StatusWaiting
	}, 5*time.Second, time.Millisecond)

	// p1: -10 stake +14 prize -10 next stake; p2: -10 -10.
	assert.Equal(t, int64(94), balance.balanceOf("p1"))
	assert.Equal(t, int64(80), balance.balanceOf("p2"))
}

func TestRoom_TeardownStopsEverything(t *testing.T) {
	cfg := testRoomConfig()
	room, err := NewRoom(cfg, Deps{})
	require.NoError(t, err)

	_, err = room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)
	waitForStatus(t, room, StatusActive)

	room.Teardown()
	room.Teardown() // idempotent

	called := len(room.Snapshot().CalledNumbers)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, called, len(room.Snapshot().CalledNumbers), "caller must stop on teardown")

	_, err = room.Join("p3", 10)
	assert.ErrorIs(t, err, ErrRoomClosed)
	_, err = room.Claim("p1", PatternAny)
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestRoom_MarkRequiresCalledNumber(t *testing.T) {
	cfg := testRoomConfig()
	cfg.CallInterval = time.Hour

	room, err := NewRoom(cfg, Deps{})
	require.NoError(t, err)
	defer room.Teardown()

	a, err := room.Join("p1", 10)
	require.NoError(t, err)
	_, err = room.Join("p2", 10)
	require.NoError(t, err)

	// Marking before the game starts is not legal.
	err = room.Mark("p1", a.Board.Cells[0][0])
	assert.ErrorIs(t, err, ErrInvalidState)

	waitForStatus(t, room, StatusActive)

	err = room.Mark("p1", a.Board.Cells[0][0])
	assert.ErrorIs(t, err, ErrNumberNotCalled, "nothing has been called yet")

	err = room.Mark("ghost", 5)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestNewRoom_RejectsBadConfig(t *testing.T) {
	cfg := testRoomConfig()
	cfg.MinPlayers = 10
	cfg.MaxPlayers = 5
	_, err := NewRoom(cfg, Deps{})
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg = testRoomConfig()
	cfg.UseDynamicPercentage = true
	_, err = NewRoom(cfg, Deps{})
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg = testRoomConfig()
	cfg.WinningPercentage = 130
	_, err = NewRoom(cfg, Deps{})
	assert.ErrorIs(t, err, ErrConfiguration)
}
