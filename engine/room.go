package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps are the external collaborators a room talks to. Nil fields fall
// back to no-op implementations so the engine can run standalone.
type Deps struct {
	Balance  BalanceService
	Store    Store
	Notifier Notifier
	Log      *zap.SugaredLogger
}

func (d Deps) withDefaults() Deps {
	if d.Balance == nil {
		d.Balance = nopBalance{}
	}
	if d.Store == nil {
		d.Store = nopStore{}
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	return d
}

type playerState struct {
	id          string
	board       Board
	marked      map[int]bool
	falseClaims int
	removed     bool
	left        bool
}

type game struct {
	id        string
	called    []int
	calledSet map[int]bool
	entrants  int
	winners   []Winner
}

// Room runs one bingo room through its lifecycle:
// waiting -> countdown -> active -> resolving -> completed -> waiting.
// Every action addressed to the room is serialized through mu; timers
// run in goroutines holding cancel handles so teardown never leaks
// scheduled work.
type Room struct {
	cfg  RoomConfig
	deps Deps
	log  *zap.SugaredLogger

	mu        sync.Mutex
	status    Status
	players   map[string]*playerState
	game      *game
	rng       *rand.Rand
	caller    *caller
	countdown int

	countdownCancel chan struct{}
	callCancel      chan struct{}
	windowTimer     *time.Timer
	lastResult      *Result
	closed          bool
}

// NewRoom builds a room in waiting state with a fresh pending game.
func NewRoom(cfg RoomConfig, deps Deps) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	deps = deps.withDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Room{
		cfg:       cfg,
		deps:      deps,
		log:       deps.Log.Named("room").With("room", cfg.ID),
		status:    StatusWaiting,
		players:   make(map[string]*playerState),
		rng:       rand.New(rand.NewSource(seed)),
		countdown: cfg.CountdownSeconds,
	}
	r.game = r.newGame()
	return r, nil
}

func (r *Room) newGame() *game {
	return &game{
		id:        uuid.NewString(),
		calledSet: make(map[int]bool),
	}
}

// Config returns the room's static configuration.
func (r *Room) Config() RoomConfig { return r.cfg }

// Join admits a player into the current pending game. It is idempotent
// per player and game: a retry returns the already assigned board
// without a second debit.
func (r *Room) Join(playerID string, entryFee int64) (BoardAssignment, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return BoardAssignment{}, ErrRoomClosed
	}
	if ps, ok := r.players[playerID]; ok && !ps.left {
		assignment := r.assignmentLocked(ps)
		r.mu.Unlock()
		return assignment, nil
	}
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return BoardAssignment{}, fmt.Errorf("%w: joins are only accepted while waiting", ErrInvalidState)
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		r.mu.Unlock()
		return BoardAssignment{}, ErrRoomFull
	}
	if entryFee != r.cfg.EntryFee {
		r.mu.Unlock()
		return BoardAssignment{}, fmt.Errorf("%w: got %d, room charges %d", ErrWrongEntryFee, entryFee, r.cfg.EntryFee)
	}

	if err := r.deps.Balance.Debit(playerID, r.cfg.EntryFee); err != nil {
		r.mu.Unlock()
		return BoardAssignment{}, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}

	ps := &playerState{
		id:     playerID,
		board:  NewBoard(r.rng),
		marked: make(map[int]bool),
	}
	r.players[playerID] = ps
	assignment := r.assignmentLocked(ps)
	r.log.Infow("player joined", "player", playerID, "players", len(r.players))

	if !r.cfg.ManualStart && len(r.players) >= r.cfg.MinPlayers {
		r.startCountdownLocked()
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.deps.Notifier.RoomState(snap)
	return assignment, nil
}

func (r *Room) assignmentLocked(ps *playerState) BoardAssignment {
	return BoardAssignment{
		RoomID:   r.cfg.ID,
		GameID:   r.game.id,
		PlayerID: ps.id,
		Board:    ps.board,
	}
}

// Leave removes a player. Before the game starts the entry fee is
// refunded; once the game is running the player only forfeits the right
// to claim, the fee stays in the pot.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	ps, ok := r.players[playerID]
	if !ok || ps.left {
		r.mu.Unlock()
		return nil
	}

	switch r.status {
	case StatusWaiting, StatusCountdown:
		delete(r.players, playerID)
		if err := r.deps.Balance.Credit(playerID, r.cfg.EntryFee); err != nil {
			r.log.Errorw("refund failed", "player", playerID, "error", err)
		}
		if r.status == StatusCountdown && len(r.players) < r.cfg.MinPlayers {
			r.stopCountdownLocked()
			r.status = StatusWaiting
			r.countdown = r.cfg.CountdownSeconds
			r.log.Infow("countdown aborted, below minimum players")
		}
	default:
		ps.left = true
	}
	r.log.Infow("player left", "player", playerID)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.deps.Notifier.RoomState(snap)
	return nil
}

// StartCountdown is the explicit external trigger for waiting ->
// countdown. The automatic trigger on reaching MinPlayers makes this
// redundant in normal operation.
func (r *Room) StartCountdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.status != StatusWaiting {
		return fmt.Errorf("%w: countdown can only start from waiting", ErrInvalidState)
	}
	if len(r.players) < r.cfg.MinPlayers {
		return fmt.Errorf("%w: %d of %d players", ErrInvalidState, len(r.players), r.cfg.MinPlayers)
	}
	r.startCountdownLocked()
	return nil
}

func (r *Room) startCountdownLocked() {
	if r.status != StatusWaiting {
		return
	}
	r.status = StatusCountdown
	r.countdown = r.cfg.CountdownSeconds
	cancel := make(chan struct{})
	r.countdownCancel = cancel
	r.log.Infow("countdown started", "seconds", r.countdown)

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				if done := r.countdownTick(cancel); done {
					return
				}
			}
		}
	}()
}

// countdownTick decrements the countdown and activates the game at
// zero. Returns true when the goroutine should exit.
func (r *Room) countdownTick(cancel chan struct{}) bool {
	r.mu.Lock()
	if r.countdownCancel != cancel || r.status != StatusCountdown {
		r.mu.Unlock()
		return true
	}
	r.countdown--
	if r.countdown > 0 {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		r.deps.Notifier.RoomState(snap)
		return false
	}
	r.countdown = 0
	r.activateLocked()
	snap := r.snapshotLocked()
	rec := r.recordLocked()
	r.mu.Unlock()

	r.deps.Notifier.RoomState(snap)
	r.persist(rec)
	return true
}

func (r *Room) stopCountdownLocked() {
	if r.countdownCancel != nil {
		close(r.countdownCancel)
		r.countdownCancel = nil
	}
}

// activateLocked runs countdown -> active: the player list is final,
// the draw order is fixed and the caller starts ticking.
func (r *Room) activateLocked() {
	r.status = StatusActive
	r.countdownCancel = nil
	r.game.entrants = len(r.players)
	r.caller = newCaller(r.rng)
	r.log.Infow("game started", "game", r.game.id, "players", r.game.entrants)
	r.startCallerLocked()
}

func (r *Room) startCallerLocked() {
	cancel := make(chan struct{})
	r.callCancel = cancel

	go func() {
		ticker := time.NewTicker(r.cfg.CallInterval)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				if done := r.callTick(cancel); done {
					return
				}
			}
		}
	}()
}

// callTick draws the next number. Returns true when the goroutine
// should exit: cancelled, game no longer active, or pool exhausted.
func (r *Room) callTick(cancel chan struct{}) bool {
	r.mu.Lock()
	if r.callCancel != cancel || r.status != StatusActive {
		r.mu.Unlock()
		return true
	}
	call, ok := r.caller.draw()
	if !ok {
		// All 75 numbers out with no accepted claim: close the game
		// without winners, the pot stays with the house.
		r.log.Warnw("draw pool exhausted without a winner", "game", r.game.id)
		res, rec, snap := r.completeWithoutWinnerLocked()
		r.mu.Unlock()
		r.deps.Notifier.GameResolved(r.cfg.ID, res)
		if err := r.deps.Store.SaveResult(r.cfg.ID, rec, res); err != nil {
			r.log.Errorw("persisting result failed", "game", res.GameID, "error", err)
		}
		r.deps.Notifier.RoomState(snap)
		return true
	}
	r.game.called = append(r.game.called, call.Number)
	r.game.calledSet[call.Number] = true
	rec := r.recordLocked()
	r.mu.Unlock()

	r.deps.Notifier.NumberCalled(r.cfg.ID, call)
	r.persist(rec)
	return false
}

func (r *Room) stopCallerLocked() {
	if r.callCancel != nil {
		close(r.callCancel)
		r.callCancel = nil
	}
}

// Mark daubs a called number on the player's board. The engine only
// validates that the number was actually called; wins are always
// re-checked against the called set, never against marks.
func (r *Room) Mark(playerID string, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	ps, ok := r.players[playerID]
	if !ok || ps.left {
		return ErrForbidden
	}
	if r.status != StatusActive && r.status != StatusResolving {
		return fmt.Errorf("%w: no game in progress", ErrInvalidState)
	}
	if !r.game.calledSet[number] {
		return ErrNumberNotCalled
	}
	ps.marked[number] = true
	return nil
}

// Claim submits a win claim. The first accepted claim freezes the
// caller and opens the winner window; valid claims arriving inside the
// window join the winner batch so simultaneous winners split the prize.
// A failed claim counts against the player's false-claim allowance.
func (r *Room) Claim(playerID string, claimed Pattern) (Evaluation, error) {
	if claimed == "" {
		claimed = PatternAny
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Evaluation{}, ErrRoomClosed
	}
	ps, ok := r.players[playerID]
	if !ok || ps.left {
		r.mu.Unlock()
		return Evaluation{}, ErrForbidden
	}
	if ps.removed {
		// Rejected without evaluation.
		r.mu.Unlock()
		return Evaluation{}, fmt.Errorf("%w: removed after repeated false claims", ErrForbidden)
	}
	if r.status != StatusActive && r.status != StatusResolving {
		r.mu.Unlock()
		return Evaluation{}, fmt.Errorf("%w: no claimable game in progress", ErrInvalidState)
	}

	// Evaluate against the called numbers as of this instant; the tick
	// goroutine cannot interleave while we hold the lock.
	eval, err := Evaluate(ps.board, r.game.called, claimed)
	if err != nil {
		r.mu.Unlock()
		return Evaluation{}, err
	}

	if !eval.Won {
		ps.falseClaims++
		removedNow := false
		if r.cfg.FalseClaimThreshold > 0 && ps.falseClaims >= r.cfg.FalseClaimThreshold && !ps.removed {
			ps.removed = true
			removedNow = true
		}
		r.log.Infow("false claim", "player", playerID, "count", ps.falseClaims, "removed", ps.removed)
		r.mu.Unlock()
		if removedNow {
			r.deps.Notifier.PlayerRemoved(r.cfg.ID, playerID, "false claims")
		}
		return eval, nil
	}

	r.acceptWinnerLocked(ps, eval.Pattern)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.deps.Notifier.RoomState(snap)
	return eval, nil
}

func (r *Room) acceptWinnerLocked(ps *playerState, pattern Pattern) {
	for _, w := range r.game.winners {
		if w.PlayerID == ps.id {
			return
		}
	}
	r.game.winners = append(r.game.winners, Winner{
		PlayerID: ps.id,
		BoardID:  ps.board.ID,
		Pattern:  pattern,
	})
	r.log.Infow("claim accepted", "player", ps.id, "pattern", pattern, "winners", len(r.game.winners))

	if r.status == StatusActive {
		r.status = StatusResolving
		r.stopCallerLocked()
		r.windowTimer = time.AfterFunc(r.cfg.WinnerWindow, r.resolve)
	}
}

// resolve fires when the winner window closes: payout, credits,
// persistence, events, then re-arm for the next game.
func (r *Room) resolve() {
	r.mu.Lock()
	if r.closed || r.status != StatusResolving {
		r.mu.Unlock()
		return
	}
	r.windowTimer = nil

	payout, err := ComputePayout(r.cfg, r.game.entrants, len(r.game.winners))
	if err != nil {
		// Undefined payout: halt resolution rather than guess. The room
		// stays in resolving until operators fix the configuration and
		// tear it down.
		r.log.Errorw("payout halted", "game", r.game.id, "error", err)
		r.mu.Unlock()
		return
	}

	res := Result{
		GameID:         r.game.id,
		Winners:        append([]Winner(nil), r.game.winners...),
		WinnerCount:    len(r.game.winners),
		PrizePerWinner: payout.PrizePerWinner,
		TotalPot:       payout.TotalPot,
		Commission:     payout.Commission,
		WinPercentage:  payout.WinPercentage,
	}
	r.status = StatusCompleted
	r.lastResult = &res
	rec := r.recordLocked()
	r.log.Infow("game resolved",
		"game", r.game.id,
		"winners", res.WinnerCount,
		"prize", res.PrizePerWinner,
		"commission", res.Commission,
	)

	for _, w := range res.Winners {
		if err := r.deps.Balance.Credit(w.PlayerID, res.PrizePerWinner); err != nil {
			r.log.Errorw("prize credit failed", "player", w.PlayerID, "error", err)
		}
	}

	r.rearmLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.deps.Notifier.GameResolved(r.cfg.ID, res)
	if err := r.deps.Store.SaveResult(r.cfg.ID, rec, res); err != nil {
		r.log.Errorw("persisting result failed", "game", res.GameID, "error", err)
	}
	r.deps.Notifier.RoomState(snap)
}

// completeWithoutWinnerLocked ends a game whose draw pool ran out.
func (r *Room) completeWithoutWinnerLocked() (Result, GameRecord, RoomSnapshot) {
	pot := r.cfg.EntryFee * int64(r.game.entrants)
	res := Result{
		GameID:     r.game.id,
		Winners:    []Winner{},
		TotalPot:   pot,
		Commission: pot,
	}
	r.status = StatusCompleted
	r.lastResult = &res
	rec := r.recordLocked()
	r.rearmLocked()
	return res, rec, r.snapshotLocked()
}

// rearmLocked runs completed -> waiting with a fresh game. With
// carry-over enabled, players who stayed connected are re-entered and
// re-debited; anyone whose debit fails is dropped.
func (r *Room) rearmLocked() {
	r.stopCallerLocked()
	r.caller = nil
	r.game = r.newGame()
	r.countdown = r.cfg.CountdownSeconds
	r.status = StatusWaiting

	if !r.cfg.CarryOverPlayers {
		r.players = make(map[string]*playerState)
		return
	}

	carried := make(map[string]*playerState, len(r.players))
	for id, ps := range r.players {
		if ps.left {
			continue
		}
		if err := r.deps.Balance.Debit(id, r.cfg.EntryFee); err != nil {
			r.log.Infow("carry-over dropped, debit failed", "player", id, "error", err)
			continue
		}
		carried[id] = &playerState{
			id:     id,
			board:  NewBoard(r.rng),
			marked: make(map[int]bool),
		}
	}
	r.players = carried
	if !r.cfg.ManualStart && len(r.players) >= r.cfg.MinPlayers {
		r.startCountdownLocked()
	}
}

// Teardown stops all scheduled work. Safe to call in any state, and
// more than once.
func (r *Room) Teardown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.stopCountdownLocked()
	r.stopCallerLocked()
	if r.windowTimer != nil {
		r.windowTimer.Stop()
		r.windowTimer = nil
	}
	r.mu.Unlock()
	r.log.Infow("room torn down")
}

// Snapshot returns the outward view of the room.
func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// LastResult returns the most recently completed game's result, or ok
// false if no game has finished yet.
func (r *Room) LastResult() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastResult == nil {
		return Result{}, false
	}
	return *r.lastResult, true
}

func (r *Room) snapshotLocked() RoomSnapshot {
	count := 0
	for _, ps := range r.players {
		if !ps.left {
			count++
		}
	}
	pot := r.cfg.EntryFee * int64(count)
	if r.status == StatusActive || r.status == StatusResolving {
		pot = r.cfg.EntryFee * int64(r.game.entrants)
	}
	return RoomSnapshot{
		ID:                 r.cfg.ID,
		Status:             r.status,
		CurrentPlayers:     count,
		MaxPlayers:         r.cfg.MaxPlayers,
		EntryFee:           r.cfg.EntryFee,
		TotalPot:           pot,
		CalledNumbers:      append([]int(nil), r.game.called...),
		CountdownRemaining: r.countdown,
		GameID:             r.game.id,
	}
}

func (r *Room) recordLocked() GameRecord {
	players := make([]PlayerRecord, 0, len(r.players))
	for _, ps := range r.players {
		marked := make([]int, 0, len(ps.marked))
		for n := range ps.marked {
			marked = append(marked, n)
		}
		players = append(players, PlayerRecord{
			PlayerID:              ps.id,
			Board:                 ps.board,
			Marked:                marked,
			FalseClaimCount:       ps.falseClaims,
			RemovedForFalseClaims: ps.removed,
		})
	}
	return GameRecord{
		RoomID:        r.cfg.ID,
		GameID:        r.game.id,
		Status:        r.status,
		CalledNumbers: append([]int(nil), r.game.called...),
		Players:       players,
	}
}

// persist ships a snapshot to the store off the hot path. Failures are
// logged; memory stays authoritative.
func (r *Room) persist(rec GameRecord) {
	go func() {
		if err := r.deps.Store.SaveGame(rec); err != nil {
			r.log.Errorw("persisting game failed", "game", rec.GameID, "error", err)
		}
	}()
}
