package engine

import "fmt"

// WinPercentageRule maps a player-count band to a payout percentage.
// Bands must not overlap within a room; that is checked when the
// configuration is loaded, not at payout time.
type WinPercentageRule struct {
	MinPlayers    int `json:"minPlayers" mapstructure:"min_players"`
	MaxPlayers    int `json:"maxPlayers" mapstructure:"max_players"`
	WinPercentage int `json:"winPercentage" mapstructure:"win_percentage"`
}

// Payout is the resolved money split for one game. All amounts are in
// the smallest currency unit; division remainders stay in commission so
// that Commission + WinnerCount*PrizePerWinner == TotalPot exactly.
type Payout struct {
	TotalPot       int64 `json:"totalPot"`
	ExpectedPayout int64 `json:"expectedPayout"`
	Commission     int64 `json:"commission"`
	PrizePerWinner int64 `json:"prizePerWinner"`
	WinPercentage  int   `json:"winPercentage"`
}

// resolvePercentage picks the payout percentage for playerCount. With
// dynamic percentage enabled it requires exactly one matching band;
// none or several is an ErrConfiguration surfaced to the caller, never
// a silent default.
func resolvePercentage(cfg RoomConfig, playerCount int) (int, error) {
	if !cfg.UseDynamicPercentage {
		return cfg.WinningPercentage, nil
	}
	matched := -1
	for _, rule := range cfg.Rules {
		if playerCount < rule.MinPlayers || playerCount > rule.MaxPlayers {
			continue
		}
		if matched >= 0 {
			return 0, fmt.Errorf("%w: %d players matches multiple percentage bands", ErrConfiguration, playerCount)
		}
		matched = rule.WinPercentage
	}
	if matched < 0 {
		return 0, fmt.Errorf("%w: no percentage band for %d players", ErrConfiguration, playerCount)
	}
	return matched, nil
}

// ComputePayout derives the pot split for a resolved game.
func ComputePayout(cfg RoomConfig, playerCount, winnerCount int) (Payout, error) {
	if winnerCount < 1 {
		return Payout{}, fmt.Errorf("%w: payout requires at least one winner", ErrConfiguration)
	}
	pct, err := resolvePercentage(cfg, playerCount)
	if err != nil {
		return Payout{}, err
	}
	if pct < 0 || pct > 100 {
		return Payout{}, fmt.Errorf("%w: win percentage %d out of range", ErrConfiguration, pct)
	}

	total := cfg.EntryFee * int64(playerCount)
	expected := total * int64(pct) / 100
	prize := expected / int64(winnerCount)
	paid := prize * int64(winnerCount)

	return Payout{
		TotalPot:       total,
		ExpectedPayout: expected,
		Commission:     total - paid,
		PrizePerWinner: prize,
		WinPercentage:  pct,
	}, nil
}

// ValidateRules rejects overlapping or inverted player-count bands.
func ValidateRules(rules []WinPercentageRule) error {
	for i, r := range rules {
		if r.MinPlayers < 1 || r.MaxPlayers < r.MinPlayers {
			return fmt.Errorf("%w: bad percentage band [%d,%d]", ErrConfiguration, r.MinPlayers, r.MaxPlayers)
		}
		if r.WinPercentage < 0 || r.WinPercentage > 100 {
			return fmt.Errorf("%w: win percentage %d out of range", ErrConfiguration, r.WinPercentage)
		}
		for _, prev := range rules[:i] {
			if r.MinPlayers <= prev.MaxPlayers && prev.MinPlayers <= r.MaxPlayers {
				return fmt.Errorf("%w: percentage bands [%d,%d] and [%d,%d] overlap",
					ErrConfiguration, prev.MinPlayers, prev.MaxPlayers, r.MinPlayers, r.MaxPlayers)
			}
		}
	}
	return nil
}
