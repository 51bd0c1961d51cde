package engine

import (
	"fmt"
	"time"
)

// Status is a room's lifecycle phase. Transitions only move forward;
// the only way back to waiting is the re-arm after completed.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCountdown Status = "countdown"
	StatusActive    Status = "active"
	StatusResolving Status = "resolving"
	StatusCompleted Status = "completed"
)

// RoomConfig is the static, externally owned configuration of a room.
// Money fields are in the smallest currency unit.
type RoomConfig struct {
	ID                   string              `json:"id" mapstructure:"id"`
	EntryFee             int64               `json:"entryFee" mapstructure:"entry_fee"`
	MinPlayers           int                 `json:"minPlayers" mapstructure:"min_players"`
	MaxPlayers           int                 `json:"maxPlayers" mapstructure:"max_players"`
	CountdownSeconds     int                 `json:"countdownSeconds" mapstructure:"countdown_seconds"`
	CallInterval         time.Duration       `json:"callInterval" mapstructure:"call_interval"`
	WinnerWindow         time.Duration       `json:"winnerWindow" mapstructure:"winner_window"`
	WinningPercentage    int                 `json:"winningPercentage" mapstructure:"winning_percentage"`
	UseDynamicPercentage bool                `json:"useDynamicPercentage" mapstructure:"use_dynamic_percentage"`
	Rules                []WinPercentageRule `json:"rules" mapstructure:"rules"`
	FalseClaimThreshold  int                 `json:"falseClaimThreshold" mapstructure:"false_claim_threshold"`
	CarryOverPlayers     bool                `json:"carryOverPlayers" mapstructure:"carry_over_players"`

	// ManualStart disables the automatic waiting -> countdown trigger
	// on reaching MinPlayers; the countdown then only starts through
	// StartCountdown (admin / lobby scheduler).
	ManualStart bool `json:"manualStart" mapstructure:"manual_start"`

	// Seed fixes the RNG for reproducible draws and boards. Zero means
	// seed from the clock.
	Seed int64 `json:"-" mapstructure:"seed"`
}

const (
	DefaultCountdownSeconds = 30
	DefaultCallInterval     = 5 * time.Second
	DefaultWinnerWindow     = time.Second
)

// Validate checks a room configuration before a room is created from it.
func (c RoomConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: room id is required", ErrConfiguration)
	}
	if c.EntryFee < 0 {
		return fmt.Errorf("%w: negative entry fee", ErrConfiguration)
	}
	if c.MinPlayers < 1 || c.MaxPlayers < c.MinPlayers {
		return fmt.Errorf("%w: bad player bounds [%d,%d]", ErrConfiguration, c.MinPlayers, c.MaxPlayers)
	}
	if c.UseDynamicPercentage {
		if len(c.Rules) == 0 {
			return fmt.Errorf("%w: dynamic percentage enabled without rules", ErrConfiguration)
		}
		if err := ValidateRules(c.Rules); err != nil {
			return err
		}
	} else if c.WinningPercentage < 0 || c.WinningPercentage > 100 {
		return fmt.Errorf("%w: win percentage %d out of range", ErrConfiguration, c.WinningPercentage)
	}
	return nil
}

// withDefaults fills unset timing fields.
func (c RoomConfig) withDefaults() RoomConfig {
	if c.CountdownSeconds <= 0 {
		c.CountdownSeconds = DefaultCountdownSeconds
	}
	if c.CallInterval <= 0 {
		c.CallInterval = DefaultCallInterval
	}
	if c.WinnerWindow <= 0 {
		c.WinnerWindow = DefaultWinnerWindow
	}
	return c
}
