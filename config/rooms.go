package config

import (
	"fmt"
	"time"

	"github.com/selamgames/bingo-engine/engine"
	"github.com/spf13/viper"
)

// roomEntry mirrors one room block in rooms.yaml. Durations are in
// milliseconds so operators never guess units.
type roomEntry struct {
	ID                   string                     `mapstructure:"id"`
	EntryFee             int64                      `mapstructure:"entry_fee"`
	MinPlayers           int                        `mapstructure:"min_players"`
	MaxPlayers           int                        `mapstructure:"max_players"`
	CountdownSeconds     int                        `mapstructure:"countdown_seconds"`
	CallIntervalMs       int                        `mapstructure:"call_interval_ms"`
	WinnerWindowMs       int                        `mapstructure:"winner_window_ms"`
	WinningPercentage    int                        `mapstructure:"winning_percentage"`
	UseDynamicPercentage bool                       `mapstructure:"use_dynamic_percentage"`
	Rules                []engine.WinPercentageRule `mapstructure:"rules"`
	FalseClaimThreshold  int                        `mapstructure:"false_claim_threshold"`
	CarryOverPlayers     bool                       `mapstructure:"carry_over_players"`
	ManualStart          bool                       `mapstructure:"manual_start"`
}

// LoadRooms reads the room catalogue and validates every room,
// including win-percentage band overlap, before the engine sees it.
func LoadRooms(path string) ([]engine.RoomConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rooms config: %w", err)
	}

	var entries []roomEntry
	if err := v.UnmarshalKey("rooms", &entries); err != nil {
		return nil, fmt.Errorf("parse rooms config: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("rooms config %s defines no rooms", path)
	}

	out := make([]engine.RoomConfig, 0, len(entries))
	for _, e := range entries {
		cfg := engine.RoomConfig{
			ID:                   e.ID,
			EntryFee:             e.EntryFee,
			MinPlayers:           e.MinPlayers,
			MaxPlayers:           e.MaxPlayers,
			CountdownSeconds:     e.CountdownSeconds,
			CallInterval:         time.Duration(e.CallIntervalMs) * time.Millisecond,
			WinnerWindow:         time.Duration(e.WinnerWindowMs) * time.Millisecond,
			WinningPercentage:    e.WinningPercentage,
			UseDynamicPercentage: e.UseDynamicPercentage,
			Rules:                e.Rules,
			FalseClaimThreshold:  e.FalseClaimThreshold,
			CarryOverPlayers:     e.CarryOverPlayers,
			ManualStart:          e.ManualStart,
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("room %q: %w", e.ID, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}
