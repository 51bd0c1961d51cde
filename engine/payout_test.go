package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticRoom(entryFee int64, pct int) RoomConfig {
	return RoomConfig{
		ID:                "r1",
		EntryFee:          entryFee,
		MinPlayers:        2,
		MaxPlayers:        100,
		WinningPercentage: pct,
	}
}

func TestComputePayout_Static(t *testing.T) {
	p, err := ComputePayout(staticRoom(10, 70), 2, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(20), p.TotalPot)
	assert.Equal(t, int64(14), p.ExpectedPayout)
	assert.Equal(t, int64(14), p.PrizePerWinner)
	assert.Equal(t, int64(6), p.Commission)
	assert.Equal(t, 70, p.WinPercentage)
}

func TestComputePayout_PotInvariant(t *testing.T) {
	fees := []int64{1, 7, 10, 99, 1000}
	counts := []int{1, 2, 3, 10, 33}
	pcts := []int{0, 1, 33, 50, 70, 99, 100}
	winners := []int{1, 2, 3, 7}

	for _, fee := range fees {
		for _, players := range counts {
			for _, pct := range pcts {
				for _, w := range winners {
					p, err := ComputePayout(staticRoom(fee, pct), players, w)
					require.NoError(t, err)
					assert.Equal(t, p.TotalPot, p.Commission+int64(w)*p.PrizePerWinner,
						"fee=%d players=%d pct=%d winners=%d", fee, players, pct, w)
					assert.GreaterOrEqual(t, p.Commission, p.TotalPot-p.ExpectedPayout,
						"rounding remainder must stay with the house")
				}
			}
		}
	}
}

func TestComputePayout_SplitRemainderToCommission(t *testing.T) {
	// Pot 30 at 70% = 21, split across 2 winners: 10 each, 1 left over.
	p, err := ComputePayout(staticRoom(10, 70), 3, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(30), p.TotalPot)
	assert.Equal(t, int64(21), p.ExpectedPayout)
	assert.Equal(t, int64(10), p.PrizePerWinner)
	assert.Equal(t, int64(10), p.Commission)
}

func TestComputePayout_Dynamic(t *testing.T) {
	cfg := RoomConfig{
		ID:                   "dyn",
		EntryFee:             100,
		MinPlayers:           1,
		MaxPlayers:           100,
		UseDynamicPercentage: true,
		Rules: []WinPercentageRule{
			{MinPlayers: 1, MaxPlayers: 10, WinPercentage: 50},
			{MinPlayers: 11, MaxPlayers: 30, WinPercentage: 60},
		},
	}

	p, err := ComputePayout(cfg, 15, 1)
	require.NoError(t, err)
	assert.Equal(t, 60, p.WinPercentage)
	assert.Equal(t, int64(900), p.PrizePerWinner)

	p, err = ComputePayout(cfg, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, p.WinPercentage)

	// 31 players falls outside every band: configuration error, never a
	// silent default.
	_, err = ComputePayout(cfg, 31, 1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestComputePayout_AmbiguousBands(t *testing.T) {
	cfg := RoomConfig{
		ID:                   "dyn",
		EntryFee:             100,
		UseDynamicPercentage: true,
		Rules: []WinPercentageRule{
			{MinPlayers: 1, MaxPlayers: 20, WinPercentage: 50},
			{MinPlayers: 10, MaxPlayers: 30, WinPercentage: 60},
		},
	}
	_, err := ComputePayout(cfg, 15, 1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestComputePayout_RequiresWinner(t *testing.T) {
	_, err := ComputePayout(staticRoom(10, 70), 2, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestValidateRules(t *testing.T) {
	ok := []WinPercentageRule{
		{MinPlayers: 1, MaxPlayers: 10, WinPercentage: 50},
		{MinPlayers: 11, MaxPlayers: 30, WinPercentage: 60},
	}
	assert.NoError(t, ValidateRules(ok))

	overlapping := []WinPercentageRule{
		{MinPlayers: 1, MaxPlayers: 15, WinPercentage: 50},
		{MinPlayers: 15, MaxPlayers: 30, WinPercentage: 60},
	}
	assert.ErrorIs(t, ValidateRules(overlapping), ErrConfiguration)

	inverted := []WinPercentageRule{{MinPlayers: 10, MaxPlayers: 5, WinPercentage: 50}}
	assert.ErrorIs(t, ValidateRules(inverted), ErrConfiguration)

	outOfRange := []WinPercentageRule{{MinPlayers: 1, MaxPlayers: 5, WinPercentage: 120}}
	assert.ErrorIs(t, ValidateRules(outOfRange), ErrConfiguration)
}
