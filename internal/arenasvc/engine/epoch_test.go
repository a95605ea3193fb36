package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/fpmath"
)

// playWin runs one session where winner (faction already selected) beats a
// throwaway opponent, contributing exactly wager to the winner's faction.
func (f *fixture) playWin(t *testing.T, sessionID uint32, winner, loser string, wager int64) {
	t.Helper()
	require.NoError(t, f.eng.StartGame(gameA, sessionID, winner, loser, wager, fpmath.One))
	require.NoError(t, f.eng.EndGame(gameA, Outcome{
		SessionID: sessionID, Player1: winner, Player2: loser, Player1Won: true,
	}))
}

func TestCycleEpochNotReady(t *testing.T) {
	f := newFixture(t)

	requireCode(t, f.eng.CycleEpoch(), ErrEpochNotReady)

	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())
	assert.Equal(t, uint32(1), f.eng.CurrentEpoch())
}

func TestCycleEpochOpensNextEpoch(t *testing.T) {
	f := newFixture(t)
	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())

	prev := f.eng.GetEpochInfo(0)
	assert.True(t, prev.Finalized)

	next := f.eng.GetEpochInfo(1)
	assert.False(t, next.Finalized)
	assert.Equal(t, f.clock.Unix(), next.StartTime)
	assert.Equal(t, f.clock.Unix()+7*day, next.EndTime)

	// immediately retrying is gated by the fresh epoch's end time
	requireCode(t, f.eng.CycleEpoch(), ErrEpochNotReady)
}

func TestCycleEpochFundsRewardPool(t *testing.T) {
	f := newFixture(t)
	f.vault.yield = 500 * fpmath.One
	f.router.out = 450 * fpmath.One

	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())

	assert.Equal(t, 450*fpmath.One, f.eng.GetEpochInfo(0).RewardPool)
	assert.Equal(t, 1, f.router.calls)
}

func TestCycleEpochZeroYieldSkipsSwap(t *testing.T) {
	f := newFixture(t)
	f.vault.yield = 0

	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())

	assert.Equal(t, int64(0), f.eng.GetEpochInfo(0).RewardPool)
	assert.Equal(t, 0, f.router.calls)
}

func TestCycleEpochExternalFailureLeavesEpochOpen(t *testing.T) {
	f := newFixture(t)
	f.vault.yield = 500 * fpmath.One
	f.advance(7 * day)

	f.vault.harvestErr = assert.AnError
	requireCode(t, f.eng.CycleEpoch(), ErrFeeVault)
	assert.False(t, f.eng.GetEpochInfo(0).Finalized)
	assert.Equal(t, uint32(0), f.eng.CurrentEpoch())

	f.vault.harvestErr = nil
	f.router.err = assert.AnError
	requireCode(t, f.eng.CycleEpoch(), ErrSwap)
	assert.False(t, f.eng.GetEpochInfo(0).Finalized)

	// retry succeeds once the integrations recover
	f.router.err = nil
	f.router.out = 400 * fpmath.One
	require.NoError(t, f.eng.CycleEpoch())
	assert.True(t, f.eng.GetEpochInfo(0).Finalized)
	assert.Equal(t, 400*fpmath.One, f.eng.GetEpochInfo(0).RewardPool)
}

func TestWinnerDeterminismOnTie(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 1) // faction 1
	f.deposit(t, bob, 1_000, 0)   // faction 0
	f.deposit(t, carol, 1_000, 2) // faction 2
	f.deposit(t, dave, 1_000, 0)  // throwaway opponent

	// standings: faction 0 = 500, faction 1 = 500, faction 2 = 100
	f.playWin(t, 1, bob, dave, 500*fpmath.One)
	f.playWin(t, 2, alice, dave, 500*fpmath.One)
	f.playWin(t, 3, carol, dave, 100*fpmath.One)

	ep := f.eng.GetEpochInfo(0)
	require.Equal(t, 500*fpmath.One, ep.Standings[0])
	require.Equal(t, 500*fpmath.One, ep.Standings[1])
	require.Equal(t, 100*fpmath.One, ep.Standings[2])

	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())

	// ties break toward the lowest faction id, deterministically
	final := f.eng.GetEpochInfo(0)
	assert.True(t, final.HasWinner)
	assert.Equal(t, FactionID(0), final.WinningFaction)
}

func TestNoGamesMeansNoWinner(t *testing.T) {
	f := newFixture(t)
	f.advance(7 * day)
	require.NoError(t, f.eng.CycleEpoch())

	assert.False(t, f.eng.GetEpochInfo(0).HasWinner)
}
