package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/fpmath"
)

func (f *fixture) startDefaultGame(t *testing.T, sessionID uint32, wager int64) {
	t.Helper()
	require.NoError(t, f.eng.StartGame(gameA, sessionID, alice, bob, wager, wager))
}

func defaultOutcome(sessionID uint32, player1Won bool) Outcome {
	return Outcome{SessionID: sessionID, Player1: alice, Player2: bob, Player1Won: player1Won}
}

func TestStartGameValidation(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	requireCode(t, f.eng.StartGame(gameB, 1, alice, bob, fpmath.One, fpmath.One), ErrGameNotWhitelisted)
	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, 0, fpmath.One), ErrInvalidAmount)
	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, fpmath.One, -1), ErrInvalidAmount)

	f.startDefaultGame(t, 1, fpmath.One)
	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, fpmath.One, fpmath.One), ErrSessionAlreadyExists)

	s, ok := f.eng.GetSession(1)
	require.True(t, ok)
	assert.Equal(t, SessionPending, s.Status)
	assert.Equal(t, gameA, s.GameID)
	assert.Equal(t, uint32(0), s.EpochID)
}

func TestStartGamePaused(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	require.NoError(t, f.eng.Pause(admin))
	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, fpmath.One, fpmath.One), ErrContractPaused)
	requireCode(t, f.eng.SelectFaction(carol, 0), ErrContractPaused)

	require.NoError(t, f.eng.Unpause(admin))
	f.startDefaultGame(t, 1, fpmath.One)
}

func TestStartGameInsufficientFP(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	huge := 10_000_000 * fpmath.One
	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, huge, fpmath.One), ErrInsufficientFactionPoints)

	// the failed start must not leave any FP locked
	assert.Equal(t, int64(0), f.eng.GetEpochUser(0, alice).LockedFP)
	assert.Equal(t, int64(0), f.eng.GetEpochUser(0, bob).LockedFP)
}

func TestStartGameRejectsSelfPlay(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	f.startDefaultGame(t, 1, fpmath.One)
	before := f.eng.GetEpochUser(0, alice)

	// two slots against one ledger entry: each half-plus-one wager would
	// pass a per-slot check, but the pair can never both be locked
	wager := before.AvailableFP/2 + 1
	requireCode(t, f.eng.StartGame(gameA, 2, alice, alice, wager, wager), ErrInvalidGameOutcome)

	after := f.eng.GetEpochUser(0, alice)
	assert.Equal(t, before.AvailableFP, after.AvailableFP)
	assert.Equal(t, before.LockedFP, after.LockedFP)
	_, ok := f.eng.GetSession(2)
	assert.False(t, ok)
}

func TestFailedStartGameLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.vault.balances[bob] = 1_000 * fpmath.One // bob never selected a faction

	requireCode(t, f.eng.StartGame(gameA, 1, alice, bob, fpmath.One, fpmath.One), ErrFactionNotSelected)

	// the failed start must not have materialized alice's epoch entry or
	// touched her holding clock
	assert.False(t, f.eng.GetEpochUser(0, alice).FactionLocked)
	u := f.eng.GetUser(alice)
	assert.Equal(t, int64(0), u.TimeMultiplierStart)
	assert.Equal(t, int64(0), u.LastEpochBalance)

	// in particular her faction is not yet locked: a reselection after the
	// failed start still applies to this epoch
	f.deposit(t, carol, 1_000, 1)
	require.NoError(t, f.eng.SelectFaction(alice, 2))
	require.NoError(t, f.eng.StartGame(gameA, 1, alice, carol, fpmath.One, fpmath.One))
	assert.Equal(t, FactionID(2), f.eng.GetEpochUser(0, alice).Faction)
}

func TestConcurrentSessionsCannotDoubleSpend(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	f.startDefaultGame(t, 1, fpmath.One)
	available := f.eng.GetEpochUser(0, alice).AvailableFP

	// wagering more than what remains available must fail even though the
	// original grant would cover it
	requireCode(t, f.eng.StartGame(gameA, 2, alice, bob, available+1, fpmath.One), ErrInsufficientFactionPoints)
	require.NoError(t, f.eng.StartGame(gameA, 3, alice, bob, available, fpmath.One))
	assert.Equal(t, int64(0), f.eng.GetEpochUser(0, alice).AvailableFP)
}

func TestEndGameSettlement(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	wager := 100 * fpmath.One
	f.startDefaultGame(t, 1, wager)

	aliceBefore := f.eng.GetEpochUser(0, alice)
	bobBefore := f.eng.GetEpochUser(0, bob)

	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(1, true)))

	aliceAfter := f.eng.GetEpochUser(0, alice)
	bobAfter := f.eng.GetEpochUser(0, bob)

	// winner's wager is returned and credited as contribution
	assert.Equal(t, aliceBefore.AvailableFP+wager, aliceAfter.AvailableFP)
	assert.Equal(t, int64(0), aliceAfter.LockedFP)
	assert.Equal(t, wager, aliceAfter.ContributedFP)

	// loser's wager is burned
	assert.Equal(t, bobBefore.AvailableFP, bobAfter.AvailableFP)
	assert.Equal(t, int64(0), bobAfter.LockedFP)
	assert.Equal(t, int64(0), bobAfter.ContributedFP)

	// only the winner's faction gains standing
	ep := f.eng.GetEpochInfo(0)
	assert.Equal(t, wager, ep.Standings[0])
	assert.Equal(t, int64(0), ep.Standings[1])

	s, _ := f.eng.GetSession(1)
	assert.Equal(t, SessionCompleted, s.Status)
	assert.True(t, s.Player1Won)
}

func TestWinnerWagerRoundTripsWhenStakingEverything(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	// materialize first, then wager the full grant
	f.startDefaultGame(t, 1, fpmath.One)
	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(1, false)))

	preGame := f.eng.GetEpochUser(0, alice).AvailableFP
	require.NoError(t, f.eng.StartGame(gameA, 2, alice, bob, preGame, fpmath.One))
	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(2, true)))

	// wagering everything and winning leaves available FP untouched; the
	// stake converts into contribution credit, not a deduction
	assert.Equal(t, preGame, f.eng.GetEpochUser(0, alice).AvailableFP)
}

func TestEndGameAuthorization(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)
	f.startDefaultGame(t, 1, fpmath.One)

	requireCode(t, f.eng.EndGame(gameB, defaultOutcome(1, true)), ErrGameNotAuthorized)

	bad := defaultOutcome(1, true)
	bad.Player2 = carol
	requireCode(t, f.eng.EndGame(gameA, bad), ErrInvalidGameOutcome)

	requireCode(t, f.eng.EndGame(gameA, defaultOutcome(99, true)), ErrSessionNotFound)
}

func TestEndGameTwice(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)
	f.startDefaultGame(t, 1, fpmath.One)

	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(1, true)))
	requireCode(t, f.eng.EndGame(gameA, defaultOutcome(1, true)), ErrInvalidSessionState)
}

func TestEndGameAcrossEpochExpires(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)
	f.startDefaultGame(t, 1, fpmath.One)

	f.advance(8 * day)
	require.NoError(t, f.eng.CycleEpoch())

	requireCode(t, f.eng.EndGame(gameA, defaultOutcome(1, true)), ErrGameExpired)

	s, _ := f.eng.GetSession(1)
	assert.Equal(t, SessionPending, s.Status)
}

func TestCancelSessionRefundsBothWagers(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	wager := 100 * fpmath.One
	f.startDefaultGame(t, 1, wager)

	requireCode(t, f.eng.CancelSession(alice, 1), ErrNotAdmin)
	require.NoError(t, f.eng.CancelSession(admin, 1))

	for _, addr := range []string{alice, bob} {
		eu := f.eng.GetEpochUser(0, addr)
		assert.Equal(t, int64(0), eu.LockedFP)
		assert.Equal(t, int64(0), eu.ContributedFP)
	}
	s, _ := f.eng.GetSession(1)
	assert.Equal(t, SessionCancelled, s.Status)

	requireCode(t, f.eng.CancelSession(admin, 1), ErrInvalidSessionState)
}

func TestFPConservation(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, alice, 1_000, 0)
	f.deposit(t, bob, 1_000, 1)

	f.startDefaultGame(t, 1, fpmath.One)
	grant := f.eng.GetEpochUser(0, alice).AvailableFP + f.eng.GetEpochUser(0, alice).LockedFP

	wager := 50 * fpmath.One
	require.NoError(t, f.eng.StartGame(gameA, 2, alice, bob, wager, wager))
	require.NoError(t, f.eng.StartGame(gameA, 3, alice, bob, wager, wager))

	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(2, true)))  // alice wins
	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(3, false))) // alice loses
	require.NoError(t, f.eng.EndGame(gameA, defaultOutcome(1, false)))

	// alice lost session 3 and the first probe wager: her pool shrank by
	// exactly the sum of losing wagers, never more
	eu := f.eng.GetEpochUser(0, alice)
	assert.Equal(t, grant-wager-fpmath.One, eu.AvailableFP+eu.LockedFP)
	assert.LessOrEqual(t, eu.AvailableFP+eu.LockedFP, grant)
}
