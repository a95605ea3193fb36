package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/arenasvc/engine"
	"github.com/mekdi/faction-services/internal/comm"
	"github.com/mekdi/faction-services/internal/fpmath"
)

const (
	testAdmin = "GADMIN"
	testGame  = "CGAMEA"
	alice     = "GALICE"
	bob       = "GBOB"
)

type stubVault struct {
	balances map[string]int64
	yield    int64
}

func (v *stubVault) BalanceOf(addr string) (int64, error) { return v.balances[addr], nil }
func (v *stubVault) HarvestYield() (int64, error)         { return v.yield, nil }

type stubRouter struct{ out int64 }

func (r *stubRouter) SwapExactIn(tokenIn, tokenOut string, amountIn, minOut int64) (int64, error) {
	return r.out, nil
}

type stubToken struct{ paid map[string]int64 }

func (t *stubToken) Transfer(to string, amount int64) error {
	if t.paid == nil {
		t.paid = make(map[string]int64)
	}
	t.paid[to] += amount
	return nil
}

type stubPublisher struct {
	messages []comm.WSMessage
}

func (p *stubPublisher) Publish(subject string, data []byte) error {
	var msg comm.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *stubPublisher) types() []string {
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.Type)
	}
	return out
}

func testConfig() engine.Config {
	const day = int64(86400)
	return engine.Config{
		FPPerUSD:          100 * fpmath.One,
		PeakMultiplier:    6 * fpmath.One,
		TargetAmount:      1000 * fpmath.One,
		MaxAmount:         100000 * fpmath.One,
		TargetHoldSecs:    35 * day,
		MaxHoldSecs:       350 * day,
		EpochDurationSecs: 7 * day,
		NumFactions:       3,
		YieldToken:        "YLD",
		RewardToken:       "RWD",
	}
}

type fixture struct {
	arena *Arena
	pub   *stubPublisher
	clock *int64
}

// newFixture builds an arena over an initialized engine with in-memory
// collaborators and no persistence backends.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	vault := &stubVault{balances: map[string]int64{
		alice: 1000 * fpmath.One,
		bob:   1000 * fpmath.One,
	}}
	clock := new(int64)
	*clock = 1_700_000_000

	eng := engine.New(vault, &stubRouter{out: 450 * fpmath.One}, &stubToken{},
		engine.WithClock(func() time.Time { return time.Unix(*clock, 0) }))
	require.NoError(t, eng.Initialize(testAdmin, testConfig()))
	require.NoError(t, eng.AddGame(testAdmin, testGame))

	pub := &stubPublisher{}
	return &fixture{
		arena: NewArena(eng, nil, nil, nil, nil, nil, pub),
		pub:   pub,
		clock: clock,
	}
}

func TestPlayerViewBeforeAnyGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.arena.SelectFaction(ctx, alice, 1))

	view := f.arena.PlayerView(alice)
	assert.Equal(t, alice, view.Address)
	assert.Equal(t, uint32(1), view.FactionID)
	assert.Equal(t, "Tide", view.Faction)
	assert.Equal(t, "0", view.AvailableFP)
}

func TestStartGameBroadcastsEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.arena.SelectFaction(ctx, alice, 0))
	require.NoError(t, f.arena.SelectFaction(ctx, bob, 1))
	require.NoError(t, f.arena.StartGame(ctx, testGame, 1, alice, bob, fpmath.One, fpmath.One))

	require.Contains(t, f.pub.types(), "game-started")

	view := f.arena.PlayerView(alice)
	assert.Equal(t, "1", view.LockedFP)
}

func TestEndGameReportsWinnerAndWager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.arena.SelectFaction(ctx, alice, 0))
	require.NoError(t, f.arena.SelectFaction(ctx, bob, 1))
	require.NoError(t, f.arena.StartGame(ctx, testGame, 1, alice, bob, 10*fpmath.One, 10*fpmath.One))
	require.NoError(t, f.arena.EndGame(ctx, testGame, engine.Outcome{
		SessionID:  1,
		Player1:    alice,
		Player2:    bob,
		Player1Won: true,
	}))

	var event comm.GameEventData
	found := false
	for _, m := range f.pub.messages {
		if m.Type == "game-ended" {
			require.NoError(t, json.Unmarshal(m.Data, &event))
			found = true
		}
	}
	require.True(t, found, "expected a game-ended event")
	assert.Equal(t, alice, event.Winner)
	assert.Equal(t, "10", event.WagerFP)
}

func TestCycleEpochBroadcastsFinalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.arena.SelectFaction(ctx, alice, 0))
	require.NoError(t, f.arena.SelectFaction(ctx, bob, 1))
	require.NoError(t, f.arena.StartGame(ctx, testGame, 1, alice, bob, 10*fpmath.One, fpmath.One))
	require.NoError(t, f.arena.EndGame(ctx, testGame, engine.Outcome{
		SessionID:  1,
		Player1:    alice,
		Player2:    bob,
		Player1Won: true,
	}))

	*f.clock += 7 * 86400

	require.NoError(t, f.arena.CycleEpoch(ctx))
	assert.Contains(t, f.pub.types(), "epoch-finalized")
	assert.Contains(t, f.pub.types(), "epoch-opened")

	view := f.arena.EpochView(0)
	assert.True(t, view.Finalized)
	require.NotNil(t, view.WinningFaction)
	assert.Equal(t, uint32(0), *view.WinningFaction)
	assert.Equal(t, "450", view.RewardPool)
}

func TestClaimRewardPublishesResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.arena.SelectFaction(ctx, alice, 0))
	require.NoError(t, f.arena.SelectFaction(ctx, bob, 1))
	require.NoError(t, f.arena.StartGame(ctx, testGame, 1, alice, bob, 10*fpmath.One, fpmath.One))
	require.NoError(t, f.arena.EndGame(ctx, testGame, engine.Outcome{
		SessionID:  1,
		Player1:    alice,
		Player2:    bob,
		Player1Won: true,
	}))
	*f.clock += 7 * 86400
	require.NoError(t, f.arena.CycleEpoch(ctx))

	amount, err := f.arena.ClaimReward(ctx, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, 450*fpmath.One, amount)
	assert.Contains(t, f.pub.types(), "reward-claimed")

	// second claim refused
	_, err = f.arena.ClaimReward(ctx, alice, 0)
	assert.Equal(t, uint32(41), engine.CodeOf(err))
	assert.Zero(t, f.arena.ClaimableAmount(alice, 0))
}

func TestEpochViewListsAllFactions(t *testing.T) {
	f := newFixture(t)

	view := f.arena.EpochView(f.arena.Engine().CurrentEpoch())
	require.Len(t, view.Standings, 3)
	assert.Equal(t, "Ember", view.Standings[0].Faction)
	assert.Equal(t, "Tide", view.Standings[1].Faction)
	assert.Equal(t, "Gale", view.Standings[2].Faction)
	assert.False(t, view.Finalized)
	assert.Nil(t, view.WinningFaction)
}
