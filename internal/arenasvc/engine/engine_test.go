package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/fpmath"
)

const (
	admin = "GADMIN"
	gameA = "CGAMEA"
	gameB = "CGAMEB"

	alice = "GALICE"
	bob   = "GBOB"
	carol = "GCAROL"
	dave  = "GDAVE"
)

const day = int64(24 * 60 * 60)

type stubVault struct {
	balances   map[string]int64
	yield      int64
	balanceErr error
	harvestErr error
}

func (v *stubVault) BalanceOf(addr string) (int64, error) {
	if v.balanceErr != nil {
		return 0, v.balanceErr
	}
	return v.balances[addr], nil
}

func (v *stubVault) HarvestYield() (int64, error) {
	if v.harvestErr != nil {
		return 0, v.harvestErr
	}
	return v.yield, nil
}

type stubRouter struct {
	out   int64
	err   error
	calls int
}

func (r *stubRouter) SwapExactIn(tokenIn, tokenOut string, amountIn, minOut int64) (int64, error) {
	r.calls++
	if r.err != nil {
		return 0, r.err
	}
	return r.out, nil
}

type stubToken struct {
	paid map[string]int64
	err  error
}

func (t *stubToken) Transfer(to string, amount int64) error {
	if t.err != nil {
		return t.err
	}
	if t.paid == nil {
		t.paid = make(map[string]int64)
	}
	t.paid[to] += amount
	return nil
}

type fixture struct {
	eng    *Engine
	vault  *stubVault
	router *stubRouter
	token  *stubToken
	clock  time.Time
}

func (f *fixture) advance(secs int64) {
	f.clock = f.clock.Add(time.Duration(secs) * time.Second)
}

func testConfig() Config {
	return Config{
		FPPerUSD:          100 * fpmath.One,
		PeakMultiplier:    6 * fpmath.One,
		TargetAmount:      1_000 * fpmath.One,
		MaxAmount:         100_000 * fpmath.One,
		TargetHoldSecs:    35 * day,
		MaxHoldSecs:       350 * day,
		EpochDurationSecs: 7 * day,
		NumFactions:       3,
		YieldToken:        "YLD",
		RewardToken:       "RWD",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		vault:  &stubVault{balances: make(map[string]int64)},
		router: &stubRouter{},
		token:  &stubToken{},
		clock:  time.Unix(1_700_000_000, 0),
	}
	f.eng = New(f.vault, f.router, f.token, WithClock(func() time.Time { return f.clock }))
	require.NoError(t, f.eng.Initialize(admin, testConfig()))
	require.NoError(t, f.eng.AddGame(admin, gameA))
	return f
}

// deposit seeds the stub vault and elects a faction so the player is ready
// to play.
func (f *fixture) deposit(t *testing.T, addr string, usd int64, faction FactionID) {
	t.Helper()
	f.vault.balances[addr] = usd * fpmath.One
	require.NoError(t, f.eng.SelectFaction(addr, faction))
}

func requireCode(t *testing.T, err error, want *Error) {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "expected engine error, got %v", err)
	require.Equal(t, want.Code, e.Code, "expected %s, got %s", want.Name, e.Name)
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, uint32(12), CodeOf(ErrInsufficientFactionPoints))
	require.Equal(t, uint32(0), CodeOf(errors.New("plain")))
}
