package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mekdi/faction-services/internal/fpmath"
)

func TestInitializeOnce(t *testing.T) {
	f := newFixture(t)
	requireCode(t, f.eng.Initialize(admin, testConfig()), ErrAlreadyInitialized)
}

func TestUninitializedEngineRejectsOperations(t *testing.T) {
	eng := New(&stubVault{}, &stubRouter{}, &stubToken{},
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))

	requireCode(t, eng.SelectFaction(alice, 0), ErrNotInitialized)
	requireCode(t, eng.CycleEpoch(), ErrNotInitialized)
	requireCode(t, eng.StartGame(gameA, 1, alice, bob, fpmath.One, fpmath.One), ErrNotInitialized)
	requireCode(t, eng.Pause(admin), ErrNotInitialized)
}

func TestConfigValidation(t *testing.T) {
	base := testConfig()

	degenerate := base
	degenerate.MaxAmount = degenerate.TargetAmount
	assert.ErrorIs(t, degenerate.Validate(), ErrInvalidConfig)

	degenerate = base
	degenerate.MaxHoldSecs = degenerate.TargetHoldSecs
	assert.ErrorIs(t, degenerate.Validate(), ErrInvalidConfig)

	degenerate = base
	degenerate.PeakMultiplier = fpmath.One / 2
	assert.ErrorIs(t, degenerate.Validate(), ErrInvalidConfig)

	degenerate = base
	degenerate.NumFactions = 1
	assert.ErrorIs(t, degenerate.Validate(), ErrInvalidConfig)

	assert.NoError(t, base.Validate())
}

func TestAdminGate(t *testing.T) {
	f := newFixture(t)

	requireCode(t, f.eng.Pause(alice), ErrNotAdmin)
	requireCode(t, f.eng.AddGame(alice, gameB), ErrNotAdmin)
	requireCode(t, f.eng.SetConfig(alice, testConfig()), ErrNotAdmin)
	requireCode(t, f.eng.SetAdmin(alice, alice), ErrNotAdmin)
}

func TestSetAdminTransfersRole(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.SetAdmin(admin, alice))
	assert.Equal(t, alice, f.eng.Admin())

	requireCode(t, f.eng.Pause(admin), ErrNotAdmin)
	require.NoError(t, f.eng.Pause(alice))
}

func TestAdminPathsStayOpenWhilePaused(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.Pause(admin))

	require.NoError(t, f.eng.AddGame(admin, gameB))
	require.NoError(t, f.eng.SetConfig(admin, testConfig()))
	require.NoError(t, f.eng.Unpause(admin))
}

func TestGameWhitelist(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.eng.IsGameWhitelisted(gameA))
	assert.False(t, f.eng.IsGameWhitelisted(gameB))

	require.NoError(t, f.eng.AddGame(admin, gameB))
	assert.True(t, f.eng.IsGameWhitelisted(gameB))

	require.NoError(t, f.eng.RemoveGame(admin, gameB))
	assert.False(t, f.eng.IsGameWhitelisted(gameB))
}

func TestSetConfigRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	bad := testConfig()
	bad.MaxAmount = bad.TargetAmount
	requireCode(t, f.eng.SetConfig(admin, bad), ErrInvalidConfig)
}
