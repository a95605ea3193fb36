package engine

import (
	"github.com/mekdi/faction-services/internal/fpmath"
)

// Faction-point ledger: per-user, per-epoch accrual, locking and
// settlement. All methods below except SelectFaction assume the engine
// mutex is already held by the calling operation.

// SelectFaction records the caller's faction preference. If the caller has
// not yet played this epoch the choice applies immediately (it is picked up
// when their epoch entry materializes); once the epoch faction is locked the
// change silently defers to the next epoch. Creates the user record on
// first call.
func (e *Engine) SelectFaction(caller string, faction FactionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if uint32(faction) >= e.st.config.NumFactions {
		return ErrInvalidFaction
	}

	u, ok := e.st.users[caller]
	if !ok {
		u = &User{Address: caller}
		e.st.users[caller] = u
	}
	// The epoch faction, once locked, is never rewritten here: a selection
	// made mid-epoch only affects epochs that have not locked yet.
	u.SelectedFaction = faction
	return nil
}

// stagedEpochUser is a computed-but-uncommitted ledger entry for the
// current epoch. Staging runs every check, vault read and FP computation
// without touching engine state; commitEpochUser performs only plain
// assignments. A multi-player operation stages all participants first, so a
// failure on any of them leaves no trace of the others.
type stagedEpochUser struct {
	key       epochUserKey
	eu        *EpochUser
	user      *User
	holdStart int64
	balance   int64
	fresh     bool
}

// stageEpochUser prepares the caller's ledger entry for the current epoch:
// snapshots the vault balance, applies the withdrawal-reset rule, computes
// the epoch FP grant and picks the epoch faction. Entries already
// materialized this epoch are returned as-is.
func (e *Engine) stageEpochUser(addr string) (*stagedEpochUser, error) {
	key := epochUserKey{e.st.currentEpoch, addr}
	if eu, ok := e.st.epochUsers[key]; ok {
		return &stagedEpochUser{key: key, eu: eu}, nil
	}

	u, ok := e.st.users[addr]
	if !ok {
		// A faction must be elected before the first game.
		return nil, ErrFactionNotSelected
	}

	balance, err := e.vault.BalanceOf(addr)
	if err != nil {
		return nil, ErrFeeVault
	}

	now := e.now().Unix()
	holdStart := u.TimeMultiplierStart
	if holdStart == 0 && balance > 0 {
		holdStart = now
	}
	// Withdrawal detection: dropping below 50% of the prior epoch balance
	// forfeits the accumulated holding time, so principal cannot be banked,
	// withdrawn and redeposited for a double dip. The doubling is checked so
	// an extreme balance classifies as overflow instead of wrapping into a
	// spurious reset.
	if u.LastEpochBalance > 0 {
		doubled, err := fpmath.Add(balance, balance)
		if err != nil {
			return nil, mathError(err)
		}
		if doubled < u.LastEpochBalance {
			holdStart = now
		}
	}

	holdSecs := int64(0)
	if holdStart > 0 && now > holdStart {
		holdSecs = now - holdStart
	}

	mult, err := e.combinedMultiplier(balance, holdSecs)
	if err != nil {
		return nil, err
	}
	boosted, err := fpmath.MulFloor(balance, mult)
	if err != nil {
		return nil, mathError(err)
	}
	fp, err := fpmath.MulFloor(boosted, e.st.config.FPPerUSD)
	if err != nil {
		return nil, mathError(err)
	}

	return &stagedEpochUser{
		key: key,
		eu: &EpochUser{
			Faction:         u.SelectedFaction,
			FactionLocked:   true,
			BalanceSnapshot: balance,
			AvailableFP:     fp,
		},
		user:      u,
		holdStart: holdStart,
		balance:   balance,
		fresh:     true,
	}, nil
}

// commitEpochUser writes a staged entry into engine state. Cannot fail.
func (e *Engine) commitEpochUser(s *stagedEpochUser) *EpochUser {
	if !s.fresh {
		return s.eu
	}
	s.user.TimeMultiplierStart = s.holdStart
	s.user.LastEpochBalance = s.balance
	e.st.epochUsers[s.key] = s.eu
	return s.eu
}

// lockFP moves amount from available to locked, the optimistic reservation
// taken at game start.
func (e *Engine) lockFP(eu *EpochUser, amount int64) error {
	if eu.AvailableFP < amount {
		return ErrInsufficientFactionPoints
	}
	eu.AvailableFP -= amount
	eu.LockedFP += amount
	return nil
}

// unlockAndSettle releases a locked wager. A contributing wager (the
// winner's) returns to the available pool and is credited to the user's
// contribution total and the faction standings; a non-contributing wager
// (the loser's) is burned.
func (e *Engine) unlockAndSettle(eu *EpochUser, epoch uint32, amount int64, contributes bool) error {
	if !contributes {
		eu.LockedFP -= amount
		return nil
	}

	available, err := fpmath.Add(eu.AvailableFP, amount)
	if err != nil {
		return mathError(err)
	}
	contributed, err := fpmath.Add(eu.ContributedFP, amount)
	if err != nil {
		return mathError(err)
	}

	ep, ok := e.st.epochs[epoch]
	if !ok {
		return ErrEpochNotFound
	}
	standing, err := fpmath.Add(ep.Standings[eu.Faction], amount)
	if err != nil {
		return mathError(err)
	}

	eu.LockedFP -= amount
	eu.AvailableFP = available
	eu.ContributedFP = contributed
	ep.Standings[eu.Faction] = standing
	return nil
}
