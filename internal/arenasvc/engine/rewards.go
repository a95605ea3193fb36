package engine

import (
	"github.com/mekdi/faction-services/internal/fpmath"
)

// Reward claims: each winning-faction participant withdraws a pro-rata
// share of the finalized epoch's reward pool, exactly once.

// ClaimEpochReward pays out the caller's share for a finalized epoch and
// records the claim. Returns the amount disbursed.
func (e *Engine) ClaimEpochReward(caller string, epoch uint32) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized(); err != nil {
		return 0, err
	}
	if err := e.requireNotPaused(); err != nil {
		return 0, err
	}
	if e.st.claims[claimKey{caller, epoch}] {
		return 0, ErrRewardAlreadyClaimed
	}

	ep, ok := e.st.epochs[epoch]
	if !ok || !ep.Finalized {
		return 0, ErrEpochNotFinalized
	}
	if !ep.HasWinner {
		return 0, ErrNoRewardsAvailable
	}

	eu, ok := e.st.epochUsers[epochUserKey{epoch, caller}]
	if !ok || !eu.FactionLocked {
		return 0, ErrNoRewardsAvailable
	}
	if eu.Faction != ep.WinningFaction {
		return 0, ErrNotWinningFaction
	}
	if eu.ContributedFP == 0 {
		return 0, ErrNoRewardsAvailable
	}

	totalFP := ep.Standings[ep.WinningFaction]
	share, err := rewardShare(eu.ContributedFP, totalFP, ep.RewardPool)
	if err != nil {
		return 0, err
	}
	if share == 0 {
		return 0, ErrNoRewardsAvailable
	}

	// The transfer happens before the claim record is written: the
	// execution model is serialized, so a failed transfer simply leaves the
	// claim open for retry with nothing recorded.
	if err := e.reward.Transfer(caller, share); err != nil {
		return 0, ErrTokenTransfer
	}
	e.st.claims[claimKey{caller, epoch}] = true
	return share, nil
}

// GetClaimableAmount runs the identical computation without mutating
// anything; any ineligibility yields 0 so UIs can render previews without
// error branching.
func (e *Engine) GetClaimableAmount(addr string, epoch uint32) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.claims[claimKey{addr, epoch}] {
		return 0
	}
	ep, ok := e.st.epochs[epoch]
	if !ok || !ep.Finalized || !ep.HasWinner {
		return 0
	}
	eu, ok := e.st.epochUsers[epochUserKey{epoch, addr}]
	if !ok || !eu.FactionLocked || eu.Faction != ep.WinningFaction {
		return 0
	}
	if eu.ContributedFP == 0 {
		return 0
	}

	share, err := rewardShare(eu.ContributedFP, ep.Standings[ep.WinningFaction], ep.RewardPool)
	if err != nil {
		return 0
	}
	return share
}

// rewardShare computes pool * (userFP / totalFP) with floor truncation at
// each step.
func rewardShare(userFP, totalFP, pool int64) (int64, error) {
	share, err := fpmath.DivFloor(userFP, totalFP)
	if err != nil {
		return 0, mathError(err)
	}
	amount, err := fpmath.MulFloor(pool, share)
	if err != nil {
		return 0, mathError(err)
	}
	return amount, nil
}
