package engine

// Epoch controller: Open -> Finalized, with the next epoch opened in the
// same transition. Finalization is all-or-nothing: the external harvest and
// swap run before any state is touched, so a failed integration leaves the
// epoch open and CycleEpoch safely retriable.

// CycleEpoch finalizes the current epoch once its end time has passed:
// freezes standings, determines the winning faction, harvests vault yield,
// swaps it into the reward denomination and opens the next epoch.
func (e *Engine) CycleEpoch() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized(); err != nil {
		return err
	}

	epoch := e.st.currentEpoch
	ep, ok := e.st.epochs[epoch]
	if !ok {
		return ErrEpochNotFound
	}

	now := e.now().Unix()
	if now < ep.EndTime {
		return ErrEpochNotReady
	}
	if ep.Finalized {
		// Unreachable while the current epoch always opens un-finalized;
		// kept as a guard against state corruption.
		return ErrEpochAlreadyFinalized
	}

	winner, hasWinner := winningFaction(ep.Standings, e.st.config.NumFactions)

	// External integrations first. Either call failing aborts the whole
	// finalization with no partial reward pool recorded.
	yield, err := e.vault.HarvestYield()
	if err != nil {
		return ErrFeeVault
	}
	pool := int64(0)
	if yield > 0 {
		cfg := e.st.config
		pool, err = e.router.SwapExactIn(cfg.YieldToken, cfg.RewardToken, yield, 0)
		if err != nil {
			return ErrSwap
		}
	}

	ep.Finalized = true
	ep.WinningFaction = winner
	ep.HasWinner = hasWinner
	ep.RewardPool = pool

	next := epoch + 1
	e.st.epochs[next] = &EpochInfo{
		StartTime: now,
		EndTime:   now + e.st.config.EpochDurationSecs,
		Standings: make(map[FactionID]int64),
	}
	e.st.currentEpoch = next
	return nil
}

// winningFaction picks the faction with the maximum standing, breaking ties
// by the lowest faction id. The scan runs over faction ids in order rather
// than map iteration order so the result is deterministic. hasWinner is
// false when no faction scored at all.
func winningFaction(standings map[FactionID]int64, numFactions uint32) (FactionID, bool) {
	var winner FactionID
	var best int64
	for id := uint32(0); id < numFactions; id++ {
		if s := standings[FactionID(id)]; s > best {
			best = s
			winner = FactionID(id)
		}
	}
	return winner, best > 0
}
