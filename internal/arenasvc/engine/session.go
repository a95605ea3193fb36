package engine

// Game session registry: Pending -> Completed via a verified outcome, or
// Pending -> Cancelled via the admin recovery path. Wagers are pre-locked
// at start so a player can never stake the same FP in two concurrent
// sessions; FP is the one scarce resource contested between games.

// StartGame opens a Pending session between two players, locking both
// wagers. callerGameID is the authenticated identity of the game contract
// making the call.
func (e *Engine) StartGame(callerGameID string, sessionID uint32, player1, player2 string, wager1, wager2 int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized(); err != nil {
		return err
	}
	if err := e.requireNotPaused(); err != nil {
		return err
	}
	if !e.st.whitelist[callerGameID] {
		return ErrGameNotWhitelisted
	}
	if _, exists := e.st.sessions[sessionID]; exists {
		return ErrSessionAlreadyExists
	}
	if wager1 <= 0 || wager2 <= 0 {
		return ErrInvalidAmount
	}
	if player1 == player2 {
		// A player cannot wager against themselves; the two slots would
		// alias one ledger entry.
		return ErrInvalidGameOutcome
	}

	// Stage both ledger entries and run every check before any state is
	// written: a failure on either player must leave the other untouched.
	s1, err := e.stageEpochUser(player1)
	if err != nil {
		return err
	}
	s2, err := e.stageEpochUser(player2)
	if err != nil {
		return err
	}
	if s1.eu.AvailableFP < wager1 || s2.eu.AvailableFP < wager2 {
		return ErrInsufficientFactionPoints
	}

	eu1 := e.commitEpochUser(s1)
	eu2 := e.commitEpochUser(s2)
	if err := e.lockFP(eu1, wager1); err != nil {
		return err
	}
	if err := e.lockFP(eu2, wager2); err != nil {
		return err
	}

	e.st.sessions[sessionID] = &GameSession{
		GameID:       callerGameID,
		EpochID:      e.st.currentEpoch,
		Player1:      player1,
		Player2:      player2,
		Player1Wager: wager1,
		Player2Wager: wager2,
		Status:       SessionPending,
		CreatedAt:    e.now().Unix(),
	}
	return nil
}

// EndGame settles a Pending session with the submitted outcome. Only the
// game identity that opened the session may settle it, the outcome's
// session and player fields must match the stored session, and the session
// must still belong to the current epoch. Both wagers are unlocked; the
// winner's returns to their available pool and counts toward their faction
// standing, the loser's is burned.
func (e *Engine) EndGame(callerGameID string, out Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireInitialized(); err != nil {
		return err
	}

	s, ok := e.st.sessions[out.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if callerGameID != s.GameID {
		return ErrGameNotAuthorized
	}
	if s.Status != SessionPending {
		return ErrInvalidSessionState
	}
	if out.Player1 != s.Player1 || out.Player2 != s.Player2 {
		return ErrInvalidGameOutcome
	}
	if s.EpochID != e.st.currentEpoch {
		// Sessions never settle across an epoch boundary; CancelSession is
		// the recovery path for stranded wagers.
		return ErrGameExpired
	}

	winner, loser := s.Player1, s.Player2
	winnerWager, loserWager := s.Player1Wager, s.Player2Wager
	if !out.Player1Won {
		winner, loser = s.Player2, s.Player1
		winnerWager, loserWager = s.Player2Wager, s.Player1Wager
	}

	winnerEU, ok := e.st.epochUsers[epochUserKey{s.EpochID, winner}]
	if !ok {
		return ErrPlayerNotFound
	}
	loserEU, ok := e.st.epochUsers[epochUserKey{s.EpochID, loser}]
	if !ok {
		return ErrPlayerNotFound
	}

	if err := e.unlockAndSettle(winnerEU, s.EpochID, winnerWager, true); err != nil {
		return err
	}
	if err := e.unlockAndSettle(loserEU, s.EpochID, loserWager, false); err != nil {
		return err
	}

	s.Status = SessionCompleted
	s.Player1Won = out.Player1Won
	return nil
}

// CancelSession refunds both locked wagers into the session's own epoch
// ledger and retires the session. Admin-only; this is the escape hatch for
// sessions a game contract never resolved, including ones stranded by an
// epoch rollover.
func (e *Engine) CancelSession(caller string, sessionID uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	s, ok := e.st.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if s.Status != SessionPending {
		return ErrInvalidSessionState
	}

	if eu, ok := e.st.epochUsers[epochUserKey{s.EpochID, s.Player1}]; ok {
		eu.LockedFP -= s.Player1Wager
		eu.AvailableFP += s.Player1Wager
	}
	if eu, ok := e.st.epochUsers[epochUserKey{s.EpochID, s.Player2}]; ok {
		eu.LockedFP -= s.Player2Wager
		eu.AvailableFP += s.Player2Wager
	}

	s.Status = SessionCancelled
	return nil
}
