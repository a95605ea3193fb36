package engine

// Initialize sets the admin, validates and installs the configuration and
// opens epoch 0. It can run exactly once.
func (e *Engine) Initialize(admin string, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.st.initialized {
		return ErrAlreadyInitialized
	}
	if admin == "" {
		return ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	now := e.now().Unix()
	e.st.initialized = true
	e.st.admin = admin
	e.st.config = cfg
	e.st.currentEpoch = 0
	e.st.epochs[0] = &EpochInfo{
		StartTime: now,
		EndTime:   now + cfg.EpochDurationSecs,
		Standings: make(map[FactionID]int64),
	}
	return nil
}

func (e *Engine) requireAdmin(caller string) error {
	if err := e.requireInitialized(); err != nil {
		return err
	}
	if caller != e.st.admin {
		return ErrNotAdmin
	}
	return nil
}

// SetAdmin transfers the admin role.
func (e *Engine) SetAdmin(caller, newAdmin string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if newAdmin == "" {
		return ErrInvalidConfig
	}
	e.st.admin = newAdmin
	return nil
}

// SetConfig replaces the global configuration. Takes effect immediately for
// all subsequent FP computations; already-materialized epoch entries keep
// the values they were computed with.
func (e *Engine) SetConfig(caller string, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.st.config = cfg
	return nil
}

// Pause stops all player-facing mutating operations. Admin and read paths
// stay open.
func (e *Engine) Pause(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.st.paused = true
	return nil
}

// Unpause lifts an emergency pause.
func (e *Engine) Unpause(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.st.paused = false
	return nil
}

// AddGame whitelists a game contract so it may open and settle sessions.
func (e *Engine) AddGame(caller, gameID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if gameID == "" {
		return ErrInvalidConfig
	}
	e.st.whitelist[gameID] = true
	return nil
}

// RemoveGame revokes a game contract. Sessions it already opened may still
// be settled by the same game identity or cancelled by the admin; only new
// sessions are blocked.
func (e *Engine) RemoveGame(caller, gameID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	delete(e.st.whitelist, gameID)
	return nil
}
