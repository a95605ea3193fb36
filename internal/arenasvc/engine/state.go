package engine

import (
	"sync"
	"time"
)

// Vault is the external token vault the engine snapshots balances from and
// harvests yield out of. Amounts are fixed-point USD.
type Vault interface {
	BalanceOf(addr string) (int64, error)
	HarvestYield() (int64, error)
}

// SwapRouter converts harvested yield into the reward denomination.
type SwapRouter interface {
	SwapExactIn(tokenIn, tokenOut string, amountIn, minOut int64) (int64, error)
}

// RewardToken disburses claimed rewards to users.
type RewardToken interface {
	Transfer(to string, amount int64) error
}

type epochUserKey struct {
	epoch uint32
	addr  string
}

type claimKey struct {
	addr  string
	epoch uint32
}

// state holds the entire accounting state as typed maps per entity kind.
// It is only ever touched under the Engine mutex; no caller mutates any of
// these fields directly.
type state struct {
	initialized  bool
	admin        string
	paused       bool
	config       Config
	currentEpoch uint32

	users      map[string]*User
	epochUsers map[epochUserKey]*EpochUser
	epochs     map[uint32]*EpochInfo
	sessions   map[uint32]*GameSession
	whitelist  map[string]bool
	claims     map[claimKey]bool
}

// Engine owns the epoch/reward accounting state machine. Every operation
// executes atomically under one mutex, mirroring the serialized transaction
// model of the original platform: an operation either commits all of its
// writes or returns an error having written nothing observable.
type Engine struct {
	mu     sync.Mutex
	st     state
	vault  Vault
	router SwapRouter
	reward RewardToken
	now    func() time.Time
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithClock overrides the engine time source, used by tests and by replay
// tooling.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(vault Vault, router SwapRouter, reward RewardToken, opts ...Option) *Engine {
	e := &Engine{
		st: state{
			users:      make(map[string]*User),
			epochUsers: make(map[epochUserKey]*EpochUser),
			epochs:     make(map[uint32]*EpochInfo),
			sessions:   make(map[uint32]*GameSession),
			whitelist:  make(map[string]bool),
			claims:     make(map[claimKey]bool),
		},
		vault:  vault,
		router: router,
		reward: reward,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) requireInitialized() error {
	if !e.st.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (e *Engine) requireNotPaused() error {
	if e.st.paused {
		return ErrContractPaused
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read queries. Absent entities yield zero-value defaults, never errors;
// clients use these for previews and must not have to branch on "not found".
// ---------------------------------------------------------------------------

func (e *Engine) CurrentEpoch() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.currentEpoch
}

func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.paused
}

func (e *Engine) Admin() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.admin
}

func (e *Engine) GetConfig() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.config
}

func (e *Engine) IsGameWhitelisted(gameID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.whitelist[gameID]
}

// GetUser returns the persistent user record, zero-valued when the address
// never interacted with the system.
func (e *Engine) GetUser(addr string) User {
	e.mu.Lock()
	defer e.mu.Unlock()
	if u, ok := e.st.users[addr]; ok {
		return *u
	}
	return User{Address: addr}
}

// GetEpochUser returns the per-epoch ledger entry, zero-valued when the
// user never played that epoch.
func (e *Engine) GetEpochUser(epoch uint32, addr string) EpochUser {
	e.mu.Lock()
	defer e.mu.Unlock()
	if eu, ok := e.st.epochUsers[epochUserKey{epoch, addr}]; ok {
		return *eu
	}
	return EpochUser{}
}

// GetEpochInfo returns the epoch aggregate with a copied standings map, or
// a zero-valued record for unknown epochs.
func (e *Engine) GetEpochInfo(epoch uint32) EpochInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	ep, ok := e.st.epochs[epoch]
	if !ok {
		return EpochInfo{Standings: map[FactionID]int64{}}
	}
	out := *ep
	out.Standings = make(map[FactionID]int64, len(ep.Standings))
	for f, v := range ep.Standings {
		out.Standings[f] = v
	}
	return out
}

// GetSession returns a session by id; ok is false when it does not exist.
func (e *Engine) GetSession(sessionID uint32) (GameSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.st.sessions[sessionID]
	if !ok {
		return GameSession{}, false
	}
	return *s, true
}

// HasClaimed reports whether the reward for (addr, epoch) was already paid.
func (e *Engine) HasClaimed(addr string, epoch uint32) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.claims[claimKey{addr, epoch}]
}
