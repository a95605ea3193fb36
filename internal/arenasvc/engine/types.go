package engine

import "github.com/mekdi/faction-services/internal/fpmath"

// FactionID identifies one of the fixed set of factions. Valid ids are
// 0..NumFactions-1 of the active config.
type FactionID uint32

// SessionStatus is the lifecycle state of a wagered game session.
type SessionStatus uint8

const (
	SessionPending SessionStatus = iota
	SessionCompleted
	SessionCancelled
)

func (s SessionStatus) String() string {
	switch s {
	case SessionPending:
		return "pending"
	case SessionCompleted:
		return "completed"
	case SessionCancelled:
		return "cancelled"
	}
	return "unknown"
}

// User is the persistent per-address record. It survives across epochs.
type User struct {
	Address         string
	SelectedFaction FactionID
	// LastEpochBalance is the vault balance observed at the previous epoch
	// snapshot, used for withdrawal detection.
	LastEpochBalance int64
	// TimeMultiplierStart is the unix second when continuous holding began.
	// Zero means holding never started.
	TimeMultiplierStart int64
}

// EpochUser is the per-(epoch, address) faction-point ledger entry,
// materialized lazily on a user's first game of the epoch.
type EpochUser struct {
	// Faction is the epoch-locked faction; write-once per epoch, valid only
	// when FactionLocked is set.
	Faction         FactionID
	FactionLocked   bool
	BalanceSnapshot int64
	AvailableFP     int64
	LockedFP        int64
	ContributedFP   int64
}

// EpochInfo is the per-epoch aggregate record.
type EpochInfo struct {
	StartTime int64
	EndTime   int64
	Standings map[FactionID]int64
	Finalized bool
	// RewardPool and WinningFaction are set only at finalization.
	RewardPool     int64
	WinningFaction FactionID
	HasWinner      bool
}

// GameSession is a wagered two-player session scoped to one epoch.
type GameSession struct {
	GameID       string
	EpochID      uint32
	Player1      string
	Player2      string
	Player1Wager int64
	Player2Wager int64
	Status       SessionStatus
	// Player1Won is meaningful only once Status is SessionCompleted.
	Player1Won bool
	CreatedAt  int64
}

// Outcome is the settlement report a game contract submits to EndGame. The
// session and player fields must match the stored session exactly.
type Outcome struct {
	SessionID  uint32
	Player1    string
	Player2    string
	Player1Won bool
}

// Config is the global engine configuration. All multiplier fields are
// fixed-point (fpmath.Scalar); hold times are plain seconds.
type Config struct {
	// FPPerUSD is the base USD to faction-point conversion, fixed-point.
	FPPerUSD int64
	// PeakMultiplier is the combined headline peak (e.g. 6.0x), fixed-point.
	PeakMultiplier int64
	// TargetAmount/MaxAmount bound the amount curve, fixed-point USD.
	TargetAmount int64
	MaxAmount    int64
	// TargetHoldSecs/MaxHoldSecs bound the time curve, seconds.
	TargetHoldSecs int64
	MaxHoldSecs    int64
	// EpochDurationSecs is the minimum epoch length.
	EpochDurationSecs int64
	NumFactions       uint32
	YieldToken        string
	RewardToken       string
}

// Validate rejects configurations the curve math cannot evaluate. In
// particular max == target is degenerate (zero-width fall segment) and must
// be refused here rather than surfacing as a division by zero later.
func (c Config) Validate() error {
	if c.FPPerUSD <= 0 || c.PeakMultiplier < fpmath.One || c.EpochDurationSecs <= 0 {
		return ErrInvalidConfig
	}
	if c.TargetAmount <= 0 || c.MaxAmount <= c.TargetAmount {
		return ErrInvalidConfig
	}
	if c.TargetHoldSecs <= 0 || c.MaxHoldSecs <= c.TargetHoldSecs {
		return ErrInvalidConfig
	}
	if c.NumFactions < 2 {
		return ErrInvalidConfig
	}
	return nil
}
