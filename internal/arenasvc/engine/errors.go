package engine

import (
	"errors"
	"fmt"

	"github.com/mekdi/faction-services/internal/fpmath"
)

// Error is the structured error surfaced by every engine operation. Codes
// are grouped numerically by category and are a stable contract for client
// tooling: 1-9 admin, 10-19 player/balance, 20-29 game/session, 30-39
// epoch, 40-49 rewards, 50-59 external integration, 60-69 math, 70-79
// emergency.
type Error struct {
	Code uint32
	Name string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Name, e.Code)
}

var (
	ErrNotAdmin           = &Error{1, "NotAdmin"}
	ErrAlreadyInitialized = &Error{2, "AlreadyInitialized"}
	ErrNotInitialized     = &Error{3, "NotInitialized"}
	ErrInvalidConfig      = &Error{4, "InvalidConfig"}

	ErrPlayerNotFound            = &Error{10, "PlayerNotFound"}
	ErrInvalidFaction            = &Error{11, "InvalidFaction"}
	ErrInsufficientFactionPoints = &Error{12, "InsufficientFactionPoints"}
	ErrInvalidAmount             = &Error{13, "InvalidAmount"}
	ErrFactionNotSelected        = &Error{14, "FactionNotSelected"}

	ErrGameNotWhitelisted   = &Error{20, "GameNotWhitelisted"}
	ErrSessionAlreadyExists = &Error{21, "SessionAlreadyExists"}
	ErrSessionNotFound      = &Error{22, "SessionNotFound"}
	ErrInvalidSessionState  = &Error{23, "InvalidSessionState"}
	ErrInvalidGameOutcome   = &Error{24, "InvalidGameOutcome"}
	ErrGameExpired          = &Error{25, "GameExpired"}
	ErrGameNotAuthorized    = &Error{26, "GameNotAuthorized"}

	ErrEpochNotReady         = &Error{30, "EpochNotReady"}
	ErrEpochAlreadyFinalized = &Error{31, "EpochAlreadyFinalized"}
	ErrEpochNotFound         = &Error{32, "EpochNotFound"}

	ErrEpochNotFinalized    = &Error{40, "EpochNotFinalized"}
	ErrRewardAlreadyClaimed = &Error{41, "RewardAlreadyClaimed"}
	ErrNotWinningFaction    = &Error{42, "NotWinningFaction"}
	ErrNoRewardsAvailable   = &Error{43, "NoRewardsAvailable"}

	ErrFeeVault      = &Error{50, "FeeVaultError"}
	ErrSwap          = &Error{51, "SwapError"}
	ErrTokenTransfer = &Error{52, "TokenTransferError"}

	ErrOverflow       = &Error{60, "OverflowError"}
	ErrDivisionByZero = &Error{61, "DivisionByZero"}

	ErrContractPaused = &Error{70, "ContractPaused"}
)

// CodeOf extracts the numeric code from an engine error, or 0 for foreign
// errors.
func CodeOf(err error) uint32 {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// mathError classifies a fpmath failure into the public taxonomy.
func mathError(err error) *Error {
	if errors.Is(err, fpmath.ErrDivisionByZero) {
		return ErrDivisionByZero
	}
	return ErrOverflow
}
