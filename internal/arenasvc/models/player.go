package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Player struct {
	ID                  int64           `json:"id"`
	Address             string          `json:"address"`
	SelectedFaction     uint32          `json:"selected_faction"`
	LastEpochBalance    decimal.Decimal `json:"last_epoch_balance"`
	TimeMultiplierStart time.Time       `json:"time_multiplier_start"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// EpochPlayer is the persisted snapshot of a player's per-epoch ledger
// entry, written through after engine transitions.
type EpochPlayer struct {
	EpochID       uint32          `json:"epoch_id"`
	Address       string          `json:"address"`
	Faction       uint32          `json:"faction"`
	Balance       decimal.Decimal `json:"balance"`
	AvailableFP   decimal.Decimal `json:"available_fp"`
	LockedFP      decimal.Decimal `json:"locked_fp"`
	ContributedFP decimal.Decimal `json:"contributed_fp"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
