package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Epoch struct {
	EpochID        uint32          `json:"epoch_id"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Finalized      bool            `json:"finalized"`
	WinningFaction *uint32         `json:"winning_faction,omitempty"`
	RewardPool     decimal.Decimal `json:"reward_pool"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type FactionStanding struct {
	EpochID   uint32          `json:"epoch_id"`
	FactionID uint32          `json:"faction_id"`
	Faction   string          `json:"faction"`
	TotalFP   decimal.Decimal `json:"total_fp"`
}
