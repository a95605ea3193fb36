package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout is one row of the reward disbursement ledger, double-entry style:
// Dr is value paid out to the player, Cr corrections back. TRef carries the
// payout reference id.
type Payout struct {
	ID        int64           `json:"id"`
	Address   string          `json:"address"`
	EpochID   uint32          `json:"epoch_id"`
	TType     string          `json:"ttype"`
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	TRef      string          `json:"tref"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
