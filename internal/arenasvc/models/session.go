package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Session struct {
	SessionID    uint32          `json:"session_id"`
	GameID       string          `json:"game_id"`
	EpochID      uint32          `json:"epoch_id"`
	Player1      string          `json:"player1"`
	Player2      string          `json:"player2"`
	Player1Wager decimal.Decimal `json:"player1_wager"`
	Player2Wager decimal.Decimal `json:"player2_wager"`
	Status       string          `json:"status"`
	Player1Won   *bool           `json:"player1_won,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
