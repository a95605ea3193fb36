package comm

import (
	"encoding/json"
)

// WSMessage is the envelope every socket and NATS payload travels in.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "init", "select-faction"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// PlayerQuery asks for a player's current-epoch ledger view.
type PlayerQuery struct {
	Address string `json:"address"`
}

// PlayerData is the current-epoch ledger view sent back to clients.
// Amounts are decimal strings.
type PlayerData struct {
	Address       string `json:"address"`
	EpochID       uint32 `json:"epoch_id"`
	FactionID     uint32 `json:"faction_id"`
	Faction       string `json:"faction"`
	AvailableFP   string `json:"available_fp"`
	LockedFP      string `json:"locked_fp"`
	ContributedFP string `json:"contributed_fp"`
}

// SelectFactionRequest elects a faction for a player.
type SelectFactionRequest struct {
	Address   string `json:"address"`
	FactionID uint32 `json:"faction_id"`
}

// StandingData is one faction's score in an epoch.
type StandingData struct {
	FactionID uint32 `json:"faction_id"`
	Faction   string `json:"faction"`
	TotalFP   string `json:"total_fp"`
}

// EpochData describes an epoch for clients.
type EpochData struct {
	EpochID        uint32         `json:"epoch_id"`
	StartTime      int64          `json:"start_time"`
	EndTime        int64          `json:"end_time"`
	Finalized      bool           `json:"finalized"`
	WinningFaction *uint32        `json:"winning_faction,omitempty"`
	RewardPool     string         `json:"reward_pool"`
	Standings      []StandingData `json:"standings"`
}

// EpochQuery targets a specific epoch; Current selects the open one.
type EpochQuery struct {
	EpochID uint32 `json:"epoch_id"`
	Current bool   `json:"current"`
}

// GameEventData is broadcast when a session opens or settles.
type GameEventData struct {
	SessionID uint32 `json:"session_id"`
	GameID    string `json:"game_id"`
	EpochID   uint32 `json:"epoch_id"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	Winner    string `json:"winner,omitempty"`
	WagerFP   string `json:"wager_fp,omitempty"`
}

// ClaimRequest asks to pay out a finalized epoch's reward share.
type ClaimRequest struct {
	Address string `json:"address"`
	EpochID uint32 `json:"epoch_id"`
}

// ClaimResult reports the claim outcome. ErrorCode carries the engine's
// numeric error taxonomy; zero means success.
type ClaimResult struct {
	Address   string `json:"address"`
	EpochID   uint32 `json:"epoch_id"`
	Amount    string `json:"amount"`
	ErrorCode uint32 `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CycleResult reports an epoch finalization attempt back to epochsvc.
type CycleResult struct {
	EpochID   uint32 `json:"epoch_id"`
	ErrorCode uint32 `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}
