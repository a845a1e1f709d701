package models

import "time"

// Phase is the room-level mode.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
)

// PoolPlayer is one biddable entry of the player pool.
type PoolPlayer struct {
	Name      string `json:"name" yaml:"name"`
	Position  string `json:"position" yaml:"position"`
	BasePrice int    `json:"basePrice" yaml:"basePrice"`
}

// TeamEntry is a player won at auction.
type TeamEntry struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	PricePaid int    `json:"price"`
}

// Participant is a room member and their budget and roster.
type Participant struct {
	ID               string      `json:"id"`
	Username         string      `json:"username"`
	Balance          int         `json:"balance"`
	Team             []TeamEntry `json:"team"`
	SkippedThisRound bool        `json:"skipped"`
	JoinedAt         time.Time   `json:"joinedAt"`
}

// SaleOutcome describes how an auction ended.
type SaleOutcome string

const (
	SaleOutcomeSold   SaleOutcome = "SOLD"
	SaleOutcomeUnsold SaleOutcome = "UNSOLD"
	SaleOutcomeFailed SaleOutcome = "FAILED"
)

// Sale is the settled result of one auction.
type Sale struct {
	RoomID     string      `json:"room_id"`
	PlayerName string      `json:"player_name"`
	Position   string      `json:"position"`
	BasePrice  int         `json:"base_price"`
	Price      int         `json:"price"`
	WinnerID   string      `json:"winner_id,omitempty"`
	WinnerName string      `json:"winner_name,omitempty"`
	Outcome    SaleOutcome `json:"outcome"`
	BidCount   int         `json:"bid_count"`
	SettledAt  time.Time   `json:"settled_at"`
}
